package audit

import (
	"context"

	"exam-feedback/config"
	"exam-feedback/pkg/model"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSink appends audit rows to a worksheet of a Google spreadsheet.
// Sheets has no uniqueness constraint, so a repeated append adds a row.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

func NewSheetsSink(ctx context.Context, cfg *config.SheetsConfig, opts ...option.ClientOption) (*SheetsSink, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		}
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create sheets service")
	}
	return &SheetsSink{svc: svc, spreadsheetID: cfg.SpreadsheetID, worksheet: cfg.Worksheet}, nil
}

// Migrate checks that the worksheet exists and writes the header row into
// an empty one.
func (s *SheetsSink) Migrate(ctx context.Context) error {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "open spreadsheet %s", s.spreadsheetID)
	}
	found := lo.ContainsBy(ss.Sheets, func(sh *sheets.Sheet) bool {
		return sh.Properties != nil && sh.Properties.Title == s.worksheet
	})
	if !found {
		return errors.Errorf("worksheet %q not found in spreadsheet %s", s.worksheet, s.spreadsheetID)
	}

	first, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet+"!1:1").Context(ctx).Do()
	if err != nil {
		return errors.Wrap(err, "read header row")
	}
	if len(first.Values) > 0 {
		return nil
	}
	header := &sheets.ValueRange{Values: [][]interface{}{lo.ToAnySlice(Columns)}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.worksheet+"!A1", header).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return errors.Wrap(err, "write header row")
	}
	zap.S().Infof("wrote header row to worksheet %s", s.worksheet)
	return nil
}

func (s *SheetsSink) Append(ctx context.Context, row model.AuditRow) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{Values(row)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.worksheet+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return errors.Wrap(err, "append sheet row")
	}
	return nil
}

// Count returns the number of non-empty rows in the first column, header
// included.
func (s *SheetsSink) Count(ctx context.Context) (int64, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, errors.Wrap(err, "read sheet rows")
	}
	return int64(len(resp.Values)), nil
}

func (s *SheetsSink) Close() error {
	return nil
}
