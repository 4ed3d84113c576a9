package audit

import (
	"context"

	"exam-feedback/config"
	"exam-feedback/pkg/db"
	"exam-feedback/pkg/model"

	"github.com/pkg/errors"
)

// Open builds the sink selected by cfg.Backend.
func Open(ctx context.Context, cfg *config.AuditConfig) (Sink, error) {
	switch cfg.Backend {
	case config.AuditBackendDuckDB:
		if err := db.InitDuckDB(ctx, cfg.DuckDB); err != nil {
			return nil, err
		}
		return NewDuckDBSink(db.GetDuckDB()), nil
	case config.AuditBackendMySQL:
		if err := db.InitMySQL(cfg.MySQL); err != nil {
			return nil, err
		}
		return NewMySQLSink(db.GetMySQL()), nil
	case config.AuditBackendSheets:
		return NewSheetsSink(ctx, cfg.Sheets)
	case config.AuditBackendNone:
		return nopSink{}, nil
	default:
		return nil, errors.Errorf("unknown audit backend %q", cfg.Backend)
	}
}

type nopSink struct{}

func (nopSink) Migrate(context.Context) error                { return nil }
func (nopSink) Append(context.Context, model.AuditRow) error { return nil }
func (nopSink) Count(context.Context) (int64, error)         { return 0, nil }
func (nopSink) Close() error                                 { return nil }
