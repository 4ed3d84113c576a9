package audit

import (
	"context"
	"database/sql"
	"fmt"

	"exam-feedback/pkg/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBSink keeps audit rows in a local DuckDB table. Rows are keyed by
// their deterministic id, so a repeated append is ignored.
type DuckDBSink struct {
	db    *sql.DB
	table string
}

func NewDuckDBSink(db *sql.DB) *DuckDBSink {
	return &DuckDBSink{db: db, table: model.AuditRow{}.TableName()}
}

func (s *DuckDBSink) Migrate(ctx context.Context) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			logged_at TIMESTAMP,
			course_id TEXT,
			assignment_id TEXT,
			canvas_user_id TEXT,
			attempt INTEGER,
			sis_user_id TEXT,
			name TEXT,
			subject TEXT,
			response_type TEXT,
			question TEXT,
			teacher_email TEXT
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return errors.Wrap(err, "create audit table")
	}
	zap.S().Debugf("DuckDB table %s ready", s.table)
	return nil
}

func (s *DuckDBSink) Append(ctx context.Context, row model.AuditRow) error {
	insertSQL := fmt.Sprintf(`
		INSERT INTO %s (id, logged_at, course_id, assignment_id, canvas_user_id, attempt,
			sis_user_id, name, subject, response_type, question, teacher_email)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, s.table)

	_, err := s.db.ExecContext(ctx, insertSQL,
		row.ID,
		row.LoggedAt,
		row.CourseID,
		row.AssignmentID,
		row.CanvasUserID,
		row.Attempt,
		row.SISUserID,
		row.Name,
		row.Subject,
		row.ResponseType,
		row.Question,
		row.TeacherEmail,
	)
	if err != nil {
		return errors.Wrap(err, "insert audit row")
	}
	return nil
}

func (s *DuckDBSink) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.table).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "count audit rows")
	}
	return count, nil
}

func (s *DuckDBSink) Close() error {
	return s.db.Close()
}
