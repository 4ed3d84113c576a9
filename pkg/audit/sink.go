package audit

import (
	"context"
	"time"

	"exam-feedback/pkg/model"
)

// Sink stores one row per posted feedback.
type Sink interface {
	// Migrate prepares the underlying storage. It is idempotent.
	Migrate(ctx context.Context) error
	Append(ctx context.Context, row model.AuditRow) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Columns is the column order shared by every backend.
var Columns = []string{
	"timestamp", "sis_user_id", "name", "subject", "response_type", "question", "teacher_email",
}

// Values returns row in Columns order.
func Values(row model.AuditRow) []any {
	return []any{
		row.LoggedAt.Format(time.RFC3339),
		row.SISUserID,
		row.Name,
		row.Subject,
		row.ResponseType,
		row.Question,
		row.TeacherEmail,
	}
}
