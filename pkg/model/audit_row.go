package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// auditNamespace scopes audit row ids generated by this tool.
var auditNamespace = uuid.MustParse("8f6c3c2e-2d5b-4b0e-9b7a-5d1c0f3e6a41")

// AuditRow is one logged feedback post.
type AuditRow struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	LoggedAt     time.Time `gorm:"index" json:"logged_at"`
	CourseID     string    `gorm:"size:64" json:"course_id"`
	AssignmentID string    `gorm:"size:64" json:"assignment_id"`
	CanvasUserID string    `gorm:"size:64;index" json:"canvas_user_id"`
	Attempt      int       `json:"attempt"`
	SISUserID    string    `gorm:"size:64" json:"sis_user_id"`
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	ResponseType string    `gorm:"size:32" json:"response_type"`
	Question     string    `gorm:"type:text" json:"question"`
	TeacherEmail string    `json:"teacher_email"`
}

// TableName sets the gorm table name
func (AuditRow) TableName() string {
	return "feedback_audit"
}

// AuditRowID derives a stable id for one posted attempt, so logging the same
// attempt twice targets the same row.
func AuditRowID(courseID, assignmentID, userID string, attempt int) string {
	key := courseID + "/" + assignmentID + "/" + userID + "/" + strconv.Itoa(attempt)
	return uuid.NewSHA1(auditNamespace, []byte(key)).String()
}
