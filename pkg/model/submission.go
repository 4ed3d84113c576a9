package model

import (
	"time"

	"github.com/samber/lo"
)

// WorkflowState is the submission lifecycle status reported by Canvas.
type WorkflowState string

const (
	StateUnsubmitted   WorkflowState = "unsubmitted"
	StateSubmitted     WorkflowState = "submitted"
	StateGraded        WorkflowState = "graded"
	StatePendingReview WorkflowState = "pending_review"
)

const (
	GradeComplete   = "complete"
	GradeIncomplete = "incomplete"
	GradeExcused    = "excused"
)

// Submission is one student's submission for the configured assignment.
type Submission struct {
	UserID  string    `json:"user_id"`
	History []Attempt `json:"submission_history"`
}

// Attempt is a single entry of a submission history.
type Attempt struct {
	Attempt       int           `json:"attempt"`
	SubmittedAt   time.Time     `json:"submitted_at"` // zero when the attempt was never submitted
	WorkflowState WorkflowState `json:"workflow_state"`
	Grade         string        `json:"grade"`
	Attachments   []Attachment  `json:"attachments"`
}

type Attachment struct {
	ContentType string `json:"content-type"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
}

// LatestAttempt returns the attempt with the most recent SubmittedAt. Ties go
// to the attempt that comes first in history.
func LatestAttempt(history []Attempt) (Attempt, bool) {
	if len(history) == 0 {
		return Attempt{}, false
	}
	return lo.MaxBy(history, func(a, b Attempt) bool {
		return a.SubmittedAt.After(b.SubmittedAt)
	}), true
}

// FirstAttachment returns the first attachment of the attempt, if any.
func (a Attempt) FirstAttachment() (Attachment, bool) {
	return lo.First(a.Attachments)
}

// UserProfile is the subset of the Canvas profile used for audit rows.
type UserProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SISUserID string `json:"sis_user_id"`
}
