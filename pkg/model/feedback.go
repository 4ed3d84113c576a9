package model

// FeedbackResult is the structured payload every feedback strategy must produce.
type FeedbackResult struct {
	Subject      string `json:"subject" validate:"required"`
	Question     string `json:"question" validate:"required"`
	ResponseType string `json:"response_type" validate:"required"`
	FeedbackHTML string `json:"feedback_html" validate:"required"`
	TeacherEmail string `json:"teacher_email"` // optional; cleared when not an address
}
