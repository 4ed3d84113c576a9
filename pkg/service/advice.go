package service

import (
	"net/http"

	"exam-feedback/pkg/feedback"
	"exam-feedback/pkg/model"
	"exam-feedback/pkg/util"

	"github.com/pkg/errors"
)

const (
	CommentMissingAttachment = "We were unable to find a valid PDF attachment in your submission. " +
		"Please ensure you have uploaded a PDF file. If you are unsure, please ask your teacher. " +
		"Once you have done this, please resubmit your response."
	CommentUnclassifiable = "We were unable to determine if this response was a short or long response. " +
		"Please ensure that you have used the template for your response. If you are unsure, please ask your teacher. " +
		"Once you have done this, please resubmit your response."
	CommentFileTooLarge = "There was an issue processing your submission. " +
		"Please check if your submission file size is less than 20MB. " +
		"If it is larger, please reduce the file size and resubmit."
	commentServerError = "There was an internal server error while processing your submission. " +
		"Please try again later. Error: "
	commentGenericError = "We encountered an error while processing your submission. " +
		"Please see IT for assistance. <br> Error: "
)

// Advice is what to tell the student after a failed submission.
type Advice struct {
	Post    bool   // false: log only, leave the submission for manual follow-up
	Grade   string
	Comment string
	Reason  string
}

// Advise maps a per-submission failure to an advisory comment and grade.
func Advise(err error) Advice {
	var malformed *feedback.MalformedOutputError
	if errors.As(err, &malformed) {
		return Advice{Reason: "malformed feedback output"}
	}
	if errors.Is(err, ErrMissingAttachment) {
		return incomplete(CommentMissingAttachment, "missing attachment")
	}
	if errors.Is(err, ErrUnclassifiable) {
		return incomplete(CommentUnclassifiable, "unclassifiable response")
	}
	if errors.Is(err, util.ErrResponseTooLarge) {
		return incomplete(CommentFileTooLarge, "attachment too large")
	}
	var se *util.StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusUnprocessableEntity || se.StatusCode == http.StatusRequestEntityTooLarge:
			return incomplete(CommentFileTooLarge, "payload rejected")
		case se.StatusCode >= http.StatusInternalServerError:
			return incomplete(commentServerError+se.Body, "server error")
		default:
			return Advice{Reason: "unrecognized transport error"}
		}
	}
	return incomplete(commentGenericError+err.Error(), "processing error")
}

func incomplete(comment, reason string) Advice {
	return Advice{Post: true, Grade: model.GradeIncomplete, Comment: comment, Reason: reason}
}
