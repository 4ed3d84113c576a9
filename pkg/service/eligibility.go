package service

import (
	"fmt"

	"exam-feedback/pkg/model"

	"github.com/samber/lo"
)

var finalGrades = []string{model.GradeComplete, model.GradeIncomplete, model.GradeExcused}

// NeedsProcessing reports whether a submission still needs feedback. Only the
// latest attempt is considered.
func NeedsProcessing(sub model.Submission) bool {
	ok, _ := checkEligibility(sub)
	return ok
}

// checkEligibility is NeedsProcessing plus a human-readable skip reason.
func checkEligibility(sub model.Submission) (bool, string) {
	latest, ok := model.LatestAttempt(sub.History)
	if !ok {
		return false, "no submission history"
	}
	if latest.WorkflowState == model.StateUnsubmitted {
		return false, fmt.Sprintf("submission state: %s", latest.WorkflowState)
	}
	if latest.WorkflowState == model.StateGraded && lo.Contains(finalGrades, latest.Grade) {
		return false, fmt.Sprintf("submission state: %s, grade: %s", latest.WorkflowState, latest.Grade)
	}
	return true, ""
}
