package feedback

import (
	"encoding/json"
	"fmt"
	"strings"

	"exam-feedback/pkg/model"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MalformedOutputError reports strategy output that does not match the
// FeedbackResult shape. Raw keeps the full payload for diagnosis.
type MalformedOutputError struct {
	Strategy string
	Raw      string
	Cause    error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed output from %s: %v", e.Strategy, e.Cause)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// ParseResult decodes and validates raw strategy output. Surrounding
// whitespace and markdown code fences are tolerated.
func ParseResult(strategy, raw string) (*model.FeedbackResult, error) {
	payload := stripFences(raw)
	if payload == "" {
		return nil, &MalformedOutputError{Strategy: strategy, Raw: raw, Cause: errors.New("empty output")}
	}
	var result model.FeedbackResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, &MalformedOutputError{Strategy: strategy, Raw: raw, Cause: errors.Wrap(err, "decode json")}
	}
	if err := validate.Struct(&result); err != nil {
		return nil, &MalformedOutputError{Strategy: strategy, Raw: raw, Cause: errors.Wrap(err, "validate fields")}
	}
	result.TeacherEmail = cleanEmail(result.TeacherEmail)
	return &result, nil
}

// cleanEmail keeps an address and drops placeholders such as "[Not provided]".
func cleanEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || validate.Var(s, "email") != nil {
		return ""
	}
	return s
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
