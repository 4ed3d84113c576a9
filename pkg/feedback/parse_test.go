package feedback

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPayload = `{
  "subject": "Legal Studies",
  "question": "Explain the role of juries.",
  "response_type": "Long Response",
  "feedback_html": "<h2>Feedback</h2><ul><li>Clear thesis</li></ul>",
  "teacher_email": "ms.lee@school.edu"
}`

func TestParseResult(t *testing.T) {
	result, err := ParseResult("long", goodPayload)
	require.NoError(t, err)
	assert.Equal(t, "Legal Studies", result.Subject)
	assert.Equal(t, "Long Response", result.ResponseType)
	assert.Equal(t, "ms.lee@school.edu", result.TeacherEmail)
}

func TestParseResultFenced(t *testing.T) {
	result, err := ParseResult("long", "```json\n"+goodPayload+"\n```")
	require.NoError(t, err)
	assert.Equal(t, "Explain the role of juries.", result.Question)
}

func TestParseResultOptionalEmail(t *testing.T) {
	payload := `{"subject":"Music 1","question":"Q4","response_type":"Short Response","feedback_html":"<p>ok</p>"}`
	result, err := ParseResult("music", payload)
	require.NoError(t, err)
	assert.Empty(t, result.TeacherEmail)
}

func TestParseResultPlaceholderEmail(t *testing.T) {
	for _, email := range []string{"[Not provided]", "N/A", "Ms Lee", "nobody"} {
		t.Run(email, func(t *testing.T) {
			payload := `{"subject":"Biology","question":"Q1","response_type":"Short Response",` +
				`"feedback_html":"<p>ok</p>","teacher_email":"` + email + `"}`
			result, err := ParseResult("short-response", payload)
			require.NoError(t, err)
			assert.Empty(t, result.TeacherEmail)
			assert.Equal(t, "<p>ok</p>", result.FeedbackHTML)
		})
	}

	result, err := ParseResult("short-response", `{"subject":"a","question":"b","response_type":"c",`+
		`"feedback_html":"d","teacher_email":"  ms.lee@school.edu "}`)
	require.NoError(t, err)
	assert.Equal(t, "ms.lee@school.edu", result.TeacherEmail)
}

func TestParseResultMalformed(t *testing.T) {
	tests := map[string]string{
		"empty":          "   ",
		"prose":          "Great work! Keep it up.",
		"trailing comma": `{"subject":"a","question":"b","response_type":"c","feedback_html":"d",}`,
		"missing html":   `{"subject":"a","question":"b","response_type":"c"}`,
		"blank subject":  `{"subject":"","question":"b","response_type":"c","feedback_html":"d"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResult("short", raw)
			var malformed *MalformedOutputError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, raw, malformed.Raw)
			assert.Equal(t, "short", malformed.Strategy)
		})
	}
}
