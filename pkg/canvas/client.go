package canvas

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"exam-feedback/config"
	"exam-feedback/pkg/model"
	"exam-feedback/pkg/util"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var nextLinkRegex = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="next"`)

// Client talks to the Canvas LMS REST API for one course assignment.
type Client struct {
	http             *util.HttpClient
	baseURL          string
	courseID         string
	assignmentID     string
	perPage          int
	maxDownloadBytes int64
}

func NewClient(cfg *config.CanvasConfig) *Client {
	return &Client{
		http:             util.NewHttpClient(cfg.Token, cfg.Timeout),
		baseURL:          strings.TrimRight(cfg.APIURL, "/"),
		courseID:         cfg.CourseID,
		assignmentID:     cfg.AssignmentID,
		perPage:          cfg.PerPage,
		maxDownloadBytes: cfg.MaxDownloadBytes,
	}
}

func (c *Client) CourseID() string     { return c.courseID }
func (c *Client) AssignmentID() string { return c.assignmentID }

func (c *Client) submissionsURL() string {
	return c.baseURL + "/api/v1/courses/" + url.PathEscape(c.courseID) +
		"/assignments/" + url.PathEscape(c.assignmentID) + "/submissions"
}

// ListSubmissions returns every submission of the assignment with its
// history, following pagination links.
func (c *Client) ListSubmissions(ctx context.Context) ([]model.Submission, error) {
	q := url.Values{}
	q.Set("include[]", "submission_history")
	q.Set("per_page", strconv.Itoa(c.perPage))
	next := c.submissionsURL() + "?" + q.Encode()

	var submissions []model.Submission
	for page := 1; next != ""; page++ {
		var raw []submissionJSON
		header, err := c.http.GetJSON(ctx, next, &raw)
		if err != nil {
			return nil, errors.Wrapf(err, "list submissions page %d", page)
		}
		for _, r := range raw {
			sub, err := r.toModel()
			if err != nil {
				return nil, errors.Wrapf(err, "decode submission of user %v", r.UserID)
			}
			submissions = append(submissions, sub)
		}
		zap.S().Debugf("fetched submissions page %d (%d records)", page, len(raw))
		next = nextLink(header)
	}
	return submissions, nil
}

// PostGrade posts a grade and a text comment for one user. An empty grade
// leaves the current grade untouched.
func (c *Client) PostGrade(ctx context.Context, userID, grade, comment string) error {
	form := url.Values{}
	if grade != "" {
		form.Set("submission[posted_grade]", grade)
	}
	if comment != "" {
		form.Set("comment[text_comment]", comment)
	}
	u := c.submissionsURL() + "/" + url.PathEscape(userID)
	_, _, err := c.http.SendRequest(ctx, http.MethodPut, u,
		map[string]string{"Content-Type": util.ContentTypeForm, "Accept": util.ContentTypeJSON},
		strings.NewReader(form.Encode()), 0)
	if err != nil {
		return errors.Wrapf(err, "post grade for user %s", userID)
	}
	return nil
}

// UserProfile fetches the profile of a user.
func (c *Client) UserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var raw map[string]any
	u := c.baseURL + "/api/v1/users/" + url.PathEscape(userID) + "/profile"
	if _, err := c.http.GetJSON(ctx, u, &raw); err != nil {
		return nil, errors.Wrapf(err, "fetch profile of user %s", userID)
	}
	return &model.UserProfile{
		ID:        cast.ToString(raw["id"]),
		Name:      cast.ToString(raw["name"]),
		SISUserID: cast.ToString(raw["sis_user_id"]),
	}, nil
}

// Download fetches attachment bytes from a Canvas file URL.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	body, _, err := c.http.SendRequest(ctx, http.MethodGet, fileURL, nil, nil, c.maxDownloadBytes)
	if err != nil {
		return nil, errors.Wrap(err, "download attachment")
	}
	return body, nil
}

func nextLink(h http.Header) string {
	for _, link := range h.Values("Link") {
		if m := nextLinkRegex.FindStringSubmatch(link); m != nil {
			return m[1]
		}
	}
	return ""
}

// submissionJSON mirrors the Canvas payload. Ids and grades arrive as
// numbers, strings or null depending on the instance.
type submissionJSON struct {
	UserID  any           `json:"user_id"`
	History []attemptJSON `json:"submission_history"`
}

type attemptJSON struct {
	Attempt       any              `json:"attempt"`
	SubmittedAt   *string          `json:"submitted_at"`
	WorkflowState string           `json:"workflow_state"`
	Grade         any              `json:"grade"`
	Attachments   []attachmentJSON `json:"attachments"`
}

type attachmentJSON struct {
	ContentType string `json:"content-type"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Size        any    `json:"size"`
}

func (s submissionJSON) toModel() (model.Submission, error) {
	sub := model.Submission{UserID: cast.ToString(s.UserID)}
	if sub.UserID == "" {
		return sub, errors.New("missing user_id")
	}
	for _, h := range s.History {
		a := model.Attempt{
			Attempt:       cast.ToInt(h.Attempt),
			WorkflowState: model.WorkflowState(h.WorkflowState),
			Grade:         cast.ToString(h.Grade),
		}
		if h.SubmittedAt != nil && *h.SubmittedAt != "" {
			t, err := time.Parse(time.RFC3339, *h.SubmittedAt)
			if err != nil {
				return sub, errors.Wrapf(err, "parse submitted_at %q", *h.SubmittedAt)
			}
			a.SubmittedAt = t
		}
		for _, att := range h.Attachments {
			a.Attachments = append(a.Attachments, model.Attachment{
				ContentType: att.ContentType,
				URL:         att.URL,
				Filename:    att.Filename,
				Size:        cast.ToInt64(att.Size),
			})
		}
		sub.History = append(sub.History, a)
	}
	return sub, nil
}
