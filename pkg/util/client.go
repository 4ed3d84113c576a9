package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"

	maxErrorBody = 4 << 10
)

// ErrResponseTooLarge is returned when a reply exceeds the caller's size cap.
var ErrResponseTooLarge = errors.New("response too large")

// StatusError is returned for any non-2xx reply. Body is truncated and URL
// carries no query string.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// HttpClient wraps http.Client with bearer-token auth and status checking.
type HttpClient struct {
	Client *http.Client
	Token  string
}

func NewHttpClient(token string, timeout time.Duration) *HttpClient {
	return &HttpClient{
		Client: &http.Client{Timeout: timeout},
		Token:  token,
	}
}

// SendRequest sends the request and returns the response body and headers.
// maxBytes <= 0 means no limit. Errors never include the query string of
// rawURL, which may hold signed download tokens.
func (c *HttpClient) SendRequest(ctx context.Context, method, rawURL string, headers map[string]string, body io.Reader, maxBytes int64) ([]byte, http.Header, error) {
	safeURL := redactURL(rawURL)
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, nil, errors.Wrap(redactError(err, safeURL), "create request")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(redactError(err, safeURL), "%s %s", method, safeURL)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			zap.S().Debugf("close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.Header, &StatusError{
			Method:     method,
			URL:        safeURL,
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(msg)),
		}
	}

	reader := io.Reader(resp.Body)
	if maxBytes > 0 {
		reader = io.LimitReader(resp.Body, maxBytes+1)
	}
	responseBody, err := io.ReadAll(reader)
	if err != nil {
		return nil, resp.Header, errors.Wrap(redactError(err, safeURL), "read response")
	}
	if maxBytes > 0 && int64(len(responseBody)) > maxBytes {
		return nil, resp.Header, errors.Wrapf(ErrResponseTooLarge, "%s %s: over %d bytes", method, safeURL, maxBytes)
	}
	return responseBody, resp.Header, nil
}

// GetJSON issues a GET and decodes the JSON reply into out.
func (c *HttpClient) GetJSON(ctx context.Context, rawURL string, out any) (http.Header, error) {
	body, header, err := c.SendRequest(ctx, http.MethodGet, rawURL, map[string]string{"Accept": ContentTypeJSON}, nil, 0)
	if err != nil {
		return header, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return header, errors.Wrapf(err, "decode response of %s", redactURL(rawURL))
	}
	return header, nil
}

// redactURL drops the query string, fragment and user info of rawURL.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	return u.String()
}

// redactError rewrites the URL that net/http embeds in its errors.
func redactError(err error, safeURL string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = safeURL
	}
	return err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
