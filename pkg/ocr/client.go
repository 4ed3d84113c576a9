package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"exam-feedback/config"
	"exam-feedback/pkg/util"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var (
	ErrTranscriptionTimeout = errors.New("transcription did not finish in time")
	ErrTranscriptionFailed  = errors.New("transcription service reported failure")
)

const (
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// Client is a client for the handwriting OCR document API.
type Client struct {
	http         *util.HttpClient
	baseURL      string
	action       string
	deleteAfter  time.Duration
	pollInterval time.Duration
	maxPolls     int
	pollTimeout  time.Duration
}

func NewClient(cfg *config.OCRConfig) *Client {
	return &Client{
		http:         util.NewHttpClient(cfg.Token, cfg.Timeout),
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		action:       cfg.Action,
		deleteAfter:  cfg.DeleteAfter,
		pollInterval: cfg.PollInterval,
		maxPolls:     cfg.MaxPolls,
		pollTimeout:  cfg.PollTimeout,
	}
}

// Upload submits a PDF for transcription and returns the document id.
func (c *Client) Upload(ctx context.Context, filename string, pdf []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(filepath.Base(filename))+`"`)
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return "", errors.Wrap(err, "create file part")
	}
	if _, err := part.Write(pdf); err != nil {
		return "", errors.Wrap(err, "write file part")
	}
	if err := w.WriteField("action", c.action); err != nil {
		return "", err
	}
	if err := w.WriteField("delete_after", strconv.Itoa(int(c.deleteAfter/time.Second))); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	body, _, err := c.http.SendRequest(ctx, http.MethodPost, c.baseURL+"/documents",
		map[string]string{"Content-Type": w.FormDataContentType(), "Accept": util.ContentTypeJSON}, &buf, 0)
	if err != nil {
		return "", errors.Wrap(err, "upload document")
	}
	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "decode upload response")
	}
	id := cast.ToString(resp["id"])
	if id == "" {
		return "", errors.Errorf("upload response has no document id: %s", body)
	}
	return id, nil
}

// Status returns the processing status of a document. An accepted reply
// without a body counts as still processing.
func (c *Client) Status(ctx context.Context, documentID string) (string, error) {
	body, _, err := c.http.SendRequest(ctx, http.MethodGet, c.documentURL(documentID, ""),
		map[string]string{"Accept": util.ContentTypeJSON}, nil, 0)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "processing", nil
	}
	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "decode status response")
	}
	return cast.ToString(resp["status"]), nil
}

// WaitUntilProcessed polls at a fixed interval until the document is
// processed. It gives up after maxPolls polls or pollTimeout, whichever
// comes first.
func (c *Client) WaitUntilProcessed(ctx context.Context, documentID string) error {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for poll := 1; poll <= c.maxPolls; poll++ {
		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrapf(ErrTranscriptionTimeout, "document %s after %s", documentID, c.pollTimeout)
		case <-timer.C:
		}

		status, err := c.Status(pollCtx, documentID)
		if err != nil {
			if pollCtx.Err() != nil && ctx.Err() == nil {
				return errors.Wrapf(ErrTranscriptionTimeout, "document %s after %s", documentID, c.pollTimeout)
			}
			return errors.Wrapf(err, "poll document %s", documentID)
		}
		switch status {
		case StatusProcessed:
			return nil
		case StatusFailed:
			return errors.Wrapf(ErrTranscriptionFailed, "document %s", documentID)
		}
		zap.S().Debugf("document %s status %q, poll %d/%d", documentID, status, poll, c.maxPolls)
		timer.Reset(c.pollInterval)
	}
	return errors.Wrapf(ErrTranscriptionTimeout, "document %s after %d polls", documentID, c.maxPolls)
}

// Result downloads the plain-text transcription of a processed document.
func (c *Client) Result(ctx context.Context, documentID string) (string, error) {
	body, _, err := c.http.SendRequest(ctx, http.MethodGet, c.documentURL(documentID, "txt"), nil, nil, 0)
	if err != nil {
		return "", errors.Wrapf(err, "download result of %s", documentID)
	}
	return string(body), nil
}

func (c *Client) documentURL(id, format string) string {
	u := c.baseURL + "/documents/" + url.PathEscape(id)
	if format != "" {
		u += "." + format
	}
	return u
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
