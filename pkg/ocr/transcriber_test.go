package ocr

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingService struct {
	uploads int
	text    string
	err     error
}

func (s *countingService) Upload(context.Context, string, []byte) (string, error) {
	s.uploads++
	return "doc", nil
}

func (s *countingService) WaitUntilProcessed(context.Context, string) error { return s.err }

func (s *countingService) Result(context.Context, string) (string, error) { return s.text, nil }

func TestTranscriberCachesByContent(t *testing.T) {
	dir := t.TempDir()
	svc := &countingService{text: "Long Response\nanswer"}
	pdf := []byte("%PDF same bytes")

	text, err := NewTranscriber(svc, dir).Transcribe(context.Background(), "a.pdf", pdf)
	require.NoError(t, err)
	assert.Equal(t, "Long Response\nanswer", text)

	key := ContentKey(pdf)
	assert.FileExists(t, filepath.Join(dir, key+".pdf"))
	assert.FileExists(t, filepath.Join(dir, key+"_ocr.txt"))

	// a new run with a fresh transcriber reads the disk cache; another
	// filename with the same bytes is the same document
	again, err := NewTranscriber(svc, dir).Transcribe(context.Background(), "renamed.pdf", pdf)
	require.NoError(t, err)
	assert.Equal(t, text, again)
	assert.Equal(t, 1, svc.uploads)
}

func TestTranscriberMemoWithinRun(t *testing.T) {
	dir := t.TempDir()
	svc := &countingService{text: "text"}
	tr := NewTranscriber(svc, dir)
	pdf := []byte("bytes")

	_, err := tr.Transcribe(context.Background(), "a.pdf", pdf)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, ContentKey(pdf)+"_ocr.txt")))

	_, err = tr.Transcribe(context.Background(), "a.pdf", pdf)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.uploads)
}

func TestTranscriberDoesNotCacheFailures(t *testing.T) {
	dir := t.TempDir()
	svc := &countingService{err: ErrTranscriptionTimeout}
	tr := NewTranscriber(svc, dir)
	pdf := []byte("bytes")

	_, err := tr.Transcribe(context.Background(), "a.pdf", pdf)
	assert.True(t, errors.Is(err, ErrTranscriptionTimeout))
	assert.NoFileExists(t, filepath.Join(dir, ContentKey(pdf)+"_ocr.txt"))

	svc.err = nil
	svc.text = "ok"
	text, err := tr.Transcribe(context.Background(), "a.pdf", pdf)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, svc.uploads)
}
