package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DocumentService is the transcription API used by Transcriber.
type DocumentService interface {
	Upload(ctx context.Context, filename string, pdf []byte) (string, error)
	WaitUntilProcessed(ctx context.Context, documentID string) error
	Result(ctx context.Context, documentID string) (string, error)
}

// Transcriber turns PDFs into text, caching transcripts by content hash in
// memory for the run and on disk across runs. Cache entries never expire.
type Transcriber struct {
	service DocumentService
	dir     string
	memo    map[string]string
}

func NewTranscriber(service DocumentService, dir string) *Transcriber {
	return &Transcriber{
		service: service,
		dir:     dir,
		memo:    make(map[string]string),
	}
}

// ContentKey is the cache key of a document.
func ContentKey(pdf []byte) string {
	sum := sha256.Sum256(pdf)
	return hex.EncodeToString(sum[:])
}

// Transcribe returns the transcript of pdf. filename is only passed to the
// OCR service for display.
func (t *Transcriber) Transcribe(ctx context.Context, filename string, pdf []byte) (string, error) {
	key := ContentKey(pdf)
	if text, ok := t.memo[key]; ok {
		zap.S().Debugf("transcript %s served from memory", key[:12])
		return text, nil
	}

	txtPath := filepath.Join(t.dir, key+"_ocr.txt")
	if data, err := os.ReadFile(txtPath); err == nil {
		zap.S().Infof("transcript cache hit: %s", txtPath)
		t.memo[key] = string(data)
		return string(data), nil
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "read cached transcript %s", txtPath)
	}

	if err := os.MkdirAll(t.dir, 0755); err != nil {
		return "", errors.Wrap(err, "create cache dir")
	}
	pdfPath := filepath.Join(t.dir, key+".pdf")
	if err := writeFileAtomic(pdfPath, pdf); err != nil {
		return "", err
	}

	documentID, err := t.service.Upload(ctx, filename, pdf)
	if err != nil {
		return "", err
	}
	zap.S().Infof("uploaded %s as OCR document %s", filename, documentID)
	if err := t.service.WaitUntilProcessed(ctx, documentID); err != nil {
		return "", err
	}
	text, err := t.service.Result(ctx, documentID)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(txtPath, []byte(text)); err != nil {
		return "", err
	}
	t.memo[key] = text
	return text, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "rename %s", path)
	}
	return nil
}
