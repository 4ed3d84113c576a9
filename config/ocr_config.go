package config

import (
	"time"

	"github.com/pkg/errors"
)

type OCRConfig struct {
	BaseURL      string        `json:"baseUrl" yaml:"baseUrl"`
	Token        string        `json:"token" yaml:"token"` // normally supplied via HANDWRITING_OCR_TOKEN
	Action       string        `json:"action" yaml:"action"`
	DeleteAfter  time.Duration `json:"deleteAfter" yaml:"deleteAfter"`
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`
	MaxPolls     int           `json:"maxPolls" yaml:"maxPolls"`
	PollTimeout  time.Duration `json:"pollTimeout" yaml:"pollTimeout"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
}

func (o *OCRConfig) Validate() []error {
	var errs = make([]error, 0)
	if o.BaseURL == "" {
		errs = append(errs, errors.Errorf("ocr.baseUrl must not be empty"))
	}
	if o.Token == "" {
		errs = append(errs, errors.Errorf("ocr token missing: set ocr.token or %s", EnvOCRToken))
	}
	if o.PollInterval <= 0 {
		errs = append(errs, errors.Errorf("ocr.pollInterval must be positive"))
	}
	if o.MaxPolls <= 0 {
		errs = append(errs, errors.Errorf("ocr.maxPolls must be positive"))
	}
	if o.PollTimeout <= 0 {
		errs = append(errs, errors.Errorf("ocr.pollTimeout must be positive"))
	}
	return errs
}

func NewDefaultOCRConfig() *OCRConfig {
	return &OCRConfig{
		BaseURL:      "https://www.handwritingocr.com/api/v3",
		Action:       "transcribe",
		DeleteAfter:  7 * 24 * time.Hour,
		PollInterval: 10 * time.Second,
		MaxPolls:     60,
		PollTimeout:  15 * time.Minute,
		Timeout:      2 * time.Minute,
	}
}
