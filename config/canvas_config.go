package config

import (
	"net/url"
	"time"

	"github.com/pkg/errors"
)

type CanvasConfig struct {
	APIURL              string        `json:"apiUrl" yaml:"apiUrl"`             // e.g. https://school.instructure.com
	Token               string        `json:"token" yaml:"token"`               // normally supplied via CANVAS_API_TOKEN
	CourseID            string        `json:"courseId" yaml:"courseId"`
	AssignmentID        string        `json:"assignmentId" yaml:"assignmentId"`
	PerPage             int           `json:"perPage" yaml:"perPage"`
	Timeout             time.Duration `json:"timeout" yaml:"timeout"`
	MaxDownloadBytes    int64         `json:"maxDownloadBytes" yaml:"maxDownloadBytes"`
	AllowedContentTypes []string      `json:"allowedContentTypes" yaml:"allowedContentTypes"`
}

func (c *CanvasConfig) Validate() []error {
	var errs = make([]error, 0)
	if c.APIURL == "" {
		errs = append(errs, errors.Errorf("canvas.apiUrl must not be empty"))
	} else if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.Errorf("canvas.apiUrl %q is not an absolute URL", c.APIURL))
	}
	if c.Token == "" {
		errs = append(errs, errors.Errorf("canvas token missing: set canvas.token or %s", EnvCanvasToken))
	}
	if c.CourseID == "" {
		errs = append(errs, errors.Errorf("canvas.courseId must not be empty"))
	}
	if c.AssignmentID == "" {
		errs = append(errs, errors.Errorf("canvas.assignmentId must not be empty"))
	}
	if c.PerPage <= 0 {
		errs = append(errs, errors.Errorf("canvas.perPage must be positive"))
	}
	if len(c.AllowedContentTypes) == 0 {
		errs = append(errs, errors.Errorf("canvas.allowedContentTypes must list at least one type"))
	}
	return errs
}

func NewDefaultCanvasConfig() *CanvasConfig {
	return &CanvasConfig{
		PerPage:             100,
		Timeout:             60 * time.Second,
		MaxDownloadBytes:    50 << 20,
		AllowedContentTypes: []string{"application/pdf"},
	}
}
