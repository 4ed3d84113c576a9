package config

import (
	"os"

	"github.com/pkg/errors"
)

type CacheConfig struct {
	Dir string `json:"dir" yaml:"dir"` // downloaded PDFs and transcripts, keyed by content hash
}

func (c *CacheConfig) Validate() []error {
	var errs = make([]error, 0)
	if c.Dir == "" {
		errs = append(errs, errors.Errorf("cache.dir must not be empty"))
		return errs
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		errs = append(errs, errors.Errorf("create cache dir failed: %v", err))
	}
	return errs
}

func NewDefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Dir: "./data/downloads",
	}
}
