package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// SubjectConfig describes a specialized subject: transcripts containing
// Phrase (case-insensitive) are routed to that subject's strategy whatever
// their response length.
type SubjectConfig struct {
	Name         string   `json:"name" yaml:"name"`
	Phrase       string   `json:"phrase" yaml:"phrase"`
	KnowledgeIDs []string `json:"knowledgeIds" yaml:"knowledgeIds"`
}

type FeedbackConfig struct {
	APIKey      string        `json:"apiKey" yaml:"apiKey"` // normally supplied via GEMINI_API_KEY
	BaseURL     string        `json:"baseUrl" yaml:"baseUrl"`
	Model       string        `json:"model" yaml:"model"`
	Temperature float32       `json:"temperature" yaml:"temperature"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	// Reference material identifiers shared by every strategy, and the ones
	// specific to each response length.
	CommonKnowledgeIDs []string        `json:"commonKnowledgeIds" yaml:"commonKnowledgeIds"`
	ShortKnowledgeIDs  []string        `json:"shortKnowledgeIds" yaml:"shortKnowledgeIds"`
	LongKnowledgeIDs   []string        `json:"longKnowledgeIds" yaml:"longKnowledgeIds"`
	Subjects           []SubjectConfig `json:"subjects" yaml:"subjects"`
}

func (f *FeedbackConfig) Validate() []error {
	var errs = make([]error, 0)
	if f.APIKey == "" {
		errs = append(errs, errors.Errorf("feedback api key missing: set feedback.apiKey or %s", EnvGeminiKey))
	}
	if f.Model == "" {
		errs = append(errs, errors.Errorf("feedback.model must not be empty"))
	}
	if f.Temperature < 0 || f.Temperature > 2 {
		errs = append(errs, errors.Errorf("feedback.temperature must be within [0, 2]"))
	}
	seen := make(map[string]struct{}, len(f.Subjects))
	for i, s := range f.Subjects {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Phrase) == "" {
			errs = append(errs, errors.Errorf("feedback.subjects[%d] needs both name and phrase", i))
			continue
		}
		key := strings.ToLower(s.Name)
		if _, ok := seen[key]; ok {
			errs = append(errs, errors.Errorf("feedback.subjects[%d] duplicates subject %q", i, s.Name))
		}
		seen[key] = struct{}{}
	}
	return errs
}

func NewDefaultFeedbackConfig() *FeedbackConfig {
	return &FeedbackConfig{
		Model:       "gemini-2.5-pro",
		Temperature: 0.2,
		Timeout:     5 * time.Minute,
		Subjects: []SubjectConfig{
			{Name: "Music 1", Phrase: "music 1"},
		},
	}
}
