package service

import (
	"strings"

	"exam-feedback/config"
	"exam-feedback/pkg/model"
)

const (
	longResponseMarker  = "long response"
	shortResponseMarker = "short response"
)

// SubjectRule maps a case-insensitive phrase to a specialized subject.
type SubjectRule struct {
	Subject model.SubjectCategory
	Phrase  string
}

// Classifier labels transcripts by subject and response length. It does no
// I/O and the same text always yields the same label.
type Classifier struct {
	rules []SubjectRule
}

func NewClassifier(rules []SubjectRule) *Classifier {
	normalized := make([]SubjectRule, 0, len(rules))
	for _, r := range rules {
		phrase := strings.ToLower(strings.TrimSpace(r.Phrase))
		if phrase == "" {
			continue
		}
		normalized = append(normalized, SubjectRule{Subject: r.Subject, Phrase: phrase})
	}
	return &Classifier{rules: normalized}
}

func SubjectRulesFromConfig(subjects []config.SubjectConfig) []SubjectRule {
	rules := make([]SubjectRule, 0, len(subjects))
	for _, s := range subjects {
		rules = append(rules, SubjectRule{Subject: model.SubjectCategory(s.Name), Phrase: s.Phrase})
	}
	return rules
}

func (c *Classifier) Classify(text string) model.Classification {
	lower := strings.ToLower(text)

	label := model.Classification{Subject: model.SubjectGeneral}
	for _, r := range c.rules {
		if strings.Contains(lower, r.Phrase) {
			label.Subject = r.Subject
			break
		}
	}

	hasLong := strings.Contains(lower, longResponseMarker)
	hasShort := strings.Contains(lower, shortResponseMarker)
	switch {
	case hasLong && hasShort:
		label.Length = model.LengthUnknown
		label.Ambiguous = true
	case hasLong:
		label.Length = model.LengthLong
	case hasShort:
		label.Length = model.LengthShort
	default:
		label.Length = model.LengthUnknown
	}
	return label
}
