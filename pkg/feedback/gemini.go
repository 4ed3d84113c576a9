package feedback

import (
	"context"
	"fmt"
	"time"

	"exam-feedback/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiStrategy generates feedback with a Gemini model and a fixed system
// instruction. It returns the raw model text; parsing is the caller's job.
type GeminiStrategy struct {
	name        string
	client      *genai.Client
	model       string
	instruction string
	temperature float32
	timeout     time.Duration
}

// NewGeminiClient creates the shared Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.FeedbackConfig) (*genai.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "create Gemini client")
	}
	return client, nil
}

func newGeminiStrategy(name string, client *genai.Client, cfg *config.FeedbackConfig, instruction string) *GeminiStrategy {
	return &GeminiStrategy{
		name:        name,
		client:      client,
		model:       cfg.Model,
		instruction: instruction,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func NewShortResponseStrategy(client *genai.Client, cfg *config.FeedbackConfig) *GeminiStrategy {
	return newGeminiStrategy("short-response", client, cfg,
		buildInstruction(shortResponsePrompt, cfg.CommonKnowledgeIDs, cfg.ShortKnowledgeIDs))
}

func NewLongResponseStrategy(client *genai.Client, cfg *config.FeedbackConfig) *GeminiStrategy {
	return newGeminiStrategy("long-response", client, cfg,
		buildInstruction(longResponsePrompt, cfg.CommonKnowledgeIDs, cfg.LongKnowledgeIDs))
}

func NewSubjectStrategy(client *genai.Client, cfg *config.FeedbackConfig, subject config.SubjectConfig) *GeminiStrategy {
	return newGeminiStrategy("subject:"+subject.Name, client, cfg,
		buildInstruction(fmt.Sprintf(subjectPrompt, subject.Name), cfg.CommonKnowledgeIDs, subject.KnowledgeIDs))
}

func (s *GeminiStrategy) Name() string {
	return s.name
}

// Generate sends the transcript as the user turn and returns the model text.
func (s *GeminiStrategy) Generate(ctx context.Context, transcript string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(transcript), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(s.instruction, genai.RoleUser),
		Temperature:       genai.Ptr(s.temperature),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", errors.Wrapf(err, "%s: generate content", s.name)
	}
	text := resp.Text()
	zap.S().Debugf("%s: model=%s took=%s output_len=%d", s.name, s.model, time.Since(start), len(text))
	return text, nil
}
