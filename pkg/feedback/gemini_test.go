package feedback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"exam-feedback/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiStrategyGenerate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"subject\":\"Biology\"}"}]},"finishReason":"STOP"}]}`)
	}))
	defer srv.Close()

	cfg := &config.FeedbackConfig{
		APIKey:             "test-key",
		BaseURL:            srv.URL,
		Model:              "gemini-test",
		Temperature:        0.2,
		Timeout:            10 * time.Second,
		CommonKnowledgeIDs: []string{"kb-common"},
		ShortKnowledgeIDs:  []string{"kb-short"},
	}
	client, err := NewGeminiClient(context.Background(), cfg)
	require.NoError(t, err)

	s := NewShortResponseStrategy(client, cfg)
	assert.Equal(t, "short-response", s.Name())

	out, err := s.Generate(context.Background(), "Short Response: osmosis is ...")
	require.NoError(t, err)
	assert.Equal(t, `{"subject":"Biology"}`, out)
	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-test:generateContent"), gotPath)

	encoded, _ := json.Marshal(gotBody)
	assert.Contains(t, string(encoded), "osmosis")
	assert.Contains(t, string(encoded), "kb-common")
	assert.Contains(t, string(encoded), "kb-short")
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), &config.FeedbackConfig{Model: "m"})
	assert.Error(t, err)
}

func TestBuildInstruction(t *testing.T) {
	got := buildInstruction(longResponsePrompt, []string{"a"}, nil, []string{"b"})
	assert.Contains(t, got, "Reference material for this task: a, b")
	assert.Contains(t, got, `"feedback_html"`)

	got = buildInstruction(shortResponsePrompt)
	assert.NotContains(t, got, "Reference material")
}

func TestSubjectStrategyNamesSubject(t *testing.T) {
	cfg := &config.FeedbackConfig{Model: "m"}
	s := NewSubjectStrategy(nil, cfg, config.SubjectConfig{Name: "Music 1", Phrase: "music 1"})
	assert.Equal(t, "subject:Music 1", s.Name())
	assert.Contains(t, s.instruction, "HSC Music 1 teacher")
}
