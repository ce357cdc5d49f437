package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jwulff/chartnote/internal/consult"
)

func TestAnthropicSummarize(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("x-api-key = %q, want secret", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("anthropic-version header missing")
		}
		json.NewDecoder(r.Body).Decode(&got)

		reply := "```json\n" + `{"subjective":"s","objective":"o","assessment":"a","plan":"p"}` + "\n```"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": reply}},
		})
	}))
	defer srv.Close()

	a := &Anthropic{APIKey: "secret", Model: "claude-haiku-4-5", BaseURL: srv.URL}
	s, err := a.Summarize(context.Background(), consult.Transcript{ID: "t1", Text: "의사: 안녕하세요"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if s.Plan != "p" || s.SourceTranscriptID != "t1" {
		t.Errorf("summary = %+v", s)
	}
	if got.Model != "claude-haiku-4-5" {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 1 || !strings.Contains(got.Messages[0].Content, "의사: 안녕하세요") {
		t.Errorf("messages = %+v, want transcript in user message", got.Messages)
	}
	if got.System == "" {
		t.Error("system prompt missing")
	}
}

func TestAnthropicHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := &Anthropic{APIKey: "k", BaseURL: srv.URL}
	_, err := a.Summarize(context.Background(), consult.Transcript{ID: "t1"})
	if err == nil || !strings.Contains(err.Error(), "HTTP 503") {
		t.Errorf("err = %v, want HTTP 503 error", err)
	}
}

func TestAnthropicMissingKey(t *testing.T) {
	a := &Anthropic{}
	if _, err := a.Summarize(context.Background(), consult.Transcript{}); err == nil {
		t.Error("expected error without API key")
	}
}
