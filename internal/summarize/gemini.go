package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jwulff/chartnote/internal/consult"
	"github.com/jwulff/chartnote/internal/logger"
	"google.golang.org/genai"
)

// implGemini summarizes with Gemini, rotating through API keys when one is
// rate limited.
type implGemini struct {
	model  string
	logger logger.Logger

	mu         sync.Mutex
	apiKeys    []string
	currentKey int
}

// NewGemini creates a Gemini summarizer that rotates through apiKeys.
func NewGemini(apiKeys []string, model string, log logger.Logger) consult.Summarizer {
	return &implGemini{
		apiKeys: apiKeys,
		model:   model,
		logger:  log,
	}
}

func (g *implGemini) Summarize(ctx context.Context, t consult.Transcript) (consult.Summary, error) {
	reply, err := g.callGemini(ctx, fmt.Sprintf(userPrompt, t.Text))
	if err != nil {
		return consult.Summary{}, err
	}
	s, err := ParseSOAP(reply)
	if err != nil {
		return consult.Summary{}, err
	}
	s.SourceTranscriptID = t.ID
	return s, nil
}

// callGemini sends the prompt and returns the reply text. Rotates API keys
// on 429 / quota errors.
func (g *implGemini) callGemini(ctx context.Context, prompt string) (string, error) {
	attempts := len(g.apiKeys)
	var lastErr error

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}

	for range attempts {
		idx, key := g.key()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey(idx)
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
		if err != nil {
			if isRateLimited(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text string
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text += part.Text
				}
			}
			return text, nil
		}

		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func (g *implGemini) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotateKey moves past key idx. Concurrent callers that saw the same key
// rotate once between them.
func (g *implGemini) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}
