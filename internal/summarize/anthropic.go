package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwulff/chartnote/internal/consult"
)

const defaultAnthropicURL = "https://api.anthropic.com/v1/messages"

// Anthropic summarizes with the Anthropic Messages API.
type Anthropic struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func (a *Anthropic) Summarize(ctx context.Context, t consult.Transcript) (consult.Summary, error) {
	if a.APIKey == "" {
		return consult.Summary{}, fmt.Errorf("anthropic API key not set: set CHARTNOTE_ANTHROPIC_API_KEY or add summarizer.anthropic_api_key to config")
	}

	reqBody := anthropicRequest{
		Model:     a.Model,
		MaxTokens: 4096,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: fmt.Sprintf(userPrompt, t.Text),
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return consult.Summary{}, err
	}

	url := a.BaseURL
	if url == "" {
		url = defaultAnthropicURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return consult.Summary{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return consult.Summary{}, fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return consult.Summary{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return consult.Summary{}, fmt.Errorf("anthropic API error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return consult.Summary{}, fmt.Errorf("parsing Anthropic response: %w", err)
	}

	var reply string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			reply += block.Text
		}
	}
	if reply == "" {
		return consult.Summary{}, fmt.Errorf("empty response from Anthropic API")
	}

	s, err := ParseSOAP(reply)
	if err != nil {
		return consult.Summary{}, err
	}
	s.SourceTranscriptID = t.ID
	return s, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
