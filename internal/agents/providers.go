package agents

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/fyrsmithlabs/primus/internal/config"
)

// openAIProvider speaks the chat completions API.
type openAIProvider struct{}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

func (openAIProvider) name() string { return config.ProviderOpenAI }

func (openAIProvider) endpoint(baseURL string) string {
	return baseURL + "/v1/chat/completions"
}

func (openAIProvider) headers(h http.Header, apiKey string) {
	h.Set("Authorization", "Bearer "+apiKey)
}

func (openAIProvider) body(model string, req Request) any {
	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})
	return openAIRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}

func (openAIProvider) text(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("failed to decode response: invalid JSON")
	}
	return gjson.GetBytes(body, "choices.0.message.content").String(), nil
}

func (openAIProvider) errorMessage(body []byte) string {
	return gjson.GetBytes(body, "error.message").String()
}

// anthropicProvider speaks the messages API.
type anthropicProvider struct{}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

func (anthropicProvider) name() string { return config.ProviderAnthropic }

func (anthropicProvider) endpoint(baseURL string) string {
	return baseURL + "/v1/messages"
}

func (anthropicProvider) headers(h http.Header, apiKey string) {
	h.Set("X-API-Key", apiKey)
	h.Set("Anthropic-Version", anthropicVersion)
}

func (anthropicProvider) body(model string, req Request) any {
	return anthropicRequest{
		Model:       model,
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
}

// text joins every text block of the reply.
func (anthropicProvider) text(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("failed to decode response: invalid JSON")
	}
	var out string
	gjson.GetBytes(body, "content").ForEach(func(_, block gjson.Result) bool {
		if block.Get("type").String() == "text" {
			out += block.Get("text").String()
		}
		return true
	})
	return out, nil
}

func (anthropicProvider) errorMessage(body []byte) string {
	return gjson.GetBytes(body, "error.message").String()
}
