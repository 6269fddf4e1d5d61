package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	json "github.com/goccy/go-json"
)

// ChatProvider talks to any OpenAI-compatible /chat/completions endpoint
// (DeepSeek, Qwen via DashScope compatible mode).
type ChatProvider struct {
	Name         string
	URL          string
	DefaultModel string
	// KeyEnv lists environment variables checked in order for the API key.
	KeyEnv []string
	Client *http.Client
}

var _ Provider = (*ChatProvider)(nil)

func NewDeepSeekProvider() *ChatProvider {
	return &ChatProvider{
		Name:         "deepseek",
		URL:          "https://api.deepseek.com/chat/completions",
		DefaultModel: "deepseek-chat",
		KeyEnv:       []string{"DEEPSEEK_API_KEY"},
	}
}

func NewQwenProvider() *ChatProvider {
	return &ChatProvider{
		Name:         "qwen",
		URL:          "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions",
		DefaultModel: "qwen-max",
		KeyEnv:       []string{"DASHSCOPE_API_KEY", "QWEN_API_KEY"},
	}
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatRequest struct {
	Messages       []Message      `json:"messages"`
	Model          string         `json:"model"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat ResponseFormat `json:"response_format"`
	Stream         bool           `json:"stream"`
	Temperature    float64        `json:"temperature"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// APIKey resolves the key from options["api_key"] or the environment.
func (p *ChatProvider) APIKey(options map[string]interface{}) string {
	if val, ok := options["api_key"].(string); ok && val != "" {
		return val
	}
	for _, env := range p.KeyEnv {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

func (p *ChatProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := p.APIKey(options)
	if apiKey == "" {
		return "", fmt.Errorf("%s: API key missing, set one of %v", p.Name, p.KeyEnv)
	}

	model := p.DefaultModel
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}
	format := "text"
	if val, ok := options["response_format"].(string); ok && val != "" {
		format = val
	}

	body, err := json.Marshal(ChatRequest{
		Messages: []Message{
			{Content: systemPrompt, Role: "system"},
			{Content: prompt, Role: "user"},
		},
		Model:          model,
		MaxTokens:      4096,
		ResponseFormat: ResponseFormat{Type: format},
		Temperature:    0.3,
	})
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: create request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: call failed: %w", p.Name, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", p.Name, err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: status=%d body=%s", p.Name, res.StatusCode, string(raw))
	}

	var response ChatResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return "", fmt.Errorf("%s: unmarshal response: %w", p.Name, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", p.Name)
	}
	return response.Choices[0].Message.Content, nil
}

func (p *ChatProvider) AdaptInstructions(raw string) string {
	return raw
}
