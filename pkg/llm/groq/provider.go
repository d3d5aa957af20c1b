package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-salesagent-be/pkg/llm"
)

const (
	baseURL      = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel = "llama-3.1-8b-instant"
)

type GroqProvider struct {
	ApiKey    string
	ModelName string
	Client    *http.Client
}

// Ensure GroqProvider implements LLMProvider
var _ llm.LLMProvider = &GroqProvider{}

func NewGroqProvider(apiKey, modelName string) *GroqProvider {
	if modelName == "" {
		modelName = defaultModel
	}
	return &GroqProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// --- Request/Response structs (OpenAI chat-completions wire format) ---

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqChatRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type groqChatResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
}

// rateLimited marks 413/429 responses so Chat can retry once with a smaller budget.
type rateLimitError struct {
	status int
	body   string
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("groq rate/size limit: %d %s", e.status, e.body)
}

func (g *GroqProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := &llm.Options{
		Temperature: 0.3,
		MaxTokens:   500,
	}
	for _, opt := range opts {
		opt(options)
	}

	reply, err := g.post(ctx, history, options)
	if err == nil {
		return reply, nil
	}

	if _, ok := err.(*rateLimitError); ok {
		// Single retry with a reduced token budget after backing off.
		select {
		case <-time.After(3 * time.Second):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		retryOpts := &llm.Options{
			Temperature: 0.2,
			MaxTokens:   300,
			Model:       options.Model,
		}
		return g.post(ctx, history, retryOpts)
	}

	return "", err
}

func (g *GroqProvider) Complete(ctx context.Context, system, user string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, opts...)
}

func (g *GroqProvider) post(ctx context.Context, history []llm.Message, options *llm.Options) (string, error) {
	if strings.TrimSpace(g.ApiKey) == "" {
		return "", fmt.Errorf("groq api key is not configured")
	}

	messages := make([]groqMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = groqMessage{Role: role, Content: msg.Content}
	}

	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payload := groqChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.ApiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body := strings.TrimSpace(string(bodyBytes))
		if len(body) > 240 {
			body = body[:240]
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusRequestEntityTooLarge {
			return "", &rateLimitError{status: resp.StatusCode, body: body}
		}
		return "", fmt.Errorf("groq %d error, body %s", resp.StatusCode, body)
	}

	var chatResp groqChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
