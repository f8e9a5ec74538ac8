package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"claims-backend/internal/llm"
	"claims-backend/internal/shared/telemetry"
)

const visionSystemPrompt = "You are a helpful assistant that responds in English."

// Client implements llm.Client using the OpenAI chat completions API.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewClient constructs an OpenAI-backed client with a fixed sampling
// temperature and request timeout.
func NewClient(apiKey, model string, temperature float32, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required: %w", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required: %w", llm.ErrNotConfigured)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
	}, nil
}

// Complete sends the message history and returns the assistant's completion.
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	reqMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, openai.ChatCompletionMessage{
			Role:    coerceRole(m.Role),
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    reqMessages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai response empty content")
	}
	logUsage(c.model, "chat", resp.Usage, time.Since(start))
	return content, nil
}

// DescribeImage sends one PNG page with the transcription instruction and
// returns the model's description.
func (c *Client) DescribeImage(ctx context.Context, instruction string, png []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(png)

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: visionSystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: instruction,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/png;base64," + encoded,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	logUsage(c.model, "vision", resp.Usage, time.Since(start))
	return resp.Choices[0].Message.Content, nil
}

func coerceRole(role string) string {
	switch role {
	case openai.ChatMessageRoleSystem, openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant:
		return role
	default:
		return openai.ChatMessageRoleUser
	}
}

func logUsage(model, kind string, usage openai.Usage, elapsed time.Duration) {
	telemetry.Info("llm.response", map[string]any{
		"model":             model,
		"kind":              kind,
		"prompt_tokens":     usage.PromptTokens,
		"completion_tokens": usage.CompletionTokens,
		"total_tokens":      usage.TotalTokens,
		"elapsed_ms":        elapsed.Milliseconds(),
	})
}

var _ llm.Client = (*Client)(nil)
