package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"caselens/internal/domain"
)

// Client answers role-tagged message sequences through the OpenAI chat
// completions API. Sampling parameters are fixed at construction: the
// answerer wants low temperature and a bounded output, not creativity.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewClient reads the API key from the environment. Returns
// domain.ErrMissingCredentials when it is absent, so both external
// services share one credentials sentinel.
func NewClient(model string, temperature float64, maxTokens int, timeout time.Duration) (*Client, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, domain.ErrMissingCredentials
	}
	api := openai.NewClient(
		option.WithAPIKey(key),
		option.WithRequestTimeout(timeout),
	)
	return &Client{api: api, model: model, temperature: temperature, maxTokens: maxTokens}, nil
}

// Complete sends the message sequence and returns the generated text.
// The first message may carry a "system" role; the rest alternate
// user/assistant turns with the question last.
func (c *Client) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
