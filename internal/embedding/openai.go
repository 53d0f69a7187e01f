package embedding

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"caselens/internal/domain"
)

const apiKeyEnv = "OPENAI_API_KEY"

// Client embeds text through the OpenAI embeddings API. The model name
// is pinned at construction; the index builder records it so query-time
// embeddings are guaranteed to come from the same vector space.
type Client struct {
	api   openai.Client
	model string
}

// NewClient reads the API key from the environment. Returns
// domain.ErrMissingCredentials when it is absent.
func NewClient(model string, timeout time.Duration) (*Client, error) {
	key := os.Getenv(apiKeyEnv)
	if key == "" {
		return nil, domain.ErrMissingCredentials
	}
	api := openai.NewClient(
		option.WithAPIKey(key),
		option.WithRequestTimeout(timeout),
	)
	return &Client{api: api, model: model}, nil
}

// Model returns the embedding model identifier.
func (c *Client) Model() string { return c.model }

// EmbedBatch returns one vector per input text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		vectors[i] = v
	}
	return vectors, nil
}
