package domain

import (
	"context"
	"errors"
)

// ErrMissingCredentials marks the "no API key configured" state shared
// by the embedding and chat clients. Callers surface it as a
// user-facing message rather than a crash.
var ErrMissingCredentials = errors.New("OPENAI_API_KEY is not set")

// Chunk is a contiguous, token-aligned span of text from one source
// document. Chunk IDs are deterministic: "file::p<page>::c<n>" for
// paginated sources, "file::c<n>" otherwise.
type Chunk struct {
	ID       string `json:"chunk_id"`
	Filename string `json:"filename"`
	Page     int    `json:"page,omitempty"`
	Text     string `json:"text"`
}

// RetrievalResult is a chunk ranked against a query. Score is cosine
// similarity in [-1, 1]. Title and URL come from the source registry
// when the filename is known there.
type RetrievalResult struct {
	Chunk
	Score    float64
	Citation string
	Title    string
	URL      string
}

// Message is one role-tagged turn of a conversation.
type Message struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AnswerResult is the outcome of one grounded question.
type AnswerResult struct {
	Answer    string
	Citations []string
	Excerpts  []RetrievalResult
	NoIndex   bool
}

// Tokenizer encodes text into subword token IDs and back. The same
// encoding must be used at ingest and query time.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Embedder converts batches of text into fixed-length vectors using a
// named model. Index-build and query embeddings must come from the
// same model or the vector space is not comparable.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// ChatModel produces a completion for a role-tagged message sequence.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
