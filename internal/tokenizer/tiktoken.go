package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken wraps a tiktoken BPE encoding behind the domain Tokenizer
// interface. The encoding name is pinned in config and shared between
// ingest and query time; mixing encodings silently degrades retrieval.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// New returns a tokenizer for the named encoding, e.g. "cl100k_base".
func New(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
