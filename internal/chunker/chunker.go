package chunker

import (
	"fmt"
	"strconv"

	"caselens/internal/domain"
)

// TokenChunker splits document text into overlapping token-bounded
// windows. Boundaries are token-aligned so every chunk decodes cleanly
// under the tokenizer.
type TokenChunker struct {
	tok           domain.Tokenizer
	chunkTokens   int
	overlapTokens int
}

// New creates a chunker. Overlap must be strictly less than the chunk
// size or the window cannot advance.
func New(tok domain.Tokenizer, chunkTokens, overlapTokens int) (*TokenChunker, error) {
	if chunkTokens <= 0 {
		return nil, fmt.Errorf("chunker: chunk size must be positive, got %d", chunkTokens)
	}
	if overlapTokens < 0 || overlapTokens >= chunkTokens {
		return nil, fmt.Errorf("chunker: overlap %d must be in [0, %d)", overlapTokens, chunkTokens)
	}
	return &TokenChunker{tok: tok, chunkTokens: chunkTokens, overlapTokens: overlapTokens}, nil
}

// Chunk splits one document (or one page of a paginated document) into
// chunks. Page 0 means the source is not paginated. Empty text yields
// zero chunks; text shorter than the chunk size yields exactly one.
func (c *TokenChunker) Chunk(text, filename string, page int) []domain.Chunk {
	tokens := c.tok.Encode(text)
	if len(tokens) == 0 {
		return nil
	}
	var chunks []domain.Chunk
	step := c.chunkTokens - c.overlapTokens
	seq := 0
	for start := 0; start < len(tokens); start += step {
		end := start + c.chunkTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, domain.Chunk{
			ID:       chunkID(filename, page, seq),
			Filename: filename,
			Page:     page,
			Text:     c.tok.Decode(tokens[start:end]),
		})
		seq++
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

func chunkID(filename string, page, seq int) string {
	if page > 0 {
		return filename + "::p" + strconv.Itoa(page) + "::c" + strconv.Itoa(seq)
	}
	return filename + "::c" + strconv.Itoa(seq)
}
