package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"caselens/internal/domain"
	"caselens/internal/index"
	"caselens/internal/sources"
)

// DefaultTopK is how many excerpts a question pulls by default.
const DefaultTopK = 5

// Retriever ranks indexed chunks against a free-text query by cosine
// similarity. The scan is brute force over the whole matrix, which is
// the right trade at this corpus size (low thousands of chunks).
type Retriever struct {
	idx      *index.Handle
	embedder domain.Embedder
}

// New creates a retriever. A nil embedder means no credentials are
// configured; retrieval against a built index then fails with
// domain.ErrMissingCredentials instead of at request time inside the
// client.
func New(idx *index.Handle, embedder domain.Embedder) *Retriever {
	return &Retriever{idx: idx, embedder: embedder}
}

// Retrieve returns the topK most similar chunks, highest score first,
// ties broken by ingestion order. When no index has been built it
// returns an empty result and no error; the caller runs in "no
// documents yet" mode. topK larger than the corpus returns the whole
// corpus.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	idx, err := r.idx.Load()
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	if idx == nil || len(idx.Entries) == 0 {
		return nil, nil
	}
	if r.embedder == nil {
		return nil, domain.ErrMissingCredentials
	}
	if idx.Model != r.embedder.Model() {
		return nil, fmt.Errorf("index was built with embedding model %q but queries use %q; rebuild the index",
			idx.Model, r.embedder.Model())
	}

	vecs, err := r.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := vecs[0]

	scores := make([]float64, len(idx.Vectors))
	for i, row := range idx.Vectors {
		scores[i] = cosine(queryVec, row)
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	if topK > len(order) {
		topK = len(order)
	}

	results := make([]domain.RetrievalResult, 0, topK)
	for _, i := range order[:topK] {
		entry := idx.Entries[i]
		res := domain.RetrievalResult{
			Chunk:    entry,
			Score:    scores[i],
			Citation: Citation(entry),
			Title:    entry.Filename,
		}
		if src, ok := sources.Lookup(entry.Filename); ok {
			res.Title = src.Title
			res.URL = src.URL
		}
		results = append(results, res)
	}
	return results, nil
}

// Citation renders the human-readable source label for a chunk.
func Citation(c domain.Chunk) string {
	var b strings.Builder
	b.WriteString("[Source: ")
	b.WriteString(c.Filename)
	if c.Page > 0 {
		fmt.Fprintf(&b, " p.%d", c.Page)
	}
	b.WriteString("]")
	return b.String()
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
