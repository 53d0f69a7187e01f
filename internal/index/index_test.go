package index

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"testing"

	"caselens/internal/domain"
)

// stubEmbedder maps each text to a deterministic vector, optionally
// perturbed per build to mimic embedding-service float noise.
type stubEmbedder struct {
	model  string
	dims   int
	noise  float32
	calls  int
	failAt int // fail the nth EmbedBatch call (1-based); 0 = never
}

func (e *stubEmbedder) Model() string { return e.model }

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.failAt > 0 && e.calls >= e.failAt {
		return nil, errors.New("embedding service unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, e.dims)
		h := fnv.New32a()
		h.Write([]byte(text))
		v[int(h.Sum32())%e.dims] = 1
		v[0] += e.noise
		out[i] = v
	}
	return out, nil
}

func testChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:       fmt.Sprintf("doc.txt::c%d", i),
			Filename: "doc.txt",
			Text:     fmt.Sprintf("chunk number %d", i),
		}
	}
	return chunks
}

func TestBuildAndLoadAlignment(t *testing.T) {
	dir := t.TempDir()
	emb := &stubEmbedder{model: "stub-embed-1", dims: 8}
	b := NewBuilder(dir, emb, 3)

	chunks := testChunks(7)
	n, err := b.Build(context.Background(), chunks)
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Fatalf("expected 7 embeddings written, got %d", n)
	}
	// 7 chunks at batch size 3 is 3 service calls.
	if emb.calls != 3 {
		t.Fatalf("expected 3 batch calls, got %d", emb.calls)
	}

	idx, err := NewHandle(dir).Load()
	if err != nil {
		t.Fatal(err)
	}
	if idx == nil {
		t.Fatal("index should exist after build")
	}
	if len(idx.Entries) != len(idx.Vectors) {
		t.Fatalf("metadata/matrix misaligned: %d entries, %d rows", len(idx.Entries), len(idx.Vectors))
	}
	if idx.Model != "stub-embed-1" {
		t.Fatalf("index should record the embedding model, got %q", idx.Model)
	}
	if idx.Dims != 8 {
		t.Fatalf("expected 8 dims, got %d", idx.Dims)
	}
	for i, entry := range idx.Entries {
		if entry.ID != chunks[i].ID {
			t.Fatalf("row %d holds %q, want %q", i, entry.ID, chunks[i].ID)
		}
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(dir, &stubEmbedder{model: "m", dims: 4}, 10)
	n, err := b.Build(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("empty corpus should write 0 embeddings, got %d", n)
	}
	idx, err := NewHandle(dir).Load()
	if err != nil {
		t.Fatal(err)
	}
	if idx != nil {
		t.Fatal("empty build should not create an index")
	}
}

func TestBuildFailureCommitsNothing(t *testing.T) {
	dir := t.TempDir()
	good := &stubEmbedder{model: "m", dims: 4}
	b := NewBuilder(dir, good, 2)
	if _, err := b.Build(context.Background(), testChunks(3)); err != nil {
		t.Fatal(err)
	}
	before, err := NewHandle(dir).Load()
	if err != nil {
		t.Fatal(err)
	}

	bad := &stubEmbedder{model: "m", dims: 4, failAt: 2}
	if _, err := NewBuilder(dir, bad, 2).Build(context.Background(), testChunks(4)); err == nil {
		t.Fatal("build should fail when the embedding service fails")
	}

	after, err := NewHandle(dir).Load()
	if err != nil {
		t.Fatal(err)
	}
	if after == nil || len(after.Entries) != len(before.Entries) {
		t.Fatal("failed build must leave the previous index intact")
	}
}

func TestRebuildReplacesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	emb := &stubEmbedder{model: "m", dims: 4}
	b := NewBuilder(dir, emb, 10)
	if _, err := b.Build(context.Background(), testChunks(5)); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(context.Background(), testChunks(2)); err != nil {
		t.Fatal(err)
	}

	idx, err := NewHandle(dir).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.Entries) != 2 {
		t.Fatalf("rebuild should replace the index wholesale, got %d entries", len(idx.Entries))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	versions := 0
	for _, e := range entries {
		if e.IsDir() {
			versions++
		}
	}
	if versions != 1 {
		t.Fatalf("superseded version dirs should be pruned, found %d", versions)
	}
}

func TestRebuildIsContentStable(t *testing.T) {
	dir := t.TempDir()
	chunks := testChunks(4)

	first := &stubEmbedder{model: "m", dims: 4}
	if _, err := NewBuilder(dir, first, 10).Build(context.Background(), chunks); err != nil {
		t.Fatal(err)
	}
	idxA, err := NewHandle(dir).Load()
	if err != nil {
		t.Fatal(err)
	}

	// Same chunks, slightly different vectors: the metadata sequence
	// must not change.
	noisy := &stubEmbedder{model: "m", dims: 4, noise: 1e-4}
	if _, err := NewBuilder(dir, noisy, 10).Build(context.Background(), chunks); err != nil {
		t.Fatal(err)
	}
	idxB, err := NewHandle(dir).Load()
	if err != nil {
		t.Fatal(err)
	}

	for i := range idxA.Entries {
		if idxA.Entries[i].ID != idxB.Entries[i].ID {
			t.Fatalf("chunk_id sequence changed on rebuild at %d: %q vs %q", i, idxA.Entries[i].ID, idxB.Entries[i].ID)
		}
	}
}

func TestHandleCacheInvalidation(t *testing.T) {
	dir := t.TempDir()
	emb := &stubEmbedder{model: "m", dims: 4}
	b := NewBuilder(dir, emb, 10)
	if _, err := b.Build(context.Background(), testChunks(3)); err != nil {
		t.Fatal(err)
	}

	h := NewHandle(dir)
	first, err := h.Load()
	if err != nil {
		t.Fatal(err)
	}
	again, err := h.Load()
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Fatal("unchanged CURRENT should hit the cache")
	}

	if _, err := b.Build(context.Background(), testChunks(6)); err != nil {
		t.Fatal(err)
	}
	h.Invalidate()
	reloaded, err := h.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.Entries) != 6 {
		t.Fatalf("expected reloaded index with 6 entries, got %d", len(reloaded.Entries))
	}
}

func TestLoadMissingIndex(t *testing.T) {
	idx, err := NewHandle(filepath.Join(t.TempDir(), "index")).Load()
	if err != nil {
		t.Fatalf("missing index should not error: %v", err)
	}
	if idx != nil {
		t.Fatal("missing index should load as nil")
	}
}
