package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"caselens/internal/domain"
)

// Builder materializes the vector index from a chunk collection. Every
// build replaces the whole index; there is no incremental path.
type Builder struct {
	dir       string
	embedder  domain.Embedder
	batchSize int
}

func NewBuilder(dir string, embedder domain.Embedder, batchSize int) *Builder {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Builder{dir: dir, embedder: embedder, batchSize: batchSize}
}

// Build embeds the chunks in batches and commits a new index version.
// Returns the number of embeddings written. An empty chunk collection
// returns 0 and leaves the index untouched. Any embedding failure
// aborts before the CURRENT pointer moves, so a partial build is never
// visible to readers.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		batch, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed batch starting at chunk %d: %w", start, err)
		}
		vectors = append(vectors, batch...)
	}
	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dims {
			return 0, fmt.Errorf("embedding %d has %d dims, expected %d", i, len(v), dims)
		}
	}

	version := fmt.Sprintf("v-%d", time.Now().UnixNano())
	versionDir := filepath.Join(b.dir, version)
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return 0, err
	}
	if err := writeVectors(filepath.Join(versionDir, vectorsFile), b.embedder.Model(), vectors, dims); err != nil {
		os.RemoveAll(versionDir)
		return 0, err
	}
	meta, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		os.RemoveAll(versionDir)
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(versionDir, metaFile), meta, 0o644); err != nil {
		os.RemoveAll(versionDir)
		return 0, err
	}

	if err := commitCurrent(b.dir, version); err != nil {
		os.RemoveAll(versionDir)
		return 0, err
	}
	pruneVersions(b.dir, version)
	return len(chunks), nil
}

// commitCurrent atomically repoints CURRENT at the new version.
func commitCurrent(dir, version string) error {
	tmp, err := os.CreateTemp(dir, ".current-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(version + "\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, currentFile))
}

// pruneVersions removes superseded version directories. Best effort: a
// reader holding the old version open on some platforms just keeps its
// already-loaded copy.
func pruneVersions(dir, keep string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == keep || !strings.HasPrefix(e.Name(), "v-") {
			continue
		}
		os.RemoveAll(filepath.Join(dir, e.Name()))
	}
}
