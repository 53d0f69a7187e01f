package ingest

import (
	"fmt"

	"caselens/internal/chunkstore"
	"caselens/internal/docsource"
	"caselens/internal/domain"
)

// Chunker is the slice of the chunking component ingestion needs.
type Chunker interface {
	Chunk(text, filename string, page int) []domain.Chunk
}

// Run extracts text from every document in rawDir, chunks it, and
// rewrites the chunk store wholesale. Paginated documents are chunked
// per page so no chunk spans a page boundary. Returns the number of
// chunks written. An empty or missing raw directory writes an empty
// store and returns 0; that is not an error.
func Run(rawDir, chunksFile string, ch Chunker) (int, error) {
	files, err := docsource.LoadDir(rawDir)
	if err != nil {
		return 0, fmt.Errorf("scan raw documents: %w", err)
	}
	var chunks []domain.Chunk
	for _, f := range files {
		for _, p := range f.Pages {
			chunks = append(chunks, ch.Chunk(p.Text, f.Name, p.Page)...)
		}
	}
	if err := chunkstore.Write(chunksFile, chunks); err != nil {
		return 0, fmt.Errorf("write chunk store: %w", err)
	}
	return len(chunks), nil
}
