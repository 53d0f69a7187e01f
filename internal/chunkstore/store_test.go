package chunkstore

import (
	"path/filepath"
	"reflect"
	"testing"

	"caselens/internal/domain"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "chunks.jsonl")
	chunks := []domain.Chunk{
		{ID: "a.txt::c0", Filename: "a.txt", Text: "first chunk"},
		{ID: "b.pdf::p2::c0", Filename: "b.pdf", Page: 2, Text: "second chunk"},
		{ID: "b.pdf::p2::c1", Filename: "b.pdf", Page: 2, Text: "third chunk"},
	}
	if err := Write(path, chunks); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, chunks) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, chunks)
	}
}

func TestReadMissingStore(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("missing store should not error: %v", err)
	}
	if got != nil {
		t.Fatalf("missing store should yield no chunks, got %d", len(got))
	}
}

func TestWriteReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	first := []domain.Chunk{
		{ID: "old.txt::c0", Filename: "old.txt", Text: "stale"},
		{ID: "old.txt::c1", Filename: "old.txt", Text: "stale too"},
	}
	if err := Write(path, first); err != nil {
		t.Fatal(err)
	}
	second := []domain.Chunk{{ID: "new.txt::c0", Filename: "new.txt", Text: "fresh"}}
	if err := Write(path, second); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Fatalf("rewrite should replace the store, got %+v", got)
	}
}

func TestWriteEmptyCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	if err := Write(path, nil); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("empty write should read back empty, got %d", len(got))
	}
}
