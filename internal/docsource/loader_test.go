package docsource

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDirSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"02_cyber.txt": "cyber defense body",
		"01_agent.md":  "agent suite body",
		"notes.docx":   "unsupported",
		"empty.txt":    "   \n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	loaded, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 loadable files, got %d", len(loaded))
	}
	if loaded[0].Name != "01_agent.md" || loaded[1].Name != "02_cyber.txt" {
		t.Fatalf("files should come back in sorted order: %q, %q", loaded[0].Name, loaded[1].Name)
	}
	if len(loaded[0].Pages) != 1 || loaded[0].Pages[0].Page != 0 {
		t.Fatalf("flat text should load as one unpaginated unit: %+v", loaded[0].Pages)
	}
	if loaded[0].Pages[0].Text != "agent suite body" {
		t.Fatalf("unexpected text: %q", loaded[0].Pages[0].Text)
	}
}

func TestLoadDirMissing(t *testing.T) {
	loaded, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if loaded != nil {
		t.Fatalf("missing dir should yield no files, got %d", len(loaded))
	}
}
