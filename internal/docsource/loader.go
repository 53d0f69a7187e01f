package docsource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText is one unit of extractable text: a whole flat file, or a
// single page of a paginated document. Page 0 means unpaginated.
type PageText struct {
	Text string
	Page int
}

// File is one raw document with its extracted text units.
type File struct {
	Name  string
	Pages []PageText
}

// LoadDir walks the raw directory in sorted filename order and extracts
// text from every supported file. PDFs are extracted per page; .txt and
// .md files are one flat text stream. Unknown extensions are skipped.
// A missing directory yields zero files, matching the "no documents
// yet" state.
func LoadDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var files []File
	for _, name := range names {
		path := filepath.Join(dir, name)
		var pages []PageText
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf":
			pages, err = loadPDF(path)
		case ".txt", ".md":
			pages, err = loadText(path)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		if len(pages) == 0 {
			continue
		}
		files = append(files, File{Name: name, Pages: pages})
	}
	return files, nil
}

func loadText(path string) ([]PageText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []PageText{{Text: text}}, nil
}

func loadPDF(path string) ([]PageText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []PageText
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, PageText{Text: text, Page: i})
	}
	return pages, nil
}
