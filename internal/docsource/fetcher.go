package docsource

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"caselens/internal/sources"
)

const fetchUserAgent = "CaseLens-Research-Terminal/1.0 (academic research; educational use only)"

// FetchResult reports the outcome of fetching one source document.
type FetchResult struct {
	Filename string
	Title    string
	Err      error
	Chars    int
}

// Fetcher downloads case documents and writes them into the raw
// directory as plain text, ready for ingestion.
type Fetcher struct {
	rawDir string
	client *http.Client
	// Delay between requests; the publishers are not ours to hammer.
	delay time.Duration
}

func NewFetcher(rawDir string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		rawDir: rawDir,
		client: &http.Client{Timeout: timeout},
		delay:  time.Second,
	}
}

// FetchAll downloads every source in order. A failed source is reported
// in its result and does not stop the rest.
func (f *Fetcher) FetchAll(ctx context.Context, srcs []sources.Source) []FetchResult {
	results := make([]FetchResult, 0, len(srcs))
	for i, src := range srcs {
		n, err := f.fetchOne(ctx, src)
		results = append(results, FetchResult{Filename: src.Filename, Title: src.Title, Err: err, Chars: n})
		if i < len(srcs)-1 {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return results
			}
		}
	}
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, src sources.Source) (int, error) {
	if err := os.MkdirAll(f.rawDir, 0o755); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("fetch %s: %s", src.URL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", src.URL, err)
	}
	text := extractBody(doc, src.Selectors)
	if src.MaxChars > 0 && len(text) > src.MaxChars {
		text = text[:src.MaxChars]
	}

	header := fmt.Sprintf("TITLE: %s\nSOURCE URL: %s\nFETCHED: %s\n%s\n\n",
		src.Title, src.URL, time.Now().Format("2006-01-02"), strings.Repeat("=", 60))
	out := filepath.Join(f.rawDir, src.Filename)
	if err := os.WriteFile(out, []byte(header+text), 0o644); err != nil {
		return 0, err
	}
	return len(text), nil
}

// extractBody tries each selector until one yields substantial text,
// after stripping script/style/navigation boilerplate. Falls back to
// the whole document text.
func extractBody(doc *goquery.Document, selectors []string) string {
	doc.Find("script, style, nav, header, footer, aside, noscript").Remove()
	for _, sel := range selectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text := cleanText(el.Text())
		if len(text) > 200 {
			return text
		}
	}
	return cleanText(doc.Text())
}

var (
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	runSpacesRe  = regexp.MustCompile(`[ \t]{2,}`)
)

func cleanText(raw string) string {
	raw = blankLinesRe.ReplaceAllString(raw, "\n\n")
	raw = runSpacesRe.ReplaceAllString(raw, " ")
	return strings.TrimSpace(raw)
}
