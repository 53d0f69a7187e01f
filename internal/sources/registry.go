package sources

// Source describes one case document: where it is fetched from, how the
// body is located in the page, and how it is labeled in citations.
type Source struct {
	Filename  string
	Title     string
	URL       string
	Selectors []string
	MaxChars  int
}

// Catalog lists the public Mastercard case documents the terminal is
// built around. Filenames double as the keys chunks carry through the
// index, so display lookups stay a plain map hit.
var Catalog = []Source{
	{
		Filename:  "01_mastercard_agent_suite.txt",
		Title:     "Mastercard Agent Suite Launch — Official Press Release (January 2026)",
		URL:       "https://www.mastercard.com/us/en/news-and-trends/press/2026/january/mastercard-launches-agent-suite-to-ready-enterprises-for-a-new-e.html",
		Selectors: []string{"article", ".press-detail", ".content-body", "main", "body"},
	},
	{
		Filename:  "02_cloudflare_mastercard_cyber.txt",
		Title:     "Cloudflare × Mastercard Cyber Defense Partnership — Press Release (2026)",
		URL:       "https://www.cloudflare.com/press/press-releases/2026/cloudflare-and-mastercard-partner-to-extend-comprehensive-cyber-defense/",
		Selectors: []string{"article", ".press-release-body", "main", ".content", "body"},
	},
	{
		Filename:  "03_cloudflare_mastercard_agentic.txt",
		Title:     "Cloudflare × Mastercard Agentic Commerce Collaboration — Press Release (2025)",
		URL:       "https://www.cloudflare.com/press/press-releases/2025/cloudflare-collaborates-with-leading-payments-companies-to-secure-and-enable-agentic-commerce/",
		Selectors: []string{"article", ".press-release-body", "main", ".content", "body"},
	},
	{
		Filename:  "04_mastercard_10k_2024.txt",
		Title:     "Mastercard 10-K Annual Report FY2024 (SEC EDGAR)",
		URL:       "https://www.sec.gov/Archives/edgar/data/1141391/000114139125000011/ma-20241231.htm",
		Selectors: []string{"body"},
		// Business + Risk Factors + MD&A fit in the first 250k chars.
		MaxChars: 250_000,
	},
}

var byFilename = func() map[string]Source {
	m := make(map[string]Source, len(Catalog))
	for _, s := range Catalog {
		m[s.Filename] = s
	}
	return m
}()

// Lookup resolves a filename to its registry entry. Files outside the
// catalog (hand-dropped PDFs and notes) are still first-class; callers
// fall back to the raw filename for display.
func Lookup(filename string) (Source, bool) {
	s, ok := byFilename[filename]
	return s, ok
}
