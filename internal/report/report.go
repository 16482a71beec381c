// Package report assembles and persists the per-domain scan output.
package report

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-scripts/consolescan/internal/console"
)

// Report is the top-level JSON output for one scan run.
type Report struct {
	SiteURL       string           `json:"site_url"`
	Domain        string           `json:"domain"`
	ScrapedAt     time.Time        `json:"scraped_at"`
	GDPRCompliant bool             `json:"gdpr_compliant"`
	ErrorCount    int              `json:"error_count"`
	Errors        []console.Record `json:"errors"`
}

// New assembles a report from the captured records. ErrorCount always
// equals len(Errors), and an empty run serializes as "errors": [].
func New(siteURL string, gdprCompliant bool, records []console.Record) (*Report, error) {
	domain, err := DomainOf(siteURL)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []console.Record{}
	}
	return &Report{
		SiteURL:       siteURL,
		Domain:        domain,
		ScrapedAt:     time.Now(),
		GDPRCompliant: gdprCompliant,
		ErrorCount:    len(records),
		Errors:        records,
	}, nil
}

// Summary counts records per kind.
func (r *Report) Summary() map[string]int {
	counts := make(map[string]int)
	for _, rec := range r.Errors {
		counts[rec.Kind]++
	}
	return counts
}

// DomainOf returns the host portion of the URL, port included when the
// source URL carries one. Scheme, path and query are dropped.
func DomainOf(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("invalid site URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("site URL %q has no host", siteURL)
	}
	return u.Host, nil
}

// Writer persists reports under a fixed output directory.
type Writer struct {
	outputDir string
}

// NewWriter creates the output directory if needed.
func NewWriter(outputDir string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{outputDir: outputDir}, nil
}

// Write serializes the report as indented JSON to <domain>.json inside the
// output directory, overwriting any previous run for the same domain. It
// returns the written path.
func (w *Writer) Write(r *Report) (string, error) {
	path := filepath.Join(w.outputDir, sanitizeFilename(r.Domain)+".json")

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// sanitizeFilename keeps host:port domains usable as file names.
func sanitizeFilename(domain string) string {
	return strings.ReplaceAll(domain, ":", "_")
}
