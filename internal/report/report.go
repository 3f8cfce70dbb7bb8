// Package report serializes crawl results to the spec's JSON format and
// prints the summary statistics the original tool printed inline at the
// end of every run.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/crawlsmith/rendercrawl/internal/model"
)

// Metadata describes the overall run, alongside the per-URL results.
type Metadata struct {
	WallClockSec float64 `json:"wall_clock_sec"`
	NURLs        int     `json:"n_urls"`
}

// Document is the full output JSON shape: metadata plus results.
type Document struct {
	Metadata Metadata            `json:"metadata"`
	Results  []model.CrawlResult `json:"results"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Save writes results to path as the spec's JSON document, rounding
// elapsed_sec and wall_clock_sec to 2 decimals.
func Save(path string, results []model.CrawlResult, wallClockSec float64) error {
	rounded := make([]model.CrawlResult, len(results))
	for i, r := range results {
		r.ElapsedSec = round2(r.ElapsedSec)
		rounded[i] = r
	}

	doc := Document{
		Metadata: Metadata{
			WallClockSec: round2(wallClockSec),
			NURLs:        len(results),
		},
		Results: rounded,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}

// PrintSummary prints per-status counts and byte-size ranges, matching
// the original tool's inline print_stats (kept here as a CLI nicety, not
// the separate offline plotting tool — see SPEC_FULL.md).
func PrintSummary(results []model.CrawlResult) {
	var nSuccess, nTimeout, nFailed int
	var initBytes, rendBytes []int

	for _, r := range results {
		switch r.Status {
		case model.StatusSuccess:
			nSuccess++
		case model.StatusTimeout:
			nTimeout++
		case model.StatusFailed:
			nFailed++
		}
		if r.InitialHTMLBytes > 0 {
			initBytes = append(initBytes, r.InitialHTMLBytes)
		}
		if r.RenderedHTMLBytes > 0 {
			rendBytes = append(rendBytes, r.RenderedHTMLBytes)
		}
	}

	fmt.Println("\n=== Crawl Stats ===")
	fmt.Printf("Total: %d, Success: %d, Timeout: %d, Failed: %d\n",
		len(results), nSuccess, nTimeout, nFailed)
	if len(initBytes) > 0 {
		fmt.Printf("Initial HTML: min=%d, max=%d, avg=%d\n",
			minInt(initBytes), maxInt(initBytes), avgInt(initBytes))
	}
	if len(rendBytes) > 0 {
		fmt.Printf("Rendered HTML: min=%d, max=%d, avg=%d\n",
			minInt(rendBytes), maxInt(rendBytes), avgInt(rendBytes))
	}
}

func minInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func avgInt(xs []int) int {
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return sum / len(xs)
}
