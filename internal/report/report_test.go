package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlsmith/rendercrawl/internal/model"
)

func TestSaveRoundsAndWritesDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")

	results := []model.CrawlResult{
		{URL: "https://a.com", Status: model.StatusSuccess, ElapsedSec: 1.23456, RenderedHTMLBytes: 100},
		{URL: "https://b.com", Status: model.StatusFailed, ElapsedSec: 0.001, Error: "boom"},
	}

	require.NoError(t, Save(path, results, 9.8765))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, 9.88, doc.Metadata.WallClockSec)
	assert.Equal(t, 2, doc.Metadata.NURLs)
	require.Len(t, doc.Results, 2)
	assert.Equal(t, 1.23, doc.Results[0].ElapsedSec)
	assert.Equal(t, model.StatusFailed, doc.Results[1].Status)
}

func TestSaveStatusMarshalsUppercase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")

	require.NoError(t, Save(path, []model.CrawlResult{{URL: "https://a.com", Status: model.StatusTimeout}}, 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"TIMEOUT"`)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.234))
	assert.Equal(t, 1.24, round2(1.236))
	assert.Equal(t, 0.0, round2(0))
}

func TestPrintSummaryHandlesEmptyResults(t *testing.T) {
	assert.NotPanics(t, func() { PrintSummary(nil) })
}
