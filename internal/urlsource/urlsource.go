// Package urlsource is plain I/O glue for loading a seed URL list: one URL
// per line, blank lines ignored, whitespace trimmed, with an optional
// prefix limit. Out of scope for the coordination layer itself, but
// needed to drive it from the CLI.
package urlsource

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/crawlsmith/rendercrawl/internal/config"
)

// Load reads URLs from path, one per line. Blank lines are skipped, each
// line is whitespace-trimmed, and lines that don't validate as an
// http(s) URL are skipped with a warning rather than handed to the
// crawler. If limit > 0, only the first limit valid URLs are returned.
func Load(path string, limit int, logger *slog.Logger) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer f.Close()

	var urls []string
	var skipped int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := config.ValidateURL(line); err != nil {
			skipped++
			if logger != nil {
				logger.Warn("skipping invalid url", "url", line, "error", err)
			}
			continue
		}
		urls = append(urls, line)
		if limit > 0 && len(urls) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url file: %w", err)
	}

	if logger != nil {
		logger.Info("urls loaded", "count", len(urls), "skipped", skipped, "path", path)
	}
	return urls, nil
}
