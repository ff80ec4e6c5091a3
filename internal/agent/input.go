// Package agent prepares input for, runs, and collects output from the
// external LLM curation agent.
package agent

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonesrussell/godigest/internal/config"
	"github.com/jonesrussell/godigest/internal/domain"
	"github.com/jonesrussell/godigest/internal/logger"
)

const (
	// maxTokensPerFile keeps each article chunk within what the agent
	// reads comfortably in one file.
	maxTokensPerFile = 10000
	// csvSummaryLimit trims summaries again for CSV input; the agent
	// needs the gist, not the whole abstract.
	csvSummaryLimit = 200
)

// estimateTokens approximates token count for mixed prose at ~3 chars
// per token. Deliberately conservative.
func estimateTokens(text string) int {
	return len(text) / 3
}

// Preparer writes the agent's working directory.
type Preparer struct {
	data config.DataConfig
	log  logger.Logger
}

// NewPreparer creates a Preparer.
func NewPreparer(data config.DataConfig, log logger.Logger) *Preparer {
	return &Preparer{data: data, log: log}
}

// WriteFetched rebuilds the fetch directory with each successful
// source's articles as JSON. The directory is cleared first so a source
// that failed this run leaves no file behind: a stale file from an
// earlier run would feed already-curated articles back to the agent.
// Failed sources are skipped; their absence is already recorded in
// source health.
func (p *Preparer) WriteFetched(results []domain.FetchResult) error {
	dir := p.data.FetchDir()
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear fetch directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create fetch directory: %w", err)
	}

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		buf, err := json.MarshalIndent(r.Articles, "", "  ")
		if err != nil {
			return fmt.Errorf("encode articles for %s: %w", r.SourceID, err)
		}
		path := filepath.Join(dir, r.SourceID+".json")
		if err := os.WriteFile(path, buf, 0o600); err != nil {
			return fmt.Errorf("write articles for %s: %w", r.SourceID, err)
		}
	}
	return nil
}

// PrepareInput rebuilds the agent input directory: previous headlines,
// the source roster, and article chunks. Returns the article file paths.
func (p *Preparer) PrepareInput(srcs []domain.Source, previous []domain.ShownHeadline) ([]string, error) {
	dir := p.data.AgentInputDir()
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear agent input directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create agent input directory: %w", err)
	}

	if err := p.writeHeadlines(dir, previous); err != nil {
		return nil, err
	}
	if err := p.writeSources(dir, srcs); err != nil {
		return nil, err
	}

	rows, err := p.collectArticleRows(srcs)
	if err != nil {
		return nil, err
	}
	files, err := p.writeArticleChunks(dir, rows)
	if err != nil {
		return nil, err
	}

	p.log.Info("agent input prepared",
		logger.Int("headlines", len(previous)),
		logger.Int("articles", len(rows)),
		logger.Int("article_files", len(files)))
	return files, nil
}

func (p *Preparer) writeHeadlines(dir string, previous []domain.ShownHeadline) error {
	rows := make([][]string, 0, len(previous)+1)
	rows = append(rows, []string{"headline", "tier", "date"})
	for _, h := range previous {
		rows = append(rows, []string{h.Headline, h.Tier, h.ShownAt.Format("2006-01-02")})
	}
	return writeCSV(filepath.Join(dir, "headlines.csv"), rows)
}

func (p *Preparer) writeSources(dir string, srcs []domain.Source) error {
	rows := make([][]string, 0, len(srcs)+1)
	rows = append(rows, []string{"id", "name", "bias", "perspective"})
	for _, s := range srcs {
		rows = append(rows, []string{s.ID, s.Name, string(s.Bias), s.Perspective})
	}
	return writeCSV(filepath.Join(dir, "sources.csv"), rows)
}

// collectArticleRows reads each source's fetched JSON in roster order.
// A missing file means the source failed this run.
func (p *Preparer) collectArticleRows(srcs []domain.Source) ([][]string, error) {
	var rows [][]string
	for _, src := range srcs {
		path := filepath.Join(p.data.FetchDir(), src.ID+".json")
		buf, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read fetched articles for %s: %w", src.ID, err)
		}
		var articles []domain.Article
		if err := json.Unmarshal(buf, &articles); err != nil {
			return nil, fmt.Errorf("parse fetched articles for %s: %w", src.ID, err)
		}
		for _, a := range articles {
			rows = append(rows, []string{
				src.ID,
				a.Title,
				a.URL,
				a.Published,
				truncate(a.Summary, csvSummaryLimit),
			})
		}
	}
	return rows, nil
}

// writeArticleChunks splits rows across articles_N.csv files so each
// stays under the token cap. A row never splits across files.
func (p *Preparer) writeArticleChunks(dir string, rows [][]string) ([]string, error) {
	header := []string{"source_id", "title", "url", "published", "summary"}

	var files []string
	var chunk [][]string
	chunkTokens := 0
	fileNum := 1

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		path := filepath.Join(dir, fmt.Sprintf("articles_%d.csv", fileNum))
		if err := writeCSV(path, append([][]string{header}, chunk...)); err != nil {
			return err
		}
		files = append(files, path)
		fileNum++
		chunk = nil
		chunkTokens = 0
		return nil
	}

	for _, row := range rows {
		rowTokens := estimateTokens(strings.Join(row, ","))
		if chunkTokens+rowTokens > maxTokensPerFile && len(chunk) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		chunk = append(chunk, row)
		chunkTokens += rowTokens
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return files, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
