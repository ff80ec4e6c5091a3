// Package pipeline orchestrates a full digest run: fetch, curate,
// render, deliver, record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonesrussell/godigest/internal/agent"
	"github.com/jonesrussell/godigest/internal/config"
	"github.com/jonesrussell/godigest/internal/domain"
	"github.com/jonesrussell/godigest/internal/email"
	"github.com/jonesrussell/godigest/internal/feed"
	"github.com/jonesrussell/godigest/internal/logger"
	"github.com/jonesrussell/godigest/internal/metrics"
	"github.com/jonesrussell/godigest/internal/render"
	"github.com/jonesrussell/godigest/internal/selection"
	"github.com/jonesrussell/godigest/internal/sources"
	"github.com/jonesrussell/godigest/internal/store"
)

// connectivityURL returns 204 when the network is up. Borrowed from the
// captive-portal detection endpoint every OS pings.
const connectivityURL = "https://www.google.com/generate_204"

// ErrOffline indicates no network; the run is skipped, not failed.
var ErrOffline = errors.New("no internet connectivity")

// Pipeline wires the digest stages together.
type Pipeline struct {
	cfg      *config.Config
	store    *store.Store
	fetcher  *feed.Fetcher
	preparer *agent.Preparer
	runner   *agent.Runner
	renderer *render.Renderer
	sender   email.Sender
	log      logger.Logger
}

// New creates a Pipeline. The store and sender come from the caller so
// commands can share one database handle and tests can stub delivery.
func New(cfg *config.Config, st *store.Store, sender email.Sender, log logger.Logger) (*Pipeline, error) {
	renderer, err := render.New(render.Options{
		Name:          cfg.Digest.Name,
		FeedbackEmail: cfg.Digest.FeedbackEmail,
		PublicBaseURL: cfg.Digest.PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:   cfg,
		store: st,
		fetcher: feed.NewFetcher(feed.Config{
			Timeout:    cfg.Fetch.Timeout,
			MaxRetries: cfg.Fetch.MaxRetries,
			RetryDelay: cfg.Fetch.RetryDelay,
		}, log),
		preparer: agent.NewPreparer(cfg.Data, log),
		runner:   agent.NewRunner(cfg.Agent.Argv(), log),
		renderer: renderer,
		sender:   sender,
		log:      log,
	}, nil
}

// Run executes the full pipeline for today. With dryRun set, the digest
// is rendered and saved but nothing is sent and nothing is recorded, so
// deduplication state stays untouched.
func (p *Pipeline) Run(ctx context.Context, dryRun bool) error {
	if err := p.checkConnectivity(ctx); err != nil {
		p.log.Warn("skipping run", logger.Error(err))
		return nil
	}

	fetched, err := p.FetchStage(ctx)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return err
	}

	if err := p.runner.Run(ctx); err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return err
	}

	date := time.Now().UTC().Format("2006-01-02")
	sel, html, err := p.RenderStage(date)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return err
	}

	if dryRun {
		p.log.Info("dry run: digest rendered, not sent", logger.String("date", date))
		metrics.RunsTotal.WithLabelValues("dry_run").Inc()
		return nil
	}

	if err := p.deliver(ctx, sel, html, date, fetched); err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.RunsTotal.WithLabelValues("sent").Inc()
	return nil
}

// FetchStage fetches and filters every source, persists the per-source
// article JSON, and prepares the agent input directory. Returns the
// number of articles kept.
func (p *Pipeline) FetchStage(ctx context.Context) (int, error) {
	srcs, err := sources.Load(p.cfg.Data.SourcesFile)
	if err != nil {
		return 0, err
	}

	watermark, err := p.store.LastRunTime()
	if err != nil {
		return 0, err
	}

	results := feed.FetchAll(ctx, p.fetcher, srcs, p.cfg.Fetch.Concurrency, p.log)

	kept := 0
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			metrics.FetchFailures.WithLabelValues(r.SourceID).Inc()
			if err := p.store.RecordHealth(r.SourceID, false, r.Err.Error()); err != nil {
				p.log.Warn("health record failed", logger.Error(err))
			}
			continue
		}
		r.Articles = feed.FilterByWatermark(r.Articles, watermark)
		kept += len(r.Articles)
		if err := p.store.RecordHealth(r.SourceID, true, ""); err != nil {
			p.log.Warn("health record failed", logger.Error(err))
		}
	}
	metrics.ArticlesFetched.Add(float64(kept))
	p.alertFailingSources()

	if err := p.preparer.WriteFetched(results); err != nil {
		return 0, err
	}

	previous := p.previousHeadlines()
	if _, err := p.preparer.PrepareInput(srcs, previous); err != nil {
		return 0, err
	}

	p.log.Info("fetch stage complete",
		logger.Int("sources", len(srcs)),
		logger.Int("articles", kept))
	return kept, nil
}

// RenderStage reads the agent's selections, repairs and validates them,
// renders the digest, and saves it under the given date.
func (p *Pipeline) RenderStage(date string) (*domain.Selections, string, error) {
	raw, err := agent.ReadSelections(p.cfg.Data.SelectionsPath())
	if err != nil {
		return nil, "", err
	}

	result, err := selection.Process(raw)
	if err != nil {
		return nil, "", err
	}
	for _, w := range result.Warnings {
		p.log.Warn("selection warning", logger.String("warning", w))
	}
	p.warnNearDuplicates(result.Selections)

	html, err := p.renderer.Render(result.Selections, date)
	if err != nil {
		return nil, "", err
	}

	if err := p.store.SaveDigest(date, html); err != nil {
		return nil, "", err
	}
	p.log.Info("digest rendered", logger.String("date", date))
	return result.Selections, html, nil
}

// deliver sends the digest and, only after a successful send, records
// the shown headlines and the run so a failed delivery never advances
// the dedup window or the watermark.
func (p *Pipeline) deliver(ctx context.Context, sel *domain.Selections, html, date string, fetched int) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("bad digest date %q: %w", date, err)
	}

	msg := email.Message{
		Subject: email.Subject(p.cfg.Digest.Name, day),
		HTML:    html,
	}
	recipients, err := p.sender.Send(ctx, msg)
	if err != nil {
		return err
	}
	metrics.EmailsSent.Add(float64(recipients))

	if err := p.store.RecordShownHeadlines(sel.ShownHeadlines()); err != nil {
		p.log.Error("recording shown headlines failed; future digests may repeat stories", logger.Error(err))
	}
	if err := p.store.RecordRun(fetched, recipients); err != nil {
		p.log.Error("recording run failed; next run will refetch old articles", logger.Error(err))
	}
	return nil
}

// SendStage delivers a previously rendered digest from the archive.
func (p *Pipeline) SendStage(ctx context.Context, date string) error {
	html, err := p.store.DigestHTML(date)
	if err != nil {
		return err
	}

	sel, err := p.storedSelections()
	if err != nil {
		p.log.Warn("selections unavailable; shown headlines will not be recorded", logger.Error(err))
		sel = &domain.Selections{}
	}

	return p.deliver(ctx, sel, html, date, 0)
}

// storedSelections re-reads the agent output left by the last run.
func (p *Pipeline) storedSelections() (*domain.Selections, error) {
	raw, err := agent.ReadSelections(p.cfg.Data.SelectionsPath())
	if err != nil {
		return nil, err
	}
	result, err := selection.Process(raw)
	if err != nil {
		return nil, err
	}
	return result.Selections, nil
}

// previousHeadlines loads the dedup window, degrading to an empty
// history when the store misbehaves: a digest with a repeated story
// beats no digest at all.
func (p *Pipeline) previousHeadlines() []domain.ShownHeadline {
	previous, err := p.store.PreviousHeadlines(p.cfg.Fetch.DedupWindowDays)
	if err != nil {
		p.log.Warn("dedup history unavailable", logger.Error(err))
		return nil
	}
	return previous
}

// warnNearDuplicates flags selected headlines that closely match one
// already shown inside the dedup window.
func (p *Pipeline) warnNearDuplicates(sel *domain.Selections) {
	previous := p.previousHeadlines()
	if len(previous) == 0 {
		return
	}
	corpus := make([]string, len(previous))
	for i, h := range previous {
		corpus[i] = h.Headline
	}
	matcher := selection.NewMatcher(corpus)

	for _, shown := range sel.ShownHeadlines() {
		if match, score := matcher.FindMostSimilar(shown.Headline); score >= selection.DuplicateThreshold {
			p.log.Warn("headline resembles one already shown",
				logger.String("headline", shown.Headline),
				logger.String("previous", match),
				logger.Any("score", score))
		}
	}
}

// alertFailingSources raises a loud log line for any source whose
// consecutive-failure streak reached the configured threshold.
func (p *Pipeline) alertFailingSources() {
	streaks, err := p.store.FailureStreaks()
	if err != nil {
		p.log.Warn("failure streaks unavailable", logger.Error(err))
		return
	}
	for sourceID, streak := range streaks {
		if streak >= p.cfg.Fetch.FailureThreshold {
			p.log.Error("source persistently failing; check its feed URL",
				logger.String("source", sourceID),
				logger.Int("consecutive_failures", streak))
		}
	}
}

// checkConnectivity probes the network before doing anything expensive.
func (p *Pipeline) checkConnectivity(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, connectivityURL, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	resp.Body.Close()
	return nil
}
