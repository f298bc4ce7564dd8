package enrich

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/akazakci/deeptech-startup-data/internal/config"
	"github.com/akazakci/deeptech-startup-data/internal/model"
	"github.com/akazakci/deeptech-startup-data/internal/report"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
)

// Enricher runs website capture over a company list. Per-entity failures are
// isolated: a dead site yields a tagged record, never an aborted batch.
type Enricher struct {
	fetcher *Fetcher
	cfg     config.EnrichConfig
	limiter *rate.Limiter
	runID   string
	now     func() time.Time
}

// New creates an Enricher. The limiter spaces requests globally so a batch
// stays polite regardless of worker count.
func New(cfg config.EnrichConfig, runID string) *Enricher {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2.0
	}
	return &Enricher{
		fetcher: NewFetcher(time.Duration(cfg.TimeoutSecs)*time.Second, cfg.MaxBodyBytes, cfg.MaxTextChars),
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		runID:   runID,
		now:     time.Now,
	}
}

// Run enriches every company with a homepage URL, appending one record per
// company to the writer. Companies whose IDs are in done are skipped, which
// makes reruns resume where the previous run stopped. limit > 0 caps how many
// new records are written.
func (en *Enricher) Run(ctx context.Context, companies []model.FlatEntity, w *snapshot.JSONLWriter, done map[string]bool, limit int, summary *report.Summary) error {
	concurrency := en.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var mu sync.Mutex
	written := 0

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range companies {
		company := companies[i]
		if company.HomepageURL == "" || done[company.ID] {
			continue
		}

		mu.Lock()
		if limit > 0 && written >= limit {
			mu.Unlock()
			break
		}
		written++
		mu.Unlock()

		g.Go(func() error {
			rec := en.EnrichOne(gCtx, company)

			if rec.Error != "" && len(rec.Pages) == 0 {
				summary.RecordError(model.KindFetchFailure)
			} else {
				summary.Record()
			}

			mu.Lock()
			defer mu.Unlock()
			if err := w.Write(rec); err != nil {
				// A write failure is not isolatable: the output file is gone.
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// EnrichOne captures one company's website: homepage first, then up to
// max_pages-1 internal pages matched by the link heuristic, in fetch order.
func (en *Enricher) EnrichOne(ctx context.Context, company model.FlatEntity) model.WebsiteRecord {
	rec := model.WebsiteRecord{
		UniqueID:  company.ID,
		Name:      company.Name,
		RunID:     en.runID,
		FetchedAt: en.now().UTC(),
		Pages:     []model.PageCapture{},
	}

	homepage := company.HomepageURL
	if err := en.limiter.Wait(ctx); err != nil {
		rec.Error = err.Error()
		return rec
	}

	home, err := en.fetcher.Fetch(ctx, homepage)
	if err != nil {
		// Homepage unreachable: empty pages, empty text, tagged record.
		rec.Error = err.Error()
		zap.L().Warn("enrich: homepage fetch failed",
			zap.String("company_id", company.ID),
			zap.String("url", homepage),
			zap.Error(err),
		)
		return rec
	}

	rec.Pages = append(rec.Pages, model.PageCapture{
		URL:     home.URL,
		RawText: home.Text,
		Status:  home.Status,
	})

	internal := selectInternalLinks(home.Links, homepage, en.cfg.MaxPages-1)
	for _, link := range internal {
		if err := en.limiter.Wait(ctx); err != nil {
			break
		}
		page, err := en.fetcher.Fetch(ctx, link)
		if err != nil {
			// Internal-page failures do not void the capture.
			rec.Pages = append(rec.Pages, model.PageCapture{URL: link, Error: err.Error()})
			continue
		}
		rec.Pages = append(rec.Pages, model.PageCapture{
			URL:     page.URL,
			RawText: page.Text,
			Status:  page.Status,
		})
	}

	rec.CombinedText = en.combine(rec.Pages)
	return rec
}

// combine concatenates page texts in capture order, homepage first, capped at
// max_combined_chars.
func (en *Enricher) combine(pages []model.PageCapture) string {
	var sb strings.Builder
	for _, p := range pages {
		if p.RawText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.RawText)
	}
	return truncate(sb.String(), en.cfg.MaxCombinedChars)
}
