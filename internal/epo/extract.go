// Package epo extracts the deeptech dataset from the EPO data visualisation
// service. The primary method drives a real browser so the dataset API is
// called from an established page session; a plain HTTP method exists as a
// fallback for when no browser is available.
package epo

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/config"
	"github.com/akazakci/deeptech-startup-data/internal/model"
)

// Extractor retrieves the full applicants dataset.
type Extractor struct {
	cfg config.ExtractConfig
}

// New creates an Extractor.
func New(cfg config.ExtractConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// apiPage is one page of the applicants API response.
type apiPage struct {
	Applicants    []model.Entity `json:"applicants"`
	Content       []model.Entity `json:"content"` // older response shape
	NextPageToken string         `json:"nextPageToken"`
	TotalNrOfRows int            `json:"totalNrOfRows"`
}

func (p *apiPage) entities() []model.Entity {
	if len(p.Applicants) > 0 {
		return p.Applicants
	}
	return p.Content
}

// evalResult wraps the in-page fetch outcome.
type evalResult struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Run extracts every entity, trying the browser session first and falling
// back to direct HTTP.
func (ex *Extractor) Run(ctx context.Context) (*model.Snapshot, error) {
	method := "chromedp_session"
	entities, err := ex.runBrowser(ctx)
	if err != nil {
		zap.L().Warn("extract: browser method failed, trying direct http", zap.Error(err))
		method = "direct_http"
		entities, err = ex.runDirect(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "extract: all methods failed")
		}
	}

	now := time.Now().UTC()
	return &model.Snapshot{
		ExtractionDate:   now.Format(time.RFC3339),
		ExtractionMethod: method,
		Total:            len(entities),
		Entities:         entities,
	}, nil
}

// openSession starts a browser, navigates the public dashboard to let the
// anti-bot challenge clear, and performs a few human-looking interactions.
// The returned context carries an established page session for in-page API
// calls; the cleanup function tears the browser down.
func (ex *Extractor) openSession(ctx context.Context, timeout time.Duration) (context.Context, func(), error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("headless", ex.cfg.Headless),
		chromedp.UserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(runCtx, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	cleanup := func() {
		taskCancel()
		allocCancel()
		cancel()
	}

	zap.L().Info("extract: navigating to dataset page", zap.String("url", ex.cfg.DatasetURL))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(ex.cfg.DatasetURL),
		chromedp.Sleep(humanDelay(5*time.Second, 8*time.Second)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// A little scrolling helps the challenge clear and the session look real.
		chromedp.Evaluate(`window.scrollTo(0, 300)`, nil),
		chromedp.Sleep(humanDelay(2*time.Second, 3*time.Second)),
		chromedp.Evaluate(`window.scrollTo(0, 0)`, nil),
		chromedp.Sleep(humanDelay(1*time.Second, 2*time.Second)),
	); err != nil {
		cleanup()
		return nil, nil, eris.Wrap(err, "extract: establish session")
	}
	return taskCtx, cleanup, nil
}

func (ex *Extractor) sessionTimeout() time.Duration {
	if ex.cfg.TimeoutSecs > 0 {
		return time.Duration(ex.cfg.TimeoutSecs) * time.Second
	}
	return 10 * time.Minute
}

// runBrowser pages through the dataset API from inside an established page
// session.
func (ex *Extractor) runBrowser(ctx context.Context) ([]model.Entity, error) {
	taskCtx, cleanup, err := ex.openSession(ctx, ex.sessionTimeout())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var all []model.Entity
	token := ""
	pageNum := 0
	delay := time.Duration(ex.cfg.PageDelayMs) * time.Millisecond

	for {
		pageNum++

		var res evalResult
		if err := chromedp.Run(taskCtx,
			chromedp.Evaluate(ex.fetchScript(token), &res,
				func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
					return p.WithAwaitPromise(true)
				}),
		); err != nil {
			return nil, eris.Wrap(err, "extract: evaluate fetch")
		}
		if !res.OK {
			return nil, eris.Errorf("extract: api page %d: %s", pageNum, res.Error)
		}

		var pageData apiPage
		if err := json.Unmarshal(res.Data, &pageData); err != nil {
			return nil, eris.Wrap(err, "extract: decode api page")
		}

		batch := pageData.entities()
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		zap.L().Info("extract: page complete",
			zap.Int("page", pageNum),
			zap.Int("batch", len(batch)),
			zap.Int("total", len(all)),
			zap.Int("reported_rows", pageData.TotalNrOfRows),
		)

		token = pageData.NextPageToken
		if token == "" {
			break
		}
		if err := chromedp.Run(taskCtx, chromedp.Sleep(humanDelay(delay, delay*2))); err != nil {
			return nil, eris.Wrap(err, "extract: inter-page delay")
		}
	}

	if len(all) == 0 {
		return nil, eris.New("extract: browser session yielded no entities")
	}
	return all, nil
}

// fetchScript builds the in-page async fetch for one applicants API page.
func (ex *Extractor) fetchScript(token string) string {
	payload, _ := json.Marshal(map[string]any{
		"nextPageToken": token,
		"filters":       []any{},
	})
	return pageFetchScript(ex.cfg.APIURL, payload)
}

// pageFetchScript wraps one POST to an API endpoint in an in-page async fetch
// returning an evalResult.
func pageFetchScript(url string, payload []byte) string {
	return fmt.Sprintf(`
(async () => {
  try {
    const resp = await fetch(%q, {
      method: 'POST',
      credentials: 'include',
      headers: {
        'Content-Type': 'application/json',
        'Accept': 'application/json, text/plain, */*'
      },
      body: %q
    });
    if (!resp.ok) {
      const text = await resp.text();
      return { ok: false, error: 'HTTP ' + resp.status + ': ' + text.substring(0, 200) };
    }
    return { ok: true, data: await resp.json() };
  } catch (e) {
    return { ok: false, error: e.toString() };
  }
})()`, url, string(payload))
}

// humanDelay returns a random duration in [min, max).
func humanDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
