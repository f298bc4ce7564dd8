package epo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/model"
	"github.com/akazakci/deeptech-startup-data/internal/report"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
)

// pubPage is one page of the per-organization publications API response.
type pubPage struct {
	Publications  []model.Publication `json:"publications"`
	Content       []model.Publication `json:"content"` // older response shape
	NextPageToken string              `json:"nextPageToken"`
	TotalNrOfRows int                 `json:"totalNrOfRows"`
}

func (p *pubPage) items() []model.Publication {
	if len(p.Publications) > 0 {
		return p.Publications
	}
	return p.Content
}

// RunPublications fetches the publication list of every entity not yet in
// done, appending one JSONL record per organization. A failed org yields a
// tagged error record with an empty list and the batch continues; only writer
// and session failures abort the run.
func (ex *Extractor) RunPublications(ctx context.Context, entities []model.Entity, runID string, w *snapshot.JSONLWriter, done map[string]bool, limit int, summary *report.Summary) error {
	taskCtx, cleanup, err := ex.openSession(ctx, ex.sessionTimeout())
	if err != nil {
		return err
	}
	defer cleanup()

	orgDelay := time.Duration(ex.cfg.OrgDelayMs) * time.Millisecond
	fetched := 0
	for i := range entities {
		e := &entities[i]
		if e.UniqueID == "" || done[e.UniqueID] {
			continue
		}
		if limit > 0 && fetched >= limit {
			zap.L().Info("publications: limit reached", zap.Int("limit", limit))
			break
		}
		fetched++

		rec := model.PublicationsRecord{
			OrgID:        e.UniqueID,
			Name:         e.Name,
			Role:         e.Role,
			RunID:        runID,
			Publications: []model.Publication{},
		}
		pubs, err := ex.fetchOrgPublications(taskCtx, e.UniqueID)
		if err != nil {
			rec.Error = err.Error()
			summary.RecordError(model.KindFetchFailure)
			zap.L().Warn("publications: org failed",
				zap.String("org_id", e.UniqueID),
				zap.String("name", e.Name),
				zap.Error(err),
			)
		} else {
			rec.Total = len(pubs)
			rec.Publications = pubs
			summary.Record()
			zap.L().Info("publications: org complete",
				zap.String("org_id", e.UniqueID),
				zap.Int("publications", len(pubs)),
				zap.Int("fetched", fetched),
			)
		}
		if err := w.Write(&rec); err != nil {
			return eris.Wrap(err, "publications: write record")
		}

		select {
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "publications: cancelled")
		case <-time.After(humanDelay(orgDelay, orgDelay*2)):
		}
	}
	return nil
}

// fetchOrgPublications pages through one organization's publications from
// inside the established page session.
func (ex *Extractor) fetchOrgPublications(taskCtx context.Context, orgID string) ([]model.Publication, error) {
	var all []model.Publication
	token := ""
	pageNum := 0
	delay := time.Duration(ex.cfg.PageDelayMs) * time.Millisecond

	for {
		pageNum++

		var res evalResult
		if err := chromedp.Run(taskCtx,
			chromedp.Evaluate(ex.publicationsScript(orgID, token), &res,
				func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
					return p.WithAwaitPromise(true)
				}),
		); err != nil {
			return nil, eris.Wrap(err, "publications: evaluate fetch")
		}
		if !res.OK {
			return nil, eris.Errorf("publications: api page %d: %s", pageNum, res.Error)
		}

		var pageData pubPage
		if err := json.Unmarshal(res.Data, &pageData); err != nil {
			return nil, eris.Wrap(err, "publications: decode api page")
		}

		batch := pageData.items()
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)

		token = pageData.NextPageToken
		if token == "" {
			break
		}
		if err := chromedp.Run(taskCtx, chromedp.Sleep(humanDelay(delay, delay*2))); err != nil {
			return nil, eris.Wrap(err, "publications: inter-page delay")
		}
	}
	return all, nil
}

// publicationsScript builds the in-page async fetch for one publications API
// page, filtered to a single organization.
func (ex *Extractor) publicationsScript(orgID, token string) string {
	payload, _ := json.Marshal(map[string]any{
		"nextPageToken": token,
		"filters": []any{
			map[string]any{
				"filter_id":     "org_id",
				"filter_values": []any{map[string]any{"id": orgID}},
			},
		},
	})
	return pageFetchScript(ex.cfg.PublicationsAPIURL, payload)
}
