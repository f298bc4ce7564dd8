package epo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/model"
)

// runDirect pages through the applicants API with plain HTTP. The endpoint
// sits behind an anti-bot proxy that usually rejects non-browser clients, but
// it is worth one attempt before giving up.
func (ex *Extractor) runDirect(ctx context.Context) ([]model.Entity, error) {
	client := &http.Client{Timeout: 60 * time.Second}
	delay := time.Duration(ex.cfg.PageDelayMs) * time.Millisecond

	var all []model.Entity
	token := ""
	pageNum := 0

	for {
		pageNum++

		page, err := ex.fetchPage(ctx, client, token)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: direct http page %d", pageNum)
		}

		batch := page.entities()
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		zap.L().Info("extract: page complete",
			zap.Int("page", pageNum),
			zap.Int("batch", len(batch)),
			zap.Int("total", len(all)),
		)

		token = page.NextPageToken
		if token == "" {
			break
		}

		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "extract: direct http interrupted")
		case <-time.After(humanDelay(delay, delay*2)):
		}
	}

	if len(all) == 0 {
		return nil, eris.New("extract: direct http yielded no entities")
	}
	return all, nil
}

func (ex *Extractor) fetchPage(ctx context.Context, client *http.Client, token string) (*apiPage, error) {
	payload, err := json.Marshal(map[string]any{
		"nextPageToken": token,
		"filters":       []any{},
	})
	if err != nil {
		return nil, eris.Wrap(err, "encode payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ex.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", ex.cfg.DatasetURL)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "post")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("status %d: %.200s", resp.StatusCode, string(body))
	}

	var page apiPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, eris.Wrap(err, "decode body")
	}
	return &page, nil
}
