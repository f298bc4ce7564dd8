package positioning

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/config"
	"github.com/akazakci/deeptech-startup-data/internal/model"
	"github.com/akazakci/deeptech-startup-data/internal/report"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
	"github.com/akazakci/deeptech-startup-data/pkg/anthropic"
)

// Extractor turns website captures into schema-v1 positioning records.
type Extractor struct {
	client anthropic.Client
	cfg    config.PositioningConfig
	model  string
	runID  string
	now    func() time.Time
}

// New creates an Extractor using the given LLM client.
func New(client anthropic.Client, cfg config.PositioningConfig, modelID, runID string) *Extractor {
	return &Extractor{
		client: client,
		cfg:    cfg,
		model:  modelID,
		runID:  runID,
		now:    time.Now,
	}
}

// Run extracts positioning for every website record, appending one schema-v1
// record per company. IDs in done are skipped for resumption; limit > 0 caps
// new records. Per-record failures are written as failed records, never
// dropped.
func (ex *Extractor) Run(ctx context.Context, records []model.WebsiteRecord, sourceFile string, w *snapshot.JSONLWriter, done map[string]bool, limit int, summary *report.Summary) error {
	written := 0
	for i := range records {
		if done[records[i].UniqueID] {
			continue
		}
		if limit > 0 && written >= limit {
			break
		}

		rec := ex.ExtractOne(ctx, &records[i])
		rec.SourceWebsitesFile = sourceFile

		switch {
		case rec.ScoreRangeError:
			summary.RecordError(model.KindScoreRangeError)
		case !rec.OK:
			summary.RecordError(model.KindExtractionFailed)
		default:
			summary.Record()
		}

		if err := w.Write(rec); err != nil {
			return err
		}
		written++

		if written%10 == 0 {
			zap.L().Info("positioning progress",
				zap.Int("written", written),
				zap.Int("errors", summary.Errors()),
			)
		}
	}
	return nil
}

// ExtractOne runs the schema-v1 extraction for a single company. Every
// outcome is a record: missing input, API failures, malformed JSON, and
// out-of-range scores are all tagged rather than discarded.
func (ex *Extractor) ExtractOne(ctx context.Context, site *model.WebsiteRecord) model.PositioningRecord {
	rec := model.PositioningRecord{
		UniqueID:      site.UniqueID,
		Name:          site.Name,
		RunID:         ex.runID,
		CreatedAt:     ex.now().UTC(),
		Provider:      "anthropic",
		Model:         ex.model,
		Temperature:   ex.cfg.Temperature,
		PromptVersion: PromptVersion,
		PromptSHA256:  PromptSHA256(),
		SchemaVersion: model.SchemaVersionV1,
	}

	text := NormalizeInputText(site.CombinedText, ex.cfg.MaxInputChars)
	rec.InputTextSHA256 = SHA256(text)
	rec.InputTextCharCount = len(text)

	if text == "" {
		rec.Error = "no combined_text available from website capture"
		return rec
	}

	timeout := time.Duration(ex.cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	temp := ex.cfg.Temperature
	resp, err := ex.client.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:       ex.model,
		MaxTokens:   ex.cfg.MaxTokens,
		System:      systemPrompt,
		Prompt:      BuildPrompt(site.Name, text),
		Temperature: &temp,
	})
	if err != nil {
		rec.Error = eris.Wrap(err, "positioning: model call").Error()
		return rec
	}
	rec.LLMRawResponse = resp.Text
	resp.Usage.LogCost(ex.model, "positioning")

	extraction, err := parseExtraction(resp.Text)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	rec.Extraction = extraction

	if violations := ValidateScores(site.UniqueID, &extraction.Scores); len(violations) > 0 {
		// Flag and retain; clamping would mask prompt regressions.
		rec.ScoreRangeError = true
		for _, v := range violations {
			zap.L().Warn("positioning: score out of range",
				zap.String("company_id", v.UniqueID),
				zap.String("score", v.Score),
				zap.Float64("value", v.Value),
			)
		}
		rec.Error = violations[0].Error()
		return rec
	}

	rec.OK = true
	return rec
}

// parseExtraction decodes the model's JSON response, tolerating a fenced code
// block around it.
func parseExtraction(raw string) (*model.Extraction, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var ext model.Extraction
	if err := json.Unmarshal([]byte(cleaned), &ext); err != nil {
		return nil, eris.Wrap(err, "positioning: response is not schema-v1 JSON")
	}
	return &ext, nil
}

// ValidateScores checks every score lies in [0,1] and returns one
// ScoreRangeError per violation.
func ValidateScores(uniqueID string, s *model.Scores) []*model.ScoreRangeError {
	checks := []struct {
		name  string
		value float64
	}{
		{"positioning_clarity", s.PositioningClarity},
		{"market_focus", s.MarketFocus},
		{"commercial_readiness", s.CommercialReadiness},
		{"differentiation_strength", s.DifferentiationStrength},
		{"technical_credibility", s.TechnicalCredibility},
	}

	var violations []*model.ScoreRangeError
	for _, c := range checks {
		if c.value < 0 || c.value > 1 {
			violations = append(violations, &model.ScoreRangeError{
				UniqueID: uniqueID,
				Score:    c.name,
				Value:    c.value,
			})
		}
	}
	return violations
}
