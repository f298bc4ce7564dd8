package model

import "time"

// PageCapture is one fetched page within a website enrichment record.
type PageCapture struct {
	URL     string `json:"url"`
	RawText string `json:"raw_text"`
	Status  int    `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WebsiteRecord is one enriched website capture per entity: the homepage plus
// a handful of internal pages, concatenated into combined_text. Written as one
// JSONL line per company so an interrupted run keeps completed work.
type WebsiteRecord struct {
	UniqueID     string        `json:"company_id"`
	Name         string        `json:"company_name,omitempty"`
	RunID        string        `json:"run_id,omitempty"`
	FetchedAt    time.Time     `json:"fetched_at"`
	Pages        []PageCapture `json:"pages"`
	CombinedText string        `json:"combined_text"`
	Error        string        `json:"error,omitempty"`
}

// OK reports whether at least one page was captured successfully.
func (w *WebsiteRecord) OK() bool {
	for _, p := range w.Pages {
		if p.Error == "" && p.RawText != "" {
			return true
		}
	}
	return false
}
