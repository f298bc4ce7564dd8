package model

import "time"

// SchemaVersionV1 tags every positioning record so that records produced
// under different schemas are detectable when mixed in one analysis file.
const SchemaVersionV1 = "v1"

// BusinessModel describes how the company sells.
type BusinessModel struct {
	PrimaryMotion string `json:"primary_motion"` // B2B | B2C | B2G | B2B2C | Other | Unknown
	OfferingType  string `json:"offering_type"`  // Software | Hardware | Biotech/Therapeutic | Materials/Chemistry | Services | Mixed | Unknown
	RevenueModel  string `json:"revenue_model"`  // Subscription | Usage-based | Licensing | Hardware sales | Services | R&D partnerships | Unknown
}

// Signals are boolean traction indicators detected in the website text.
type Signals struct {
	MentionsCustomers                 bool `json:"mentions_customers"`
	MentionsPartners                  bool `json:"mentions_partners"`
	MentionsPricing                   bool `json:"mentions_pricing"`
	MentionsCaseStudies               bool `json:"mentions_case_studies"`
	MentionsRegulationOrCertification bool `json:"mentions_regulation_or_certification"`
}

// Scores are the five 0..1 positioning scores of schema v1.
type Scores struct {
	PositioningClarity      float64 `json:"positioning_clarity"`
	MarketFocus             float64 `json:"market_focus"`
	CommercialReadiness     float64 `json:"commercial_readiness"`
	DifferentiationStrength float64 `json:"differentiation_strength"`
	TechnicalCredibility    float64 `json:"technical_credibility"`
}

// Rationales hold a short model-written justification per score.
type Rationales struct {
	PositioningClarity      string `json:"positioning_clarity"`
	MarketFocus             string `json:"market_focus"`
	CommercialReadiness     string `json:"commercial_readiness"`
	DifferentiationStrength string `json:"differentiation_strength"`
	TechnicalCredibility    string `json:"technical_credibility"`
}

// Extraction is the structured schema-v1 payload returned by the model.
type Extraction struct {
	PositioningStatement string        `json:"positioning_statement"`
	OneLiner             string        `json:"one_liner"`
	ProductCategory      string        `json:"product_category"`
	TargetCustomers      []string      `json:"target_customers"`
	TargetUsers          []string      `json:"target_users"`
	JobToBeDone          string        `json:"job_to_be_done"`
	UseCases             []string      `json:"use_cases"`
	Verticals            []string      `json:"verticals"`
	BusinessModel        BusinessModel `json:"business_model"`
	ValueProps           []string      `json:"value_props"`
	Differentiators      []string      `json:"differentiators"`
	ProofPoints          []string      `json:"proof_points"`
	Signals              Signals       `json:"signals"`
	Scores               Scores        `json:"scores"`
	Rationales           Rationales    `json:"rationales"`
	EvidenceQuotes       []string      `json:"evidence_quotes"`
}

// PositioningRecord is one schema-v1 extraction result per entity, including
// full provenance for reproducibility. Failed extractions keep the raw model
// response for audit instead of being discarded.
type PositioningRecord struct {
	UniqueID        string      `json:"company_id"`
	Name            string      `json:"company_name,omitempty"`
	RunID           string      `json:"run_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at_utc"`
	OK              bool        `json:"ok"`
	Extraction      *Extraction `json:"extraction,omitempty"`
	Error           string      `json:"error,omitempty"`
	ScoreRangeError bool        `json:"score_range_error,omitempty"`

	// Provenance.
	Provider           string  `json:"provider,omitempty"`
	Model              string  `json:"model,omitempty"`
	Temperature        float64 `json:"temperature"`
	PromptVersion      string  `json:"prompt_version"`
	PromptSHA256       string  `json:"prompt_sha256,omitempty"`
	SchemaVersion      string  `json:"schema_version"`
	LLMRawResponse     string  `json:"llm_raw_response,omitempty"`
	InputTextSHA256    string  `json:"input_combined_text_sha256,omitempty"`
	InputTextCharCount int     `json:"input_combined_text_char_count"`
	SourceWebsitesFile string  `json:"source_websites_file,omitempty"`
}
