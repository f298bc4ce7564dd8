// Package positioning compresses raw website captures into the schema-v1
// positioning variables using a fixed, versioned prompt.
package positioning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// PromptVersion identifies the prompt text; bump when the wording changes so
// extractions across runs stay comparable.
const PromptVersion = "positioning_v1_2026-01-06"

const systemPrompt = "You are a meticulous research assistant. " +
	"Extract product positioning variables from a company's website text. " +
	"Return ONLY valid JSON and nothing else."

// schemaV1 is the field-by-field schema embedded in the user prompt. Kept as
// a literal so the prompt hash is stable across builds.
const schemaV1 = `{
  "positioning_statement": "string. Canonical statement: For <target customer> who <need>, <company> is a <category> that <value>. Unlike <alternative>, it <differentiator>.",
  "one_liner": "string. A short plain-language description (<= 25 words).",
  "product_category": "string. The market category (e.g., 'battery materials', 'genomics platform', 'industrial robotics').",
  "target_customers": "array[string]. Buyer segments (e.g., 'hospitals', 'utilities', 'OEMs', 'pharma R&D').",
  "target_users": "array[string]. End users (if distinct from buyers).",
  "job_to_be_done": "string. The core job/problem the product solves.",
  "use_cases": "array[string]. Concrete use cases.",
  "verticals": "array[string]. Industry verticals.",
  "business_model": {
    "primary_motion": "string. One of: B2B | B2C | B2G | B2B2C | Other | Unknown",
    "offering_type": "string. One of: Software | Hardware | Biotech/Therapeutic | Materials/Chemistry | Services | Mixed | Unknown",
    "revenue_model": "string. Subscription | Usage-based | Licensing | Hardware sales | Services | R&D partnerships | Unknown"
  },
  "value_props": "array[string]. Customer-relevant benefits (not features).",
  "differentiators": "array[string]. Claimed advantages vs alternatives/competitors.",
  "proof_points": "array[string]. Evidence: named customers, deployments, trials, certifications, published metrics, etc.",
  "signals": {
    "mentions_customers": "boolean",
    "mentions_partners": "boolean",
    "mentions_pricing": "boolean",
    "mentions_case_studies": "boolean",
    "mentions_regulation_or_certification": "boolean"
  },
  "scores": {
    "positioning_clarity": "number 0..1. How quickly a neutral reader understands what it does + for whom.",
    "market_focus": "number 0..1. Specificity of target market/use case vs broad claims.",
    "commercial_readiness": "number 0..1. Presence of traction signals vs pure R&D.",
    "differentiation_strength": "number 0..1. Specificity and credibility of differentiation.",
    "technical_credibility": "number 0..1. Specific technical claims vs buzzwords."
  },
  "rationales": {
    "positioning_clarity": "string. 1-2 sentences.",
    "market_focus": "string. 1-2 sentences.",
    "commercial_readiness": "string. 1-2 sentences.",
    "differentiation_strength": "string. 1-2 sentences.",
    "technical_credibility": "string. 1-2 sentences."
  },
  "evidence_quotes": "array[string]. Up to 5 short quotes from the text that support the extraction."
}`

// BuildPrompt renders the fixed user prompt for one company.
func BuildPrompt(companyName, text string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Company: %s

TASK
You will be given raw website text (homepage + a few internal pages).
Extract product positioning variables into a JSON object that conforms to the schema below.

IMPORTANT RULES
- Output MUST be valid JSON (no markdown, no commentary).
- If information is missing, use empty strings, empty arrays, or 'Unknown' where applicable.
- Scores MUST be numbers from 0 to 1.
- Evidence quotes MUST be short snippets copied from the provided text (not invented).
- Prefer concrete language over buzzwords.

SCHEMA (v1)
%s

RAW WEBSITE TEXT
%s`, companyName, schemaV1, text))
}

// PromptSHA256 hashes the prompt template with the variable parts blanked, so
// the hash identifies the template rather than any one company.
func PromptSHA256() string {
	stub := BuildPrompt("", "")
	return SHA256(stub)
}

// SHA256 returns the hex SHA-256 of s.
func SHA256(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

var (
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe   = regexp.MustCompile(`[ \t]{3,}`)
)

// NormalizeInputText collapses excessive whitespace and truncates to
// maxChars, keeping some document structure for the model.
func NormalizeInputText(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	text = multiSpaceRe.ReplaceAllString(text, "  ")
	if maxChars > 0 && len(text) > maxChars {
		cut := maxChars
		// Back off to a rune boundary so the cut never splits a multi-byte
		// character into invalid UTF-8.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
