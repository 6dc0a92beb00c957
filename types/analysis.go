package types

import "strings"

type Category string

const (
	CategoryProduct    Category = "product"
	CategoryMarket     Category = "market"
	CategoryTeam       Category = "team"
	CategoryTraction   Category = "traction"
	CategoryFinancials Category = "financials"
	CategoryOther      Category = "other"
)

var Categories = []Category{
	CategoryProduct,
	CategoryMarket,
	CategoryTeam,
	CategoryTraction,
	CategoryFinancials,
	CategoryOther,
}

// ParseCategory maps free-form model output onto the category enum,
// falling back to CategoryOther.
func ParseCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// SummaryKeys are the keys the summarize prompt asks the model to fill.
var SummaryKeys = []string{"team", "product", "market", "traction", "financials", "ask", "risks"}

// Summary is the structured deck summary exactly as returned by the model.
type Summary map[string]any

// ClaimDraft is a claim returned by the extraction call, before it is stored.
type ClaimDraft struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// QuestionDraft is a question returned by the generation call, before it is stored.
type QuestionDraft struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

type Assessment struct {
	Score float64 `json:"score"`
	Notes string  `json:"notes"`
}

const (
	DefaultPlausibilityScore = 0.5
	DefaultAssessmentNotes   = "No assessment available."
)
