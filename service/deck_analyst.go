package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tieubaoca/pitchdeck-be/types"
	"go.uber.org/zap"
)

const (
	summarizePrompt = `You are a venture capital analyst. Summarize the following pitch deck content into a structured JSON object with these keys:
- team
- product
- market
- traction
- financials
- ask
- risks

Content:
%s`

	extractClaimsPrompt = `Based on the following summary of a pitch deck, extract important factual claims.
Return a JSON object with a key "claims" which is a list of objects.
Each object must have:
- "text": The claim text
- "category": One of "traction", "market", "team", "product", "financials", "other"

Summary:
%s`

	assessClaimPrompt = `Assess the plausibility of the following claim based on the context provided in the summary.

Claim: %s

Context:
%s

Return a JSON object with:
- "score": A float between 0.0 and 1.0 (1.0 being very plausible/verified, 0.0 being implausible)
- "notes": A 1-3 sentence explanation.`

	generateQuestionsPrompt = `Generate 8 to 12 specific follow-up questions an investor should ask based on the summary and claims.
Distribute questions across categories: market, product, traction, financials, team, other.

Return a JSON object with a key "questions" which is a list of objects.
Each object must have:
- "text": The question text
- "category": The category

Summary:
%s

Claims:
%s`
)

// DeckAnalyst runs the analysis calls of the pipeline. None of its methods
// fail: a provider error or malformed answer yields an empty or default value.
type DeckAnalyst struct {
	ai            AIService
	timeout       time.Duration
	maxInputChars int
	logger        *zap.Logger
}

func NewDeckAnalyst(ai AIService, timeout time.Duration, maxInputChars int, logger *zap.Logger) *DeckAnalyst {
	return &DeckAnalyst{
		ai:            ai,
		timeout:       timeout,
		maxInputChars: maxInputChars,
		logger:        logger,
	}
}

// ask returns an empty mapping on any failure.
func (a *DeckAnalyst) ask(ctx context.Context, call, prompt string) map[string]any {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	data, err := a.ai.StructuredResponse(ctx, prompt, DefaultSystemPrompt)
	if err != nil {
		a.logger.Warn("analysis call failed",
			zap.String("call", call),
			zap.String("provider", a.ai.Provider()),
			zap.Error(err))
		return map[string]any{}
	}
	return data
}

func (a *DeckAnalyst) SummarizeDeck(ctx context.Context, rawText string) types.Summary {
	return types.Summary(a.ask(ctx, "summarize", fmt.Sprintf(summarizePrompt, truncateRunes(rawText, a.maxInputChars))))
}

func (a *DeckAnalyst) ExtractClaims(ctx context.Context, summary types.Summary) []types.ClaimDraft {
	data := a.ask(ctx, "extract_claims", fmt.Sprintf(extractClaimsPrompt, mustJSON(summary)))

	var claims []types.ClaimDraft
	for _, item := range objectList(data["claims"]) {
		text := stringValue(item["text"])
		if text == "" {
			continue
		}
		claims = append(claims, types.ClaimDraft{
			Text:     text,
			Category: types.ParseCategory(stringValue(item["category"])),
		})
	}
	return claims
}

func (a *DeckAnalyst) AssessClaim(ctx context.Context, claimText string, summary types.Summary) types.Assessment {
	data := a.ask(ctx, "assess_claim", fmt.Sprintf(assessClaimPrompt, claimText, mustJSON(summary)))

	assessment := types.Assessment{
		Score: types.DefaultPlausibilityScore,
		Notes: types.DefaultAssessmentNotes,
	}
	if score, ok := floatValue(data["score"]); ok {
		assessment.Score = math.Min(1, math.Max(0, score))
	}
	if notes := stringValue(data["notes"]); notes != "" {
		assessment.Notes = notes
	}
	return assessment
}

func (a *DeckAnalyst) GenerateQuestions(ctx context.Context, claims []types.ClaimDraft, summary types.Summary) []types.QuestionDraft {
	if claims == nil {
		claims = []types.ClaimDraft{}
	}
	data := a.ask(ctx, "generate_questions", fmt.Sprintf(generateQuestionsPrompt, mustJSON(summary), mustJSON(claims)))

	var questions []types.QuestionDraft
	for _, item := range objectList(data["questions"]) {
		text := stringValue(item["text"])
		if text == "" {
			continue
		}
		questions = append(questions, types.QuestionDraft{
			Text:     text,
			Category: types.ParseCategory(stringValue(item["category"])),
		})
	}
	return questions
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// objectList keeps the JSON objects of a decoded list and drops anything else.
func objectList(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func stringValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
