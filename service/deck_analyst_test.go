package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pitchdeck-be/types"
	"go.uber.org/zap"
)

type mockAIService struct {
	mock.Mock
}

func (m *mockAIService) Provider() string { return "mock" }

func (m *mockAIService) StructuredResponse(ctx context.Context, prompt, systemPrompt string) (map[string]any, error) {
	args := m.Called(ctx, prompt, systemPrompt)
	data, _ := args.Get(0).(map[string]any)
	return data, args.Error(1)
}

func newTestAnalyst(ai AIService) *DeckAnalyst {
	return NewDeckAnalyst(ai, time.Second, 100, zap.NewNop())
}

func TestDeckAnalyst_SummarizeTruncatesInput(t *testing.T) {
	ai := &mockAIService{}
	long := strings.Repeat("é", 150)
	ai.On("StructuredResponse", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, strings.Repeat("é", 100)) && !strings.Contains(prompt, strings.Repeat("é", 101))
	}), DefaultSystemPrompt).Return(map[string]any{"team": "two founders"}, nil)

	summary := newTestAnalyst(ai).SummarizeDeck(context.Background(), long)
	assert.Equal(t, types.Summary{"team": "two founders"}, summary)
	ai.AssertExpectations(t)
}

func TestDeckAnalyst_ProviderErrorYieldsEmpty(t *testing.T) {
	ai := &mockAIService{}
	ai.On("StructuredResponse", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))
	analyst := newTestAnalyst(ai)
	ctx := context.Background()

	assert.Empty(t, analyst.SummarizeDeck(ctx, "text"))
	assert.Empty(t, analyst.ExtractClaims(ctx, types.Summary{}))
	assert.Empty(t, analyst.GenerateQuestions(ctx, nil, types.Summary{}))

	assessment := analyst.AssessClaim(ctx, "claim", types.Summary{})
	assert.Equal(t, types.DefaultPlausibilityScore, assessment.Score)
	assert.Equal(t, types.DefaultAssessmentNotes, assessment.Notes)
}

func TestDeckAnalyst_ExtractClaims(t *testing.T) {
	ai := &mockAIService{}
	ai.On("StructuredResponse", mock.Anything, mock.Anything, mock.Anything).Return(map[string]any{
		"claims": []any{
			map[string]any{"text": "90% waste reduction"},
			map[string]any{"text": "  Revenue doubled  ", "category": "Traction"},
			map[string]any{"text": "", "category": "team"},
			map[string]any{"category": "market"},
			"not an object",
			map[string]any{"text": "Ex-Google team", "category": "people"},
		},
	}, nil)

	claims := newTestAnalyst(ai).ExtractClaims(context.Background(), types.Summary{})
	assert.Equal(t, []types.ClaimDraft{
		{Text: "90% waste reduction", Category: types.CategoryOther},
		{Text: "Revenue doubled", Category: types.CategoryTraction},
		{Text: "Ex-Google team", Category: types.CategoryOther},
	}, claims)
}

func TestDeckAnalyst_ExtractClaimsWrongShape(t *testing.T) {
	ai := &mockAIService{}
	ai.On("StructuredResponse", mock.Anything, mock.Anything, mock.Anything).Return(map[string]any{"claims": "none"}, nil)

	assert.Empty(t, newTestAnalyst(ai).ExtractClaims(context.Background(), types.Summary{}))
}

func TestDeckAnalyst_AssessClaim(t *testing.T) {
	tests := []struct {
		name      string
		response  map[string]any
		wantScore float64
		wantNotes string
	}{
		{"valid", map[string]any{"score": 0.8, "notes": "Plausible."}, 0.8, "Plausible."},
		{"string score", map[string]any{"score": " 0.25 ", "notes": "Low."}, 0.25, "Low."},
		{"above range", map[string]any{"score": 7.0}, 1, types.DefaultAssessmentNotes},
		{"below range", map[string]any{"score": -2.0, "notes": "No."}, 0, "No."},
		{"garbage score", map[string]any{"score": "high", "notes": ""}, 0.5, types.DefaultAssessmentNotes},
		{"empty", map[string]any{}, 0.5, types.DefaultAssessmentNotes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &mockAIService{}
			ai.On("StructuredResponse", mock.Anything, mock.MatchedBy(func(prompt string) bool {
				return strings.Contains(prompt, "Claim: We are profitable")
			}), mock.Anything).Return(tt.response, nil)

			got := newTestAnalyst(ai).AssessClaim(context.Background(), "We are profitable", types.Summary{"financials": "ok"})
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantNotes, got.Notes)
		})
	}
}

func TestDeckAnalyst_GenerateQuestionsAcceptsEmptyInputs(t *testing.T) {
	ai := &mockAIService{}
	ai.On("StructuredResponse", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Summary:\n{}") && strings.Contains(prompt, "Claims:\n[]")
	}), mock.Anything).Return(map[string]any{
		"questions": []any{
			map[string]any{"text": "What is the churn?", "category": "traction"},
			map[string]any{"text": "How big is the market?"},
		},
	}, nil)

	questions := newTestAnalyst(ai).GenerateQuestions(context.Background(), nil, types.Summary{})
	require.Len(t, questions, 2)
	assert.Equal(t, types.CategoryTraction, questions[0].Category)
	assert.Equal(t, types.CategoryOther, questions[1].Category)
	ai.AssertExpectations(t)
}

func TestDeckAnalyst_CallsHaveDeadline(t *testing.T) {
	ai := &mockAIService{}
	ai.On("StructuredResponse", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything, mock.Anything).Return(map[string]any{}, nil)

	newTestAnalyst(ai).SummarizeDeck(context.Background(), "text")
	ai.AssertExpectations(t)
}

func TestDecodeJSONObject(t *testing.T) {
	got, err := decodeJSONObject("```json\n{\"team\": \"A\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"team": "A"}, got)

	_, err = decodeJSONObject("")
	assert.Error(t, err)
	_, err = decodeJSONObject("[1, 2]")
	assert.Error(t, err)
	_, err = decodeJSONObject("null")
	assert.Error(t, err)
}
