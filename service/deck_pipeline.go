package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tieubaoca/pitchdeck-be/repository"
	"github.com/tieubaoca/pitchdeck-be/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analyst is the set of analysis calls the pipeline needs. Implementations
// must not fail; empty or default values stand in for broken answers.
type Analyst interface {
	SummarizeDeck(ctx context.Context, rawText string) types.Summary
	ExtractClaims(ctx context.Context, summary types.Summary) []types.ClaimDraft
	AssessClaim(ctx context.Context, claimText string, summary types.Summary) types.Assessment
	GenerateQuestions(ctx context.Context, claims []types.ClaimDraft, summary types.Summary) []types.QuestionDraft
}

// ProgressNotifier receives one event per committed stage and per failed run.
type ProgressNotifier interface {
	Publish(event types.DeckEvent)
}

type Outcome string

const (
	OutcomeCompleted        Outcome = "completed"
	OutcomeSkipped          Outcome = "skipped"
	OutcomeExtractionFailed Outcome = "extraction_failed"
	OutcomeFailed           Outcome = "failed"
)

var errEmptyExtraction = errors.New("no text could be extracted")

type pipelineStep struct {
	from types.Stage
	name string
	run  func(ctx context.Context, deck *types.Deck) (*types.Deck, error)
}

// DeckPipeline advances one deck through every outstanding stage. Each stage
// commits its data together with the new stage value, so a failed run resumes
// at the stage that failed.
type DeckPipeline struct {
	repo              repository.DeckRepo
	extractor         TextExtractor
	analyst           Analyst
	notifier          ProgressNotifier
	assessConcurrency int
	logger            *zap.Logger
	steps             []pipelineStep
}

func NewDeckPipeline(
	repo repository.DeckRepo,
	extractor TextExtractor,
	analyst Analyst,
	assessConcurrency int,
	logger *zap.Logger,
) *DeckPipeline {
	if assessConcurrency < 1 {
		assessConcurrency = 1
	}
	p := &DeckPipeline{
		repo:              repo,
		extractor:         extractor,
		analyst:           analyst,
		assessConcurrency: assessConcurrency,
		logger:            logger,
	}
	p.steps = []pipelineStep{
		{from: types.StageNew, name: "extract", run: p.extract},
		{from: types.StageTextExtracted, name: "summarize", run: p.summarize},
		{from: types.StageSummarized, name: "extract_claims", run: p.extractClaims},
		{from: types.StageClaimsExtracted, name: "assess_claims", run: p.assessClaims},
		{from: types.StageClaimsAssessed, name: "generate_questions", run: p.generateQuestions},
		{from: types.StageQuestionsGenerated, name: "finalize", run: p.finalize},
	}
	return p
}

// WithNotifier sets where stage events go. A nil notifier disables events.
func (p *DeckPipeline) WithNotifier(notifier ProgressNotifier) *DeckPipeline {
	p.notifier = notifier
	return p
}

// Process never panics and never returns an error. Failures are logged and
// recorded on the deck, which stays eligible for the next tick.
func (p *DeckPipeline) Process(ctx context.Context, deck *types.Deck) (outcome Outcome) {
	log := p.logger.With(zap.Uint("deck_id", deck.ID))
	if deck.Processed {
		return OutcomeSkipped
	}

	current := deck
	defer func() {
		if r := recover(); r != nil {
			log.Error("deck pipeline panicked", zap.Any("panic", r), zap.Stack("stack"))
			p.fail(ctx, log, current, fmt.Sprintf("panic: %v", r))
			outcome = OutcomeFailed
		}
	}()

	// A stored stage the pipeline does not know is repaired to its inferred value.
	if !current.Stage.Valid() {
		inferred := current.CurrentStage()
		log.Warn("unknown deck stage, inferring from stored fields",
			zap.String("stored", string(current.Stage)),
			zap.String("inferred", string(inferred)))
		repaired := *current
		repaired.Stage = inferred
		if err := p.repo.AdvanceStage(ctx, &repaired, current.Stage); err != nil {
			p.fail(ctx, log, current, err.Error())
			return OutcomeFailed
		}
		current = &repaired
	}

	for _, step := range p.steps {
		if current.CurrentStage() != step.from {
			continue
		}
		if err := ctx.Err(); err != nil {
			log.Info("deck pipeline interrupted", zap.String("stage", string(step.from)), zap.Error(err))
			return OutcomeFailed
		}

		started := time.Now()
		next, err := step.run(ctx, current)
		if errors.Is(err, errEmptyExtraction) {
			log.Warn("could not extract text for deck", zap.String("file", current.FilePath))
			p.fail(ctx, log, current, err.Error())
			return OutcomeExtractionFailed
		}
		if errors.Is(err, repository.ErrStageConflict) {
			// Someone else moved the deck on; their run owns it now.
			log.Warn("deck changed underneath the pipeline", zap.String("step", step.name), zap.Error(err))
			return OutcomeSkipped
		}
		if err != nil {
			log.Error("deck stage failed", zap.String("step", step.name), zap.Error(err))
			p.fail(ctx, log, current, fmt.Sprintf("%s: %v", step.name, err))
			return OutcomeFailed
		}

		current = next
		log.Info("deck stage committed",
			zap.String("step", step.name),
			zap.String("stage", string(current.Stage)),
			zap.Duration("took", time.Since(started)))
		p.publish(types.DeckEvent{
			Type:      types.TypeWebsocketStage,
			DeckID:    current.ID,
			Stage:     current.Stage,
			Processed: current.Processed,
		})
	}

	if current.CurrentStage() != types.StageComplete {
		p.fail(ctx, log, current, fmt.Sprintf("pipeline stopped at stage %s", current.Stage))
		return OutcomeFailed
	}
	log.Info("finished processing deck")
	return OutcomeCompleted
}

func (p *DeckPipeline) fail(ctx context.Context, log *zap.Logger, deck *types.Deck, reason string) {
	// The run context may already be cancelled; the failure is still recorded.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.repo.RecordFailure(recordCtx, deck.ID, reason); err != nil {
		log.Error("failed to record deck failure", zap.Error(err))
	}
	p.publish(types.DeckEvent{
		Type:      types.TypeWebsocketError,
		DeckID:    deck.ID,
		Stage:     deck.CurrentStage(),
		Processed: deck.Processed,
		Message:   reason,
	})
}

func (p *DeckPipeline) publish(event types.DeckEvent) {
	if p.notifier == nil {
		return
	}
	event.At = time.Now()
	p.notifier.Publish(event)
}

// advanced returns a copy of deck moved to stage, leaving the caller's value
// untouched if the write is rolled back.
func advanced(deck *types.Deck, stage types.Stage) *types.Deck {
	next := *deck
	next.Stage = stage
	next.Processed = stage == types.StageComplete
	return &next
}

func (p *DeckPipeline) extract(ctx context.Context, deck *types.Deck) (*types.Deck, error) {
	next := advanced(deck, types.StageTextExtracted)
	if deck.RawText != nil && strings.TrimSpace(*deck.RawText) != "" {
		if err := p.repo.AdvanceStage(ctx, next, deck.Stage); err != nil {
			return nil, err
		}
		return next, nil
	}

	text := strings.TrimSpace(p.extractor.ExtractText(ctx, deck.FilePath))
	if text == "" {
		return nil, errEmptyExtraction
	}
	next.RawText = &text
	if err := p.repo.AdvanceStage(ctx, next, deck.Stage, "raw_text"); err != nil {
		return nil, err
	}

	fresh, err := p.repo.GetDeck(ctx, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload deck: %w", err)
	}
	return fresh, nil
}

func (p *DeckPipeline) summarize(ctx context.Context, deck *types.Deck) (*types.Deck, error) {
	if deck.RawText == nil || strings.TrimSpace(*deck.RawText) == "" {
		return nil, errors.New("deck has no raw text to summarize")
	}
	summary := p.analyst.SummarizeDeck(ctx, *deck.RawText)
	if summary == nil {
		summary = types.Summary{}
	}
	encoded, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}

	next := advanced(deck, types.StageSummarized)
	summaryJSON := string(encoded)
	next.SummaryJSON = &summaryJSON
	if err := p.repo.AdvanceStage(ctx, next, deck.Stage, "summary_json"); err != nil {
		return nil, err
	}
	return next, nil
}

func (p *DeckPipeline) extractClaims(ctx context.Context, deck *types.Deck) (*types.Deck, error) {
	drafts := p.analyst.ExtractClaims(ctx, deck.Summary())

	claims := make([]*types.Claim, 0, len(drafts))
	for _, draft := range drafts {
		claims = append(claims, &types.Claim{
			DeckID:   deck.ID,
			Text:     draft.Text,
			Category: types.ParseCategory(string(draft.Category)),
		})
	}

	next := advanced(deck, types.StageClaimsExtracted)
	err := p.repo.Transaction(ctx, func(tx repository.DeckRepo) error {
		if err := tx.CreateClaims(ctx, claims); err != nil {
			return fmt.Errorf("failed to create claims: %w", err)
		}
		return tx.AdvanceStage(ctx, next, deck.Stage)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (p *DeckPipeline) assessClaims(ctx context.Context, deck *types.Deck) (*types.Deck, error) {
	claims, err := p.repo.ListUnassessedClaims(ctx, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	summary := deck.Summary()

	assessments := make([]types.Assessment, len(claims))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.assessConcurrency)
	for i, claim := range claims {
		g.Go(func() error {
			assessments[i] = p.analyst.AssessClaim(gctx, claim.Text, summary)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("claim assessment interrupted: %w", err)
	}

	next := advanced(deck, types.StageClaimsAssessed)
	err = p.repo.Transaction(ctx, func(tx repository.DeckRepo) error {
		for i, claim := range claims {
			score, notes := assessments[i].Score, assessments[i].Notes
			claim.PlausibilityScore = &score
			claim.Notes = &notes
			if err := tx.UpdateClaimAssessment(ctx, claim); err != nil {
				return fmt.Errorf("failed to update claim %d: %w", claim.ID, err)
			}
		}
		return tx.AdvanceStage(ctx, next, deck.Stage)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (p *DeckPipeline) generateQuestions(ctx context.Context, deck *types.Deck) (*types.Deck, error) {
	claims, err := p.repo.ListClaims(ctx, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	drafts := make([]types.ClaimDraft, 0, len(claims))
	for _, claim := range claims {
		drafts = append(drafts, types.ClaimDraft{Text: claim.Text, Category: claim.Category})
	}

	generated := p.analyst.GenerateQuestions(ctx, drafts, deck.Summary())
	questions := make([]*types.Question, 0, len(generated))
	for _, q := range generated {
		questions = append(questions, &types.Question{
			DeckID:   deck.ID,
			Text:     q.Text,
			Category: types.ParseCategory(string(q.Category)),
		})
	}

	next := advanced(deck, types.StageQuestionsGenerated)
	err = p.repo.Transaction(ctx, func(tx repository.DeckRepo) error {
		if err := tx.CreateQuestions(ctx, questions); err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return tx.AdvanceStage(ctx, next, deck.Stage)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (p *DeckPipeline) finalize(ctx context.Context, deck *types.Deck) (*types.Deck, error) {
	next := advanced(deck, types.StageComplete)
	next.LastError = nil
	if err := p.repo.AdvanceStage(ctx, next, deck.Stage, "last_error"); err != nil {
		return nil, err
	}
	return next, nil
}
