package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/pitchdeck-be/types"
	"go.uber.org/zap"
)

// DeckLister returns the decks that still need work.
type DeckLister interface {
	ListUnprocessed(ctx context.Context) ([]*types.Deck, error)
}

type Processor interface {
	Process(ctx context.Context, deck *types.Deck) Outcome
}

type TickReport struct {
	TickID           string        `json:"tick_id"`
	Seen             int           `json:"seen"`
	Completed        int           `json:"completed"`
	Failed           int           `json:"failed"`
	ExtractionFailed int           `json:"extraction_failed"`
	SkippedDecks     int           `json:"skipped_decks"`
	Skipped          bool          `json:"skipped"` // another tick was still running
	Duration         time.Duration `json:"duration"`
}

// Scheduler polls for unprocessed decks on a fixed interval and runs each one
// through the processor, one deck at a time.
type Scheduler struct {
	decks      DeckLister
	processor  Processor
	interval   time.Duration
	runOnStart bool
	logger     *zap.Logger
	running    atomic.Bool
}

func NewScheduler(decks DeckLister, processor Processor, interval time.Duration, runOnStart bool, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		decks:      decks,
		processor:  processor,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("deck scheduler started", zap.Duration("interval", s.interval))
	if s.runOnStart {
		s.Tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("deck scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick processes every unprocessed deck once. It returns a skipped report
// without touching any deck if another tick is still in progress.
func (s *Scheduler) Tick(ctx context.Context) (report TickReport) {
	report.TickID = uuid.NewString()
	log := s.logger.With(zap.String("tick_id", report.TickID))

	if !s.running.CompareAndSwap(false, true) {
		log.Warn("previous tick still running, skipping")
		report.Skipped = true
		return report
	}
	defer s.running.Store(false)

	started := time.Now()
	defer func() {
		report.Duration = time.Since(started)
	}()

	decks, err := s.decks.ListUnprocessed(ctx)
	if err != nil {
		log.Error("failed to list unprocessed decks", zap.Error(err))
		return report
	}
	report.Seen = len(decks)
	if len(decks) > 0 {
		log.Info("processing decks", zap.Int("count", len(decks)))
	}

	for _, deck := range decks {
		if ctx.Err() != nil {
			log.Info("tick cancelled", zap.Error(ctx.Err()))
			break
		}
		switch s.processOne(ctx, log, deck) {
		case OutcomeCompleted:
			report.Completed++
		case OutcomeExtractionFailed:
			report.ExtractionFailed++
		case OutcomeSkipped:
			report.SkippedDecks++
		default:
			report.Failed++
		}
	}

	log.Info("tick finished",
		zap.Int("seen", report.Seen),
		zap.Int("completed", report.Completed),
		zap.Int("failed", report.Failed),
		zap.Int("extraction_failed", report.ExtractionFailed),
		zap.Duration("took", time.Since(started)))
	return report
}

func (s *Scheduler) processOne(ctx context.Context, log *zap.Logger, deck *types.Deck) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("error processing deck",
				zap.Uint("deck_id", deck.ID),
				zap.String("panic", fmt.Sprint(r)))
			outcome = OutcomeFailed
		}
	}()
	return s.processor.Process(ctx, deck)
}
