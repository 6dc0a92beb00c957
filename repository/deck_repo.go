package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tieubaoca/pitchdeck-be/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStageConflict means the deck was no longer at the stage the caller
	// read, so another writer advanced it first.
	ErrStageConflict = errors.New("deck stage changed concurrently")
)

type DeckRepo interface {
	CreateDeck(ctx context.Context, deck *types.Deck) error
	GetDeck(ctx context.Context, id uint) (*types.Deck, error)
	GetDeckWithResults(ctx context.Context, id uint) (*types.Deck, error)
	ListUnprocessed(ctx context.Context) ([]*types.Deck, error)
	// AdvanceStage writes deck.Stage, deck.Processed and the given columns,
	// only if the stored stage is still from.
	AdvanceStage(ctx context.Context, deck *types.Deck, from types.Stage, columns ...string) error
	RecordFailure(ctx context.Context, id uint, reason string) error

	CreateClaims(ctx context.Context, claims []*types.Claim) error
	ListClaims(ctx context.Context, deckID uint) ([]*types.Claim, error)
	ListUnassessedClaims(ctx context.Context, deckID uint) ([]*types.Claim, error)
	UpdateClaimAssessment(ctx context.Context, claim *types.Claim) error

	CreateQuestions(ctx context.Context, questions []*types.Question) error
	ListQuestions(ctx context.Context, deckID uint) ([]*types.Question, error)

	// Transaction runs fn against a repo bound to one database transaction.
	// Returning an error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(repo DeckRepo) error) error
}

type deckRepo struct {
	db *gorm.DB
}

func NewDeckRepo(db *gorm.DB) DeckRepo {
	return &deckRepo{
		db: db,
	}
}

func (r *deckRepo) CreateDeck(ctx context.Context, deck *types.Deck) error {
	if deck.Stage == "" {
		deck.Stage = types.StageNew
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(deck).Error
}

func (r *deckRepo) GetDeck(ctx context.Context, id uint) (*types.Deck, error) {
	var deck types.Deck
	if err := r.db.WithContext(ctx).First(&deck, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &deck, nil
}

func (r *deckRepo) GetDeckWithResults(ctx context.Context, id uint) (*types.Deck, error) {
	var deck types.Deck
	err := r.db.WithContext(ctx).
		Preload("Claims", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&deck, id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &deck, nil
}

func (r *deckRepo) ListUnprocessed(ctx context.Context) ([]*types.Deck, error) {
	var decks []*types.Deck
	err := r.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("id").
		Find(&decks).Error
	return decks, err
}

func (r *deckRepo) AdvanceStage(ctx context.Context, deck *types.Deck, from types.Stage, columns ...string) error {
	selected := append([]string{"stage", "processed"}, columns...)
	res := r.db.WithContext(ctx).
		Model(deck).
		Where("stage = ?", from).
		Select(selected).
		Omit(clause.Associations).
		Updates(deck)
	if res.Error != nil {
		return fmt.Errorf("failed to advance deck %d to %s: %w", deck.ID, deck.Stage, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deck %d is no longer at stage %s: %w", deck.ID, from, ErrStageConflict)
	}
	return nil
}

func (r *deckRepo) RecordFailure(ctx context.Context, id uint, reason string) error {
	return r.db.WithContext(ctx).
		Model(&types.Deck{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"failure_count": gorm.Expr("failure_count + ?", 1),
			"last_error":    reason,
		}).Error
}

func (r *deckRepo) CreateClaims(ctx context.Context, claims []*types.Claim) error {
	if len(claims) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(claims).Error
}

func (r *deckRepo) ListClaims(ctx context.Context, deckID uint) ([]*types.Claim, error) {
	var claims []*types.Claim
	err := r.db.WithContext(ctx).Where("deck_id = ?", deckID).Order("id").Find(&claims).Error
	return claims, err
}

func (r *deckRepo) ListUnassessedClaims(ctx context.Context, deckID uint) ([]*types.Claim, error) {
	var claims []*types.Claim
	err := r.db.WithContext(ctx).
		Where("deck_id = ? AND plausibility_score IS NULL", deckID).
		Order("id").
		Find(&claims).Error
	return claims, err
}

func (r *deckRepo) UpdateClaimAssessment(ctx context.Context, claim *types.Claim) error {
	return r.db.WithContext(ctx).
		Model(claim).
		Select("plausibility_score", "notes").
		Updates(claim).Error
}

func (r *deckRepo) CreateQuestions(ctx context.Context, questions []*types.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(questions).Error
}

func (r *deckRepo) ListQuestions(ctx context.Context, deckID uint) ([]*types.Question, error) {
	var questions []*types.Question
	err := r.db.WithContext(ctx).Where("deck_id = ?", deckID).Order("id").Find(&questions).Error
	return questions, err
}

func (r *deckRepo) Transaction(ctx context.Context, fn func(repo DeckRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&deckRepo{db: tx})
	})
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
