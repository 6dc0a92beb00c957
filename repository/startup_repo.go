package repository

import (
	"context"

	"github.com/tieubaoca/pitchdeck-be/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StartupRepo interface {
	CreateStartup(ctx context.Context, startup *types.Startup) error
	GetStartup(ctx context.Context, id uint) (*types.Startup, error)
	// ListStartups returns every startup with its decks preloaded.
	ListStartups(ctx context.Context) ([]*types.Startup, error)
}

type startupRepo struct {
	db *gorm.DB
}

func NewStartupRepo(db *gorm.DB) StartupRepo {
	return &startupRepo{
		db: db,
	}
}

func (r *startupRepo) CreateStartup(ctx context.Context, startup *types.Startup) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(startup).Error
}

func (r *startupRepo) GetStartup(ctx context.Context, id uint) (*types.Startup, error) {
	var startup types.Startup
	err := r.db.WithContext(ctx).
		Preload("Decks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&startup, id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &startup, nil
}

func (r *startupRepo) ListStartups(ctx context.Context) ([]*types.Startup, error) {
	var startups []*types.Startup
	err := r.db.WithContext(ctx).
		Preload("Decks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Order("id").
		Find(&startups).Error
	return startups, err
}
