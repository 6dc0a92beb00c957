package service

import (
	"context"
	"errors"
	"strings"

	"github.com/tieubaoca/pitchdeck-be/repository"
	"github.com/tieubaoca/pitchdeck-be/types"
)

var ErrInvalidStartup = errors.New("startup name is required")

type StartupService interface {
	CreateStartup(ctx context.Context, req types.CreateStartupRequest) (*types.Startup, error)
	ListStartups(ctx context.Context) ([]types.StartupListItem, error)
	GetStartup(ctx context.Context, id uint) (*types.StartupDetail, error)
}

type startupService struct {
	repo repository.StartupRepo
}

func NewStartupService(repo repository.StartupRepo) StartupService {
	return &startupService{
		repo: repo,
	}
}

func (s *startupService) CreateStartup(ctx context.Context, req types.CreateStartupRequest) (*types.Startup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidStartup
	}
	startup := &types.Startup{
		Name:        name,
		Website:     nonEmpty(req.Website),
		Description: nonEmpty(req.Description),
	}
	if err := s.repo.CreateStartup(ctx, startup); err != nil {
		return nil, err
	}
	return startup, nil
}

func (s *startupService) ListStartups(ctx context.Context) ([]types.StartupListItem, error) {
	startups, err := s.repo.ListStartups(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]types.StartupListItem, 0, len(startups))
	for _, startup := range startups {
		item := types.StartupListItem{
			ID:            startup.ID,
			Name:          startup.Name,
			Website:       startup.Website,
			Description:   startup.Description,
			CreatedAt:     startup.CreatedAt,
			NumberOfDecks: len(startup.Decks),
		}
		if n := len(startup.Decks); n > 0 {
			latest := startup.Decks[n-1].ID
			item.LatestDeckID = &latest
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *startupService) GetStartup(ctx context.Context, id uint) (*types.StartupDetail, error) {
	startup, err := s.repo.GetStartup(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &types.StartupDetail{
		ID:          startup.ID,
		Name:        startup.Name,
		Website:     startup.Website,
		Description: startup.Description,
		Decks:       make([]types.DeckListItem, 0, len(startup.Decks)),
	}
	for _, deck := range startup.Decks {
		detail.Decks = append(detail.Decks, types.DeckListItem{
			ID:        deck.ID,
			CreatedAt: deck.CreatedAt,
			Processed: deck.Processed,
			Stage:     deck.CurrentStage(),
		})
	}
	return detail, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
