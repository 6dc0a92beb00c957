package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"

	"github.com/tieubaoca/pitchdeck-be/repository"
	"github.com/tieubaoca/pitchdeck-be/types"
)

type DeckService interface {
	// UploadDeck stores an uploaded PDF and creates an unprocessed deck for it.
	UploadDeck(ctx context.Context, startupID uint, file *multipart.FileHeader) (*types.Deck, error)
	// ImportDeck does the same for a file already on local disk.
	ImportDeck(ctx context.Context, startupID uint, sourcePath string) (*types.Deck, error)
	GetDeck(ctx context.Context, id uint) (*types.Deck, error)
	GetDeckDetail(ctx context.Context, id uint) (*types.DeckDetail, error)
}

type deckService struct {
	decks    repository.DeckRepo
	startups repository.StartupRepo
	files    *FileService
}

func NewDeckService(decks repository.DeckRepo, startups repository.StartupRepo, files *FileService) DeckService {
	return &deckService{
		decks:    decks,
		startups: startups,
		files:    files,
	}
}

func (s *deckService) UploadDeck(ctx context.Context, startupID uint, file *multipart.FileHeader) (*types.Deck, error) {
	if _, err := s.startups.GetStartup(ctx, startupID); err != nil {
		return nil, err
	}
	path, err := s.files.SaveUpload(file)
	if err != nil {
		return nil, err
	}
	return s.createDeck(ctx, startupID, path)
}

func (s *deckService) ImportDeck(ctx context.Context, startupID uint, sourcePath string) (*types.Deck, error) {
	if _, err := s.startups.GetStartup(ctx, startupID); err != nil {
		return nil, err
	}
	path, err := s.files.ImportFile(sourcePath)
	if err != nil {
		return nil, err
	}
	return s.createDeck(ctx, startupID, path)
}

func (s *deckService) createDeck(ctx context.Context, startupID uint, path string) (*types.Deck, error) {
	deck := &types.Deck{
		StartupID: startupID,
		FilePath:  path,
		Stage:     types.StageNew,
	}
	if err := s.decks.CreateDeck(ctx, deck); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}
	return deck, nil
}

func (s *deckService) GetDeck(ctx context.Context, id uint) (*types.Deck, error) {
	return s.decks.GetDeck(ctx, id)
}

func (s *deckService) GetDeckDetail(ctx context.Context, id uint) (*types.DeckDetail, error) {
	deck, err := s.decks.GetDeckWithResults(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &types.DeckDetail{
		ID:        deck.ID,
		StartupID: deck.StartupID,
		CreatedAt: deck.CreatedAt,
		Processed: deck.Processed,
		Stage:     deck.CurrentStage(),
		LastError: deck.LastError,
		Summary:   deck.Summary(),
		Claims:    deck.Claims,
		Questions: deck.Questions,
	}
	if detail.Claims == nil {
		detail.Claims = []types.Claim{}
	}
	if detail.Questions == nil {
		detail.Questions = []types.Question{}
	}
	return detail, nil
}
