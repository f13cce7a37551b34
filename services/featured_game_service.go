package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/storage"
	"github.com/google/uuid"
)

const featuredGamesTable = "featured_games"

type FeaturedGameInput struct {
	Title            string `json:"title"`
	Category         string `json:"category"`
	TournamentsCount int    `json:"tournaments_count"`
	PlayersCount     string `json:"players_count"`
}

type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

type FeaturedGameService interface {
	CreateFeaturedGame(ctx context.Context, input FeaturedGameInput) (*models.FeaturedGame, error)
	ListFeaturedGames(ctx context.Context) ([]models.FeaturedGame, error)
	UpdateFeaturedGame(ctx context.Context, id string, input FeaturedGameInput) (*models.FeaturedGame, error)
	// MoveFeaturedGame меняет игру местами с соседом по sort_order.
	// На краю списка двигать некуда.
	MoveFeaturedGame(ctx context.Context, id string, direction MoveDirection) error
	UploadFeaturedGameImage(ctx context.Context, id string, contentType string, body io.Reader) (*models.FeaturedGame, error)
	DeleteFeaturedGame(ctx context.Context, id string) error
}

type featuredGameService struct {
	repo     repositories.FeaturedGameRepository
	uploader storage.FileUploader
	bus      *realtime.Bus
}

func NewFeaturedGameService(
	repo repositories.FeaturedGameRepository,
	uploader storage.FileUploader,
	bus *realtime.Bus,
) FeaturedGameService {
	return &featuredGameService{repo: repo, uploader: uploader, bus: bus}
}

func (s *featuredGameService) CreateFeaturedGame(ctx context.Context, input FeaturedGameInput) (*models.FeaturedGame, error) {
	if err := validateFeaturedGameInput(input); err != nil {
		return nil, err
	}

	// Новая игра встаёт в конец витрины.
	next, err := s.repo.NextSortOrder(ctx)
	if err != nil {
		return nil, err
	}

	game := &models.FeaturedGame{
		Title:            input.Title,
		Category:         input.Category,
		TournamentsCount: input.TournamentsCount,
		PlayersCount:     input.PlayersCount,
		SortOrder:        next,
	}
	if err := s.repo.Create(ctx, game); err != nil {
		return nil, err
	}

	s.publish(realtime.ActionInsert, game.ID)
	return game, nil
}

func (s *featuredGameService) ListFeaturedGames(ctx context.Context) ([]models.FeaturedGame, error) {
	games, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range games {
		populateFeaturedGameImageURL(&games[i], s.uploader)
	}
	return games, nil
}

func (s *featuredGameService) UpdateFeaturedGame(ctx context.Context, id string, input FeaturedGameInput) (*models.FeaturedGame, error) {
	if err := validateFeaturedGameInput(input); err != nil {
		return nil, err
	}

	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	game.Title = input.Title
	game.Category = input.Category
	game.TournamentsCount = input.TournamentsCount
	game.PlayersCount = input.PlayersCount
	if err := s.repo.Update(ctx, game); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.publish(realtime.ActionUpdate, id)
	populateFeaturedGameImageURL(game, s.uploader)
	return game, nil
}

func (s *featuredGameService) MoveFeaturedGame(ctx context.Context, id string, direction MoveDirection) error {
	if direction != MoveUp && direction != MoveDown {
		return fmt.Errorf("%w: unknown move direction %q", ErrValidationFailed, direction)
	}

	games, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range games {
		if games[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrFeaturedGameNotFound
	}

	neighbor := idx - 1
	if direction == MoveDown {
		neighbor = idx + 1
	}
	if neighbor < 0 || neighbor >= len(games) {
		return ErrFeaturedGameAtEdge
	}

	if err := s.repo.SwapOrder(ctx,
		games[idx].ID, games[idx].SortOrder,
		games[neighbor].ID, games[neighbor].SortOrder,
	); err != nil {
		return err
	}

	s.publish(realtime.ActionUpdate, id)
	return nil
}

func (s *featuredGameService) UploadFeaturedGameImage(ctx context.Context, id string, contentType string, body io.Reader) (*models.FeaturedGame, error) {
	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	ext, err := storage.ExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := game.ImageKey
	key := fmt.Sprintf("games/%s/%s%s", id, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload featured game image: %w", err)
	}

	game.ImageKey = &key
	if err := s.repo.Update(ctx, game); err != nil {
		return nil, s.mapRepoError(err)
	}
	if oldKey != nil && *oldKey != "" {
		// Старый файл больше нечем адресовать, подчищаем best effort.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	s.publish(realtime.ActionUpdate, id)
	populateFeaturedGameImageURL(game, s.uploader)
	return game, nil
}

func (s *featuredGameService) DeleteFeaturedGame(ctx context.Context, id string) error {
	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err)
	}
	if game.ImageKey != nil && *game.ImageKey != "" && s.uploader != nil {
		_ = s.uploader.Delete(ctx, *game.ImageKey)
	}

	s.publish(realtime.ActionDelete, id)
	return nil
}

func (s *featuredGameService) publish(action realtime.Action, id string) {
	s.bus.Publish(realtime.Event{
		Table:    featuredGamesTable,
		Action:   action,
		EntityID: id,
	})
}

func (s *featuredGameService) mapRepoError(err error) error {
	if errors.Is(err, repositories.ErrFeaturedGameNotFound) {
		return ErrFeaturedGameNotFound
	}
	return err
}

func validateFeaturedGameInput(input FeaturedGameInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: featured game title is required", ErrValidationFailed)
	}
	if input.Category == "" {
		return fmt.Errorf("%w: featured game category is required", ErrValidationFailed)
	}
	if input.TournamentsCount < 0 {
		return fmt.Errorf("%w: tournaments count cannot be negative", ErrValidationFailed)
	}
	return nil
}
