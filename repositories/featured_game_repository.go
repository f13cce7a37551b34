package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/google/uuid"
)

var ErrFeaturedGameNotFound = errors.New("featured game not found")

type FeaturedGameRepository interface {
	Create(ctx context.Context, game *models.FeaturedGame) error
	GetByID(ctx context.Context, id string) (*models.FeaturedGame, error)
	List(ctx context.Context) ([]models.FeaturedGame, error)
	Update(ctx context.Context, game *models.FeaturedGame) error
	// SwapOrder меняет местами sort_order двух игр в одной транзакции.
	SwapOrder(ctx context.Context, firstID string, firstOrder int, secondID string, secondOrder int) error
	NextSortOrder(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

type postgresFeaturedGameRepository struct {
	db *sql.DB
}

func NewPostgresFeaturedGameRepository(db *sql.DB) FeaturedGameRepository {
	return &postgresFeaturedGameRepository{db: db}
}

func (r *postgresFeaturedGameRepository) Create(ctx context.Context, game *models.FeaturedGame) error {
	game.ID = uuid.NewString()
	query := `
		INSERT INTO featured_games (
			id, title, category, image_key, tournaments_count, players_count, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		game.ID, game.Title, game.Category, game.ImageKey,
		game.TournamentsCount, game.PlayersCount, game.SortOrder,
	).Scan(&game.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create featured game: %w", err)
	}
	return nil
}

func (r *postgresFeaturedGameRepository) GetByID(ctx context.Context, id string) (*models.FeaturedGame, error) {
	query := `
		SELECT id, title, category, image_key, tournaments_count, players_count,
		       sort_order, created_at
		FROM featured_games WHERE id = $1`

	game := &models.FeaturedGame{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&game.ID, &game.Title, &game.Category, &game.ImageKey,
		&game.TournamentsCount, &game.PlayersCount, &game.SortOrder, &game.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFeaturedGameNotFound
		}
		return nil, fmt.Errorf("failed to get featured game: %w", err)
	}
	return game, nil
}

func (r *postgresFeaturedGameRepository) List(ctx context.Context) ([]models.FeaturedGame, error) {
	query := `
		SELECT id, title, category, image_key, tournaments_count, players_count,
		       sort_order, created_at
		FROM featured_games ORDER BY sort_order ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured games: %w", err)
	}
	defer rows.Close()

	games := make([]models.FeaturedGame, 0)
	for rows.Next() {
		var game models.FeaturedGame
		if scanErr := rows.Scan(
			&game.ID, &game.Title, &game.Category, &game.ImageKey,
			&game.TournamentsCount, &game.PlayersCount, &game.SortOrder, &game.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan featured game row: %w", scanErr)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (r *postgresFeaturedGameRepository) Update(ctx context.Context, game *models.FeaturedGame) error {
	query := `
		UPDATE featured_games SET
			title = $1, category = $2, image_key = $3, tournaments_count = $4,
			players_count = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		game.Title, game.Category, game.ImageKey, game.TournamentsCount,
		game.PlayersCount, game.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update featured game: %w", err)
	}
	return checkAffectedRows(result, ErrFeaturedGameNotFound)
}

func (r *postgresFeaturedGameRepository) SwapOrder(ctx context.Context, firstID string, firstOrder int, secondID string, secondOrder int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin swap transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE featured_games SET sort_order = $1 WHERE id = $2`, secondOrder, firstID); err != nil {
		return fmt.Errorf("failed to update sort order: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE featured_games SET sort_order = $1 WHERE id = $2`, firstOrder, secondID); err != nil {
		return fmt.Errorf("failed to update sort order: %w", err)
	}
	return tx.Commit()
}

func (r *postgresFeaturedGameRepository) NextSortOrder(ctx context.Context) (int, error) {
	var next int
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM featured_games`).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to get next sort order: %w", err)
	}
	return next, nil
}

func (r *postgresFeaturedGameRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM featured_games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete featured game: %w", err)
	}
	return checkAffectedRows(result, ErrFeaturedGameNotFound)
}
