package services

import (
	"context"

	"campus-exchange/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoriteService struct {
	pool *pgxpool.Pool
}

func NewFavoriteService(pool *pgxpool.Pool) *FavoriteService {
	return &FavoriteService{pool: pool}
}

// Add favorites a listing for a user. Returns false when it was already
// favorited.
func (s *FavoriteService) Add(ctx context.Context, userID, listingID int) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO favorites (user_id, listing_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, listing_id) DO NOTHING`, userID, listingID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, listingID int) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2`, userID, listingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// List returns the user's favorited listings, newest favorite first.
func (s *FavoriteService) List(ctx context.Context, userID int) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT l.id, l.title, l.description, l.category, l.price, l.images,
		        l.status, l.owner_id, l.created_at, l.updated_at
		 FROM favorites f JOIN listings l ON l.id = f.listing_id
		 WHERE f.user_id = $1
		 ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}
