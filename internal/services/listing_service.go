package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"campus-exchange/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ListingService struct {
	pool *pgxpool.Pool
}

func NewListingService(pool *pgxpool.Pool) *ListingService {
	return &ListingService{pool: pool}
}

const listingColumns = `id, title, description, category, price, images, status, owner_id, created_at, updated_at`

func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Category, &l.Price,
		&l.Images, &l.Status, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *ListingService) Create(ctx context.Context, l *models.Listing) error {
	query := `INSERT INTO listings (title, description, category, price, images, owner_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, status, created_at, updated_at`
	return s.pool.QueryRow(ctx, query, l.Title, l.Description, l.Category, l.Price, l.Images, l.OwnerID).
		Scan(&l.ID, &l.Status, &l.CreatedAt, &l.UpdatedAt)
}

// FindListing looks a listing up by id. Satisfies the chat core's ListingStore.
func (s *ListingService) FindListing(ctx context.Context, id int) (*models.Listing, error) {
	return scanListing(s.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id))
}

// Update applies the non-nil fields of upd and returns the updated listing.
func (s *ListingService) Update(ctx context.Context, id int, upd models.ListingUpdate) (*models.Listing, error) {
	l, err := s.FindListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		l.Title = *upd.Title
	}
	if upd.Description != nil {
		l.Description = *upd.Description
	}
	if upd.Category != nil {
		l.Category = *upd.Category
	}
	if upd.Price != nil {
		l.Price = *upd.Price
	}
	if upd.Status != nil {
		l.Status = *upd.Status
	}

	query := `UPDATE listings
	          SET title = $1, description = $2, category = $3, price = $4, status = $5, updated_at = now()
	          WHERE id = $6
	          RETURNING updated_at`
	if err := s.pool.QueryRow(ctx, query, l.Title, l.Description, l.Category, l.Price, l.Status, id).
		Scan(&l.UpdatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ListingService) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Search filters listings by title substring, category and price bounds.
func (s *ListingService) Search(ctx context.Context, f models.SearchFilter) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE 1=1`
	var args []any

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		query += ` AND title ILIKE $` + strconv.Itoa(len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		query += ` AND price >= $` + strconv.Itoa(len(args))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		query += ` AND price <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func collectListings(rows pgx.Rows) ([]models.Listing, error) {
	var out []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// AveragePrice returns the mean price of a category, or ok=false when the
// category has no listings.
func (s *ListingService) AveragePrice(ctx context.Context, category string) (float64, bool, error) {
	var avg *float64
	err := s.pool.QueryRow(ctx,
		`SELECT AVG(price) FROM listings WHERE category = $1`, category).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("average price: %w", err)
	}
	if avg == nil {
		return 0, false, nil
	}
	return *avg, true, nil
}

// SimilarTitles returns titles of listings whose title contains the given one.
func (s *ListingService) SimilarTitles(ctx context.Context, title string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT title FROM listings WHERE title ILIKE $1`, "%"+title+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// Recommend returns up to limit listings from the same category, excluding
// the current item.
func (s *ListingService) Recommend(ctx context.Context, category string, excludeID, limit int) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE category = $1 AND id <> $2 LIMIT $3`,
		category, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}
