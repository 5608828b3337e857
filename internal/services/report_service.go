package services

import (
	"context"
	"errors"
	"time"

	"campus-exchange/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportService struct {
	pool *pgxpool.Pool
}

func NewReportService(pool *pgxpool.Pool) *ReportService {
	return &ReportService{pool: pool}
}

func (s *ReportService) Create(ctx context.Context, r *models.Report) error {
	query := `INSERT INTO reports (reporter_id, reported_listing_id, reported_user_id, reason)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, status, created_at`
	return s.pool.QueryRow(ctx, query, r.ReporterID, r.ReportedListingID, r.ReportedUserID, r.Reason).
		Scan(&r.ID, &r.Status, &r.CreatedAt)
}

func (s *ReportService) List(ctx context.Context, skip, limit int) ([]models.Report, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, reporter_id, reported_listing_id, reported_user_id, reason,
		        status, audit_log, created_at, reviewed_at
		 FROM reports ORDER BY created_at DESC OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.ReporterID, &r.ReportedListingID, &r.ReportedUserID,
			&r.Reason, &r.Status, &r.AuditLog, &r.CreatedAt, &r.ReviewedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Review records an admin decision on a report.
func (s *ReportService) Review(ctx context.Context, id int, status string, auditLog *string) (*models.Report, error) {
	now := time.Now().UTC()
	var r models.Report
	query := `UPDATE reports SET status = $1, audit_log = $2, reviewed_at = $3 WHERE id = $4
	          RETURNING id, reporter_id, reported_listing_id, reported_user_id, reason,
	                    status, audit_log, created_at, reviewed_at`
	err := s.pool.QueryRow(ctx, query, status, auditLog, now, id).
		Scan(&r.ID, &r.ReporterID, &r.ReportedListingID, &r.ReportedUserID,
			&r.Reason, &r.Status, &r.AuditLog, &r.CreatedAt, &r.ReviewedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
