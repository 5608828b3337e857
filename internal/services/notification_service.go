package services

import (
	"context"

	"campus-exchange/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationService struct {
	pool *pgxpool.Pool
}

func NewNotificationService(pool *pgxpool.Pool) *NotificationService {
	return &NotificationService{pool: pool}
}

func (s *NotificationService) List(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, type, payload, is_read, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Payload, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
