package services

import (
	"context"
	"errors"

	"campus-exchange/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatService is the persistence adapter behind the chat session loop:
// create, find by id, and write mutations back. Messages are never
// hard-deleted here.
type ChatService struct {
	pool *pgxpool.Pool
}

func NewChatService(pool *pgxpool.Pool) *ChatService {
	return &ChatService{pool: pool}
}

func (s *ChatService) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	query := `INSERT INTO chat_messages (listing_id, sender_id, receiver_id, content)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, timestamp, edited, deleted`
	return s.pool.QueryRow(ctx, query, msg.ListingID, msg.SenderID, msg.ReceiverID, msg.Content).
		Scan(&msg.ID, &msg.Timestamp, &msg.Edited, &msg.Deleted)
}

func (s *ChatService) FindMessage(ctx context.Context, id int) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	query := `SELECT id, listing_id, sender_id, receiver_id, content, timestamp, edited, deleted
	          FROM chat_messages WHERE id = $1`
	err := s.pool.QueryRow(ctx, query, id).
		Scan(&msg.ID, &msg.ListingID, &msg.SenderID, &msg.ReceiverID,
			&msg.Content, &msg.Timestamp, &msg.Edited, &msg.Deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateMessage writes content and the edited/deleted flags back by id.
// Racing updates of the same row are last-write-wins.
func (s *ChatService) UpdateMessage(ctx context.Context, msg *models.ChatMessage) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE chat_messages SET content = $1, edited = $2, deleted = $3 WHERE id = $4`,
		msg.Content, msg.Edited, msg.Deleted, msg.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
