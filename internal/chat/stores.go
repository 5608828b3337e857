package chat

import (
	"context"

	"campus-exchange/internal/models"
)

// The chat core talks to storage through these narrow contracts.
// Lookups return models.ErrNotFound when no row matches.

type MessageStore interface {
	// CreateMessage persists a new message and fills in its ID and Timestamp.
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	FindMessage(ctx context.Context, id int) (*models.ChatMessage, error)
	// UpdateMessage writes content, edited and deleted back by ID.
	UpdateMessage(ctx context.Context, msg *models.ChatMessage) error
}

type ListingStore interface {
	FindListing(ctx context.Context, id int) (*models.Listing, error)
}

type UserStore interface {
	FindUser(ctx context.Context, id int) (*models.User, error)
}

type BlockStore interface {
	// IsBlocked reports whether blockedBy has blocked userID.
	IsBlocked(ctx context.Context, userID, blockedBy int) (bool, error)
}
