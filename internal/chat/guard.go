package chat

import (
	"context"
	"errors"
	"fmt"

	"campus-exchange/internal/models"
)

var (
	// ErrAuthRejected covers every pre-join authentication failure.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrAuthorizationDenied covers every pre-join eligibility failure:
	// unknown listing, a block in either direction, non-participant, self-chat.
	ErrAuthorizationDenied = errors.New("authorization denied")
)

// Authorize decides whether user may open the chat for listingID with peerID.
// All checks must pass: the listing exists, no block exists in either
// direction, and the user is the listing owner or the named peer but never
// chatting with themselves.
func Authorize(ctx context.Context, listings ListingStore, blocks BlockStore, listingID, userID, peerID int) error {
	listing, err := listings.FindListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: listing %d not found", ErrAuthorizationDenied, listingID)
		}
		return err
	}

	blocked, err := blocks.IsBlocked(ctx, userID, peerID)
	if err != nil {
		return err
	}
	if !blocked {
		blocked, err = blocks.IsBlocked(ctx, peerID, userID)
		if err != nil {
			return err
		}
	}
	if blocked {
		return fmt.Errorf("%w: conversation blocked", ErrAuthorizationDenied)
	}

	if (userID != listing.OwnerID && userID != peerID) || peerID == userID {
		return fmt.Errorf("%w: user %d is not a participant", ErrAuthorizationDenied, userID)
	}
	return nil
}
