package chat

import (
	"context"
	"encoding/json"
	"errors"

	"campus-exchange/internal/models"
	"campus-exchange/internal/utils"

	"github.com/rs/zerolog"
)

// editedMarker is appended to message content on every successful edit.
const editedMarker = " (edited)"

const (
	errInvalidPayload = "Invalid payload."
	errEditDenied     = "Edit not allowed or message not found."
	errDeleteDenied   = "Delete not allowed or message not found."
)

// Session is the per-connection state after authentication and
// authorization have passed. One goroutine drives it: the read loop feeds
// each inbound frame into HandleEvent until the transport closes.
type Session struct {
	ConnID    string
	UserID    int
	PeerID    int
	ListingID int
	Room      RoomKey
	Peer      Peer
	Directory *Directory
	Messages  MessageStore
	Log       zerolog.Logger
}

// inboundEvent holds every recognized frame shape; exactly one field is
// expected to be set.
type inboundEvent struct {
	Typing          *bool                   `json:"typing"`
	DeliveryReceipt *int                    `json:"delivery_receipt"`
	EditMessage     *models.ChatMessageEdit `json:"edit_message"`
	DeleteMessage   *int                    `json:"delete_message"`
	Content         *string                 `json:"content"`
}

// HandleEvent dispatches one inbound frame. Malformed or unrecognized
// frames get an error reply to the sender only; the session stays open.
func (s *Session) HandleEvent(ctx context.Context, raw []byte) {
	var ev inboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		s.replyError(errInvalidPayload)
		return
	}

	switch {
	case ev.Typing != nil && *ev.Typing:
		s.Directory.Broadcast(s.Room, map[string]any{"typing": true, "user": s.UserID}, s.ConnID)
	case ev.DeliveryReceipt != nil:
		s.Directory.Broadcast(s.Room, map[string]any{"delivery_receipt": *ev.DeliveryReceipt, "user": s.UserID}, s.ConnID)
	case ev.EditMessage != nil:
		s.handleEdit(ctx, ev.EditMessage)
	case ev.DeleteMessage != nil:
		s.handleDelete(ctx, *ev.DeleteMessage)
	case ev.Content != nil:
		s.handleContent(ctx, *ev.Content)
	default:
		s.replyError(errInvalidPayload)
	}
}

// handleContent persists a new message and echoes it to the whole room,
// sender included, as the delivery confirmation. Whitespace-only content
// is dropped without a reply.
func (s *Session) handleContent(ctx context.Context, text string) {
	content := utils.SanitizeText(text)
	if content == "" {
		return
	}

	msg := &models.ChatMessage{
		ListingID:  s.ListingID,
		SenderID:   s.UserID,
		ReceiverID: s.PeerID,
		Content:    content,
	}
	if err := s.Messages.CreateMessage(ctx, msg); err != nil {
		s.Log.Error().Err(err).Msg("create message")
		return
	}

	s.Directory.Broadcast(s.Room, msg.Out(), "")
}

// handleEdit overwrites a message's content, author-checked. Concurrent
// edits of the same message are last-write-wins: the store write order
// decides, nothing stronger.
func (s *Session) handleEdit(ctx context.Context, edit *models.ChatMessageEdit) {
	msg, err := s.Messages.FindMessage(ctx, edit.MessageID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.Log.Error().Err(err).Int("message_id", edit.MessageID).Msg("find message")
		}
		s.replyError(errEditDenied)
		return
	}
	if msg.SenderID != s.UserID {
		s.replyError(errEditDenied)
		return
	}

	newText := utils.SanitizeText(edit.NewContent)
	if newText == "" {
		return
	}

	msg.Content = newText + editedMarker
	msg.Edited = true
	if err := s.Messages.UpdateMessage(ctx, msg); err != nil {
		s.Log.Error().Err(err).Int("message_id", msg.ID).Msg("update message")
		return
	}

	s.Directory.Broadcast(s.Room, map[string]any{"edit_message": msg.Out()}, "")
}

// handleDelete soft-deletes a message, author-checked. Content stays in
// the store; clients are told to treat the message as removed. Deleting an
// already-deleted message succeeds again, the flag just stays set.
func (s *Session) handleDelete(ctx context.Context, messageID int) {
	msg, err := s.Messages.FindMessage(ctx, messageID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.Log.Error().Err(err).Int("message_id", messageID).Msg("find message")
		}
		s.replyError(errDeleteDenied)
		return
	}
	if msg.SenderID != s.UserID {
		s.replyError(errDeleteDenied)
		return
	}

	msg.Deleted = true
	if err := s.Messages.UpdateMessage(ctx, msg); err != nil {
		s.Log.Error().Err(err).Int("message_id", msg.ID).Msg("update message")
		return
	}

	s.Directory.Broadcast(s.Room, map[string]any{"delete_message": messageID}, "")
}

func (s *Session) replyError(text string) {
	if err := s.Peer.Send(map[string]any{"error": text}); err != nil {
		s.Log.Error().Err(err).Msg("error reply send failed")
	}
}
