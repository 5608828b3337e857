package models

import "time"

// ChatMessage is a persisted chat row. Deletion is a soft flag: the
// content stays in the store, clients are told to hide it.
type ChatMessage struct {
	ID         int       `json:"id"`
	ListingID  int       `json:"listing_id"`
	SenderID   int       `json:"sender_id"`
	ReceiverID int       `json:"receiver_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Edited     bool      `json:"edited"`
	Deleted    bool      `json:"deleted"`
}

// ChatMessageOut is the wire form of a message. Timestamps go out as
// RFC 3339 text, not epoch numbers.
type ChatMessageOut struct {
	ID         int    `json:"id"`
	ListingID  int    `json:"listing_id"`
	SenderID   int    `json:"sender_id"`
	ReceiverID int    `json:"receiver_id"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	Edited     bool   `json:"edited"`
	Deleted    bool   `json:"deleted"`
}

func (m *ChatMessage) Out() ChatMessageOut {
	return ChatMessageOut{
		ID:         m.ID,
		ListingID:  m.ListingID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Timestamp:  m.Timestamp.Format(time.RFC3339),
		Edited:     m.Edited,
		Deleted:    m.Deleted,
	}
}

// ChatMessageEdit is the payload under the "edit_message" event key.
type ChatMessageEdit struct {
	MessageID  int    `json:"message_id"`
	NewContent string `json:"new_content"`
}
