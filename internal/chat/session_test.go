package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"campus-exchange/internal/models"

	"github.com/rs/zerolog"
)

type memoryMessageStore struct {
	mu     sync.Mutex
	nextID int
	msgs   map[int]models.ChatMessage
}

func newMemoryMessageStore() *memoryMessageStore {
	return &memoryMessageStore{nextID: 1, msgs: make(map[int]models.ChatMessage)}
}

func (s *memoryMessageStore) CreateMessage(_ context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = s.nextID
	s.nextID++
	msg.Timestamp = time.Now().UTC()
	s.msgs[msg.ID] = *msg
	return nil
}

func (s *memoryMessageStore) FindMessage(_ context.Context, id int) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.msgs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &msg, nil
}

func (s *memoryMessageStore) UpdateMessage(_ context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.msgs[msg.ID]; !ok {
		return models.ErrNotFound
	}
	s.msgs[msg.ID] = *msg
	return nil
}

func (s *memoryMessageStore) stored(id int) (models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.msgs[id]
	return msg, ok
}

func (s *memoryMessageStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// twoUserRoom wires sessions for user A (listing owner) and user B into one
// room over a shared directory and store, mirroring a live deployment with
// both sockets connected.
type twoUserRoom struct {
	dir      *Directory
	store    *memoryMessageStore
	sessionA *Session
	sessionB *Session
	peerA    *recordingPeer
	peerB    *recordingPeer
}

func newTwoUserRoom(t *testing.T) *twoUserRoom {
	t.Helper()
	const (
		listingID = 7
		userA     = 1
		userB     = 2
	)
	dir := NewDirectory()
	store := newMemoryMessageStore()
	room := NewRoomKey(listingID, userA, userB)
	peerA := newRecordingPeer()
	peerB := newRecordingPeer()
	dir.Join(room, "conn-a", peerA)
	dir.Join(room, "conn-b", peerB)

	mk := func(connID string, userID, peerID int, peer Peer) *Session {
		return &Session{
			ConnID:    connID,
			UserID:    userID,
			PeerID:    peerID,
			ListingID: listingID,
			Room:      room,
			Peer:      peer,
			Directory: dir,
			Messages:  store,
			Log:       zerolog.Nop(),
		}
	}
	return &twoUserRoom{
		dir:      dir,
		store:    store,
		sessionA: mk("conn-a", userA, userB, peerA),
		sessionB: mk("conn-b", userB, userA, peerB),
		peerA:    peerA,
		peerB:    peerB,
	}
}

func TestContentBroadcastToWholeRoom(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)

	r.sessionA.HandleEvent(context.Background(), []byte(`{"content":"hi"}`))

	for name, peer := range map[string]*recordingPeer{"A": r.peerA, "B": r.peerB} {
		got := peer.payloads()
		if len(got) != 1 {
			t.Fatalf("peer %s got %d payloads, want 1", name, len(got))
		}
		out, ok := got[0].(models.ChatMessageOut)
		if !ok {
			t.Fatalf("peer %s payload type %T", name, got[0])
		}
		if out.Content != "hi" || out.SenderID != 1 || out.ReceiverID != 2 || out.Edited || out.Deleted {
			t.Errorf("peer %s payload = %+v", name, out)
		}
		if _, err := time.Parse(time.RFC3339, out.Timestamp); err != nil {
			t.Errorf("timestamp %q is not RFC 3339: %v", out.Timestamp, err)
		}
	}

	if r.store.count() != 1 {
		t.Errorf("store has %d messages, want 1", r.store.count())
	}
}

func TestWhitespaceContentDropped(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)

	r.sessionA.HandleEvent(context.Background(), []byte(`{"content":"   \n\t "}`))

	if r.store.count() != 0 {
		t.Error("whitespace-only content must not be persisted")
	}
	if len(r.peerA.payloads()) != 0 || len(r.peerB.payloads()) != 0 {
		t.Error("whitespace-only content must not be broadcast")
	}
}

func TestContentIsHTMLEscaped(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)

	r.sessionA.HandleEvent(context.Background(), []byte(`{"content":"<script>alert(1)</script>"}`))

	msg, ok := r.store.stored(1)
	if !ok {
		t.Fatal("message not stored")
	}
	if strings.Contains(msg.Content, "<script>") {
		t.Errorf("stored content %q still contains markup", msg.Content)
	}
	if !strings.Contains(msg.Content, "&lt;script&gt;") {
		t.Errorf("stored content %q is not escaped", msg.Content)
	}
}

func TestTypingExcludesSender(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)

	r.sessionB.HandleEvent(context.Background(), []byte(`{"typing":true}`))

	if got := r.peerB.payloads(); len(got) != 0 {
		t.Errorf("sender received its own typing echo: %v", got)
	}
	got := r.peerA.payloads()
	if len(got) != 1 {
		t.Fatalf("peer A got %d payloads, want 1", len(got))
	}
	payload, ok := got[0].(map[string]any)
	if !ok {
		t.Fatalf("payload type %T", got[0])
	}
	if payload["typing"] != true || payload["user"] != 2 {
		t.Errorf("payload = %v", payload)
	}
}

func TestTypingFalseIsInvalidPayload(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)

	r.sessionA.HandleEvent(context.Background(), []byte(`{"typing":false}`))

	if got := r.peerB.payloads(); len(got) != 0 {
		t.Errorf("peer B got %v, want nothing", got)
	}
	assertErrorReply(t, r.peerA, "Invalid payload.")
}

func TestDeliveryReceiptExcludesSender(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)

	r.sessionA.HandleEvent(context.Background(), []byte(`{"delivery_receipt":42}`))

	if got := r.peerA.payloads(); len(got) != 0 {
		t.Errorf("sender received its own receipt echo: %v", got)
	}
	got := r.peerB.payloads()
	if len(got) != 1 {
		t.Fatalf("peer B got %d payloads, want 1", len(got))
	}
	payload := got[0].(map[string]any)
	if payload["delivery_receipt"] != 42 || payload["user"] != 1 {
		t.Errorf("payload = %v", payload)
	}
}

func TestEditByAuthor(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)
	ctx := context.Background()

	r.sessionA.HandleEvent(ctx, []byte(`{"content":"hello"}`))
	r.peerA.got = nil
	r.peerB.got = nil

	r.sessionA.HandleEvent(ctx, []byte(`{"edit_message":{"message_id":1,"new_content":"bye"}}`))

	msg, _ := r.store.stored(1)
	if msg.Content != "bye (edited)" {
		t.Errorf("stored content = %q, want %q", msg.Content, "bye (edited)")
	}
	if !msg.Edited {
		t.Error("edited flag not set")
	}

	for name, peer := range map[string]*recordingPeer{"A": r.peerA, "B": r.peerB} {
		got := peer.payloads()
		if len(got) != 1 {
			t.Fatalf("peer %s got %d payloads, want 1", name, len(got))
		}
		payload, ok := got[0].(map[string]any)
		if !ok {
			t.Fatalf("peer %s payload type %T", name, got[0])
		}
		out, ok := payload["edit_message"].(models.ChatMessageOut)
		if !ok {
			t.Fatalf("peer %s edit payload type %T", name, payload["edit_message"])
		}
		if !strings.HasSuffix(out.Content, "(edited)") || !out.Edited {
			t.Errorf("peer %s edit payload = %+v", name, out)
		}
	}
}

func TestEditByNonAuthorRejected(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)
	ctx := context.Background()

	r.sessionA.HandleEvent(ctx, []byte(`{"content":"hello"}`))
	before, _ := r.store.stored(1)
	r.peerA.got = nil
	r.peerB.got = nil

	r.sessionB.HandleEvent(ctx, []byte(`{"edit_message":{"message_id":1,"new_content":"hacked"}}`))

	after, _ := r.store.stored(1)
	if after.Content != before.Content || after.Edited {
		t.Errorf("message mutated by non-author: %+v", after)
	}
	if got := r.peerA.payloads(); len(got) != 0 {
		t.Errorf("peer A received %v, want nothing", got)
	}
	assertErrorReply(t, r.peerB, "Edit not allowed or message not found.")
}

func TestEditMissingMessageRejected(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)

	r.sessionA.HandleEvent(context.Background(), []byte(`{"edit_message":{"message_id":99,"new_content":"x"}}`))

	assertErrorReply(t, r.peerA, "Edit not allowed or message not found.")
	if got := r.peerB.payloads(); len(got) != 0 {
		t.Errorf("peer B received %v, want nothing", got)
	}
}

func TestEditEmptyContentIgnored(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)
	ctx := context.Background()

	r.sessionA.HandleEvent(ctx, []byte(`{"content":"hello"}`))
	r.peerA.got = nil
	r.peerB.got = nil

	r.sessionA.HandleEvent(ctx, []byte(`{"edit_message":{"message_id":1,"new_content":"   "}}`))

	msg, _ := r.store.stored(1)
	if msg.Edited || msg.Content != "hello" {
		t.Errorf("message changed by empty edit: %+v", msg)
	}
	if len(r.peerA.payloads()) != 0 || len(r.peerB.payloads()) != 0 {
		t.Error("empty edit must produce no traffic")
	}
}

func TestDeleteByAuthorIsSoftAndIdempotent(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)
	ctx := context.Background()

	r.sessionA.HandleEvent(ctx, []byte(`{"content":"hello"}`))
	r.peerA.got = nil
	r.peerB.got = nil

	r.sessionA.HandleEvent(ctx, []byte(`{"delete_message":1}`))

	msg, _ := r.store.stored(1)
	if !msg.Deleted {
		t.Error("deleted flag not set")
	}
	if msg.Content != "hello" {
		t.Errorf("soft delete must retain content, got %q", msg.Content)
	}
	for name, peer := range map[string]*recordingPeer{"A": r.peerA, "B": r.peerB} {
		got := peer.payloads()
		if len(got) != 1 {
			t.Fatalf("peer %s got %d payloads, want 1", name, len(got))
		}
		payload := got[0].(map[string]any)
		if payload["delete_message"] != 1 {
			t.Errorf("peer %s payload = %v", name, payload)
		}
	}

	// Deleting again still succeeds; the flag just stays set.
	r.sessionA.HandleEvent(ctx, []byte(`{"delete_message":1}`))
	msg, _ = r.store.stored(1)
	if !msg.Deleted {
		t.Error("deleted flag flipped back")
	}
	if got := r.peerA.payloads(); len(got) != 2 {
		t.Errorf("second delete got %d payloads for A, want 2", len(got))
	}
}

func TestDeleteByNonAuthorRejected(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)
	ctx := context.Background()

	r.sessionA.HandleEvent(ctx, []byte(`{"content":"hello"}`))
	r.peerA.got = nil
	r.peerB.got = nil

	r.sessionB.HandleEvent(ctx, []byte(`{"delete_message":1}`))

	msg, _ := r.store.stored(1)
	if msg.Deleted {
		t.Error("message deleted by non-author")
	}
	assertErrorReply(t, r.peerB, "Delete not allowed or message not found.")
	if got := r.peerA.payloads(); len(got) != 0 {
		t.Errorf("peer A received %v, want nothing", got)
	}
}

func TestUnrecognizedEventIsInvalidPayload(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)

	r.sessionA.HandleEvent(context.Background(), []byte(`{"bogus":"event"}`))

	assertErrorReply(t, r.peerA, "Invalid payload.")
	if got := r.peerB.payloads(); len(got) != 0 {
		t.Errorf("peer B received %v, want nothing", got)
	}
}

func TestMalformedFrameIsInvalidPayload(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)

	r.sessionA.HandleEvent(context.Background(), []byte(`{not json`))

	assertErrorReply(t, r.peerA, "Invalid payload.")
}

// Racing edits of the same message from two devices of the same author
// resolve by store write order: last write wins, nothing stronger.
func TestConcurrentEditsLastWriteWins(t *testing.T) {
	t.Parallel()
	r := newTwoUserRoom(t)
	ctx := context.Background()

	r.sessionA.HandleEvent(ctx, []byte(`{"content":"hello"}`))

	// A second device of user A in the same room.
	deviceTwo := &Session{
		ConnID:    "conn-a2",
		UserID:    r.sessionA.UserID,
		PeerID:    r.sessionA.PeerID,
		ListingID: r.sessionA.ListingID,
		Room:      r.sessionA.Room,
		Peer:      newRecordingPeer(),
		Directory: r.dir,
		Messages:  r.store,
		Log:       r.sessionA.Log,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.sessionA.HandleEvent(ctx, []byte(`{"edit_message":{"message_id":1,"new_content":"first"}}`))
	}()
	go func() {
		defer wg.Done()
		deviceTwo.HandleEvent(ctx, []byte(`{"edit_message":{"message_id":1,"new_content":"second"}}`))
	}()
	wg.Wait()

	msg, _ := r.store.stored(1)
	if !msg.Edited {
		t.Error("edited flag not set")
	}
	if msg.Content != "first (edited)" && msg.Content != "second (edited)" {
		t.Errorf("content = %q, want one complete edit to win", msg.Content)
	}
}

func assertErrorReply(t *testing.T, peer *recordingPeer, want string) {
	t.Helper()
	got := peer.payloads()
	if len(got) != 1 {
		t.Fatalf("got %d payloads, want exactly one error reply", len(got))
	}
	payload, ok := got[0].(map[string]any)
	if !ok {
		t.Fatalf("payload type %T", got[0])
	}
	if payload["error"] != want {
		t.Errorf("error = %v, want %q", payload["error"], want)
	}
}
