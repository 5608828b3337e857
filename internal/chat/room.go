package chat

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// RoomKey identifies one conversation: a listing and its two participants.
// The participant ids are stored ordered so both sides derive the same key.
type RoomKey struct {
	ListingID int
	UserLow   int
	UserHigh  int
}

func NewRoomKey(listingID, a, b int) RoomKey {
	if a > b {
		a, b = b, a
	}
	return RoomKey{ListingID: listingID, UserLow: a, UserHigh: b}
}

func (k RoomKey) String() string {
	return fmt.Sprintf("%d-%d-%d", k.ListingID, k.UserLow, k.UserHigh)
}

// Peer is one live connection as seen by the dispatcher. Send must be safe
// to call from any goroutine; Active reports whether the transport is still
// open for writes.
type Peer interface {
	Send(v any) error
	Active() bool
}

// Directory maps room keys to the connections currently in them. It is
// owned by the server process and handed to every connection handler;
// there is deliberately no package-level instance.
type Directory struct {
	mu sync.RWMutex
	// room -> connID -> peer
	rooms map[RoomKey]map[string]Peer
}

func NewDirectory() *Directory {
	return &Directory{rooms: make(map[RoomKey]map[string]Peer)}
}

// Join registers a connection under a room, creating the room on first use.
func (d *Directory) Join(room RoomKey, connID string, p Peer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.rooms[room]; !ok {
		d.rooms[room] = make(map[string]Peer)
	}
	d.rooms[room][connID] = p
}

// Leave removes a connection and prunes the room once it is empty.
// Leaving twice, or leaving a room never joined, is a no-op.
func (d *Directory) Leave(room RoomKey, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if conns, ok := d.rooms[room]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(d.rooms, room)
		}
	}
}

// Members returns a snapshot of the room's connections. The copy keeps
// broadcast iteration safe against concurrent joins and leaves.
func (d *Directory) Members(room RoomKey) []Peer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	conns := d.rooms[room]
	out := make([]Peer, 0, len(conns))
	for _, p := range conns {
		out = append(out, p)
	}
	return out
}

// Has reports whether the room currently exists in the directory.
func (d *Directory) Has(room RoomKey) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[room]
	return ok
}

// Broadcast sends a payload to every active connection in the room except
// excludeConnID (pass "" to include everyone). A failed send is logged and
// skipped; it never aborts delivery to the remaining connections.
func (d *Directory) Broadcast(room RoomKey, payload any, excludeConnID string) {
	d.mu.RLock()
	targets := make([]Peer, 0, len(d.rooms[room]))
	for id, p := range d.rooms[room] {
		if id == excludeConnID {
			continue
		}
		targets = append(targets, p)
	}
	d.mu.RUnlock()

	for _, p := range targets {
		if !p.Active() {
			continue
		}
		if err := p.Send(payload); err != nil {
			log.Error().Err(err).Str("room", room.String()).Msg("broadcast send failed")
		}
	}
}
