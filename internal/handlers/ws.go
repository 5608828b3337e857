package handlers

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"campus-exchange/internal/chat"
	"campus-exchange/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WSUpgradeMiddleware rejects non-websocket requests on the chat route.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// wsPeer adapts a websocket connection to the dispatcher's Peer contract.
// The write mutex is required: the underlying connection is not safe for
// concurrent writes, and every room member's goroutine may broadcast to us.
type wsPeer struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed atomic.Bool
}

func (p *wsPeer) Send(v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(v)
}

func (p *wsPeer) Active() bool {
	return !p.closed.Load()
}

// closePolicyViolation signals an authentication/authorization reject with
// close code 1008 before dropping the connection.
func closePolicyViolation(c *websocket.Conn, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), deadline)
	_ = c.Close()
}

// ChatSocketHandler serves /ws/chat/:listing_id/:peer_id. The connection
// walks CONNECTING -> AUTHORIZED -> ACTIVE -> CLOSED: identity first, then
// the eligibility guard, then the room join and the event loop. Any
// pre-join failure closes with 1008 and never touches the directory.
func ChatSocketHandler(
	dir *chat.Directory,
	users *services.UserService,
	listings *services.ListingService,
	messages *services.ChatService,
	jwtSecret []byte,
) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		ctx := context.Background()

		listingID, err := strconv.Atoi(c.Params("listing_id"))
		if err != nil {
			closePolicyViolation(c, "bad listing id")
			return
		}
		peerID, err := strconv.Atoi(c.Params("peer_id"))
		if err != nil {
			closePolicyViolation(c, "bad peer id")
			return
		}

		userID, err := chat.Authenticate(ctx, users, c.Headers("Authorization"), jwtSecret)
		if err != nil {
			log.Warn().Err(err).Msg("chat auth failed")
			closePolicyViolation(c, "authentication failed")
			return
		}

		if err := chat.Authorize(ctx, listings, users, listingID, userID, peerID); err != nil {
			log.Warn().Err(err).Int("user_id", userID).Int("listing_id", listingID).
				Msg("chat authorization denied")
			closePolicyViolation(c, "not allowed")
			return
		}

		room := chat.NewRoomKey(listingID, userID, peerID)
		connID := uuid.New().String()
		peer := &wsPeer{conn: c}

		logger := log.With().
			Str("room", room.String()).
			Int("user_id", userID).
			Str("conn_id", connID).
			Logger()

		dir.Join(room, connID, peer)
		logger.Info().Msg("user connected to chat room")

		session := &chat.Session{
			ConnID:    connID,
			UserID:    userID,
			PeerID:    peerID,
			ListingID: listingID,
			Room:      room,
			Peer:      peer,
			Directory: dir,
			Messages:  messages,
			Log:       logger,
		}

		clean := true
		for {
			msgType, raw, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure,
					websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Error().Err(err).Msg("websocket read failed")
					clean = false
				}
				break
			}
			if msgType != websocket.TextMessage {
				continue
			}
			session.HandleEvent(ctx, raw)
		}

		peer.closed.Store(true)
		dir.Leave(room, connID)
		logger.Info().Msg("user disconnected from chat room")
		if !clean {
			_ = c.Close()
		}
	})
}
