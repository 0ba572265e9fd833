package srv

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lanewar/server/economy"
	"lanewar/server/store"
	"lanewar/shared/game/types"
	"lanewar/shared/protocol"
)

const (
	writeWait    = 10 * time.Second
	replyWait    = time.Second
	maxMsgSize   = 4096
	sendBuffered = 256
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	id   int64
	user *store.User
	log  zerolog.Logger

	mu   sync.Mutex
	room *Room
}

func newClient(conn *websocket.Conn, user *store.User, log zerolog.Logger) *client {
	id := protocol.NewID()
	return &client{
		conn: conn,
		send: make(chan []byte, sendBuffered),
		done: make(chan struct{}),
		id:   id,
		user: user,
		log:  log.With().Str("user", user.Username).Int64("player", id).Logger(),
	}
}

func (c *client) currentRoom() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *client) setRoom(r *Room) {
	c.mu.Lock()
	c.room = r
	c.mu.Unlock()
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *client) reader(h *Hub) {
	defer func() {
		h.dropClient(c)
		c.conn.Close()
		c.log.Debug().Msg("disconnected")
	}()
	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var env protocol.MsgEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.sendWait("Error", protocol.ErrorMsg{Code: "BAD_MESSAGE", Message: "invalid envelope"})
			continue
		}
		c.log.Trace().Str("type", env.Type).Msg("ws msg")

		switch env.Type {

		// ---------- Lobby ----------
		case "GetProfile":
			c.sendWait("Profile", h.profile(c))

		case "GetLeaderboard":
			lb, err := h.leaderboard(h.ctx)
			if err != nil {
				c.sendWait("Error", protocol.ErrorMsg{Code: "INTERNAL", Message: "leaderboard unavailable"})
				continue
			}
			c.sendWait("Leaderboard", lb)

		case "CreateRoom":
			if r := c.currentRoom(); r != nil {
				if !r.Finished() {
					c.sendWait("Error", protocol.ErrorMsg{Code: "ROOM_EXISTS", Message: "already in a room"})
					continue
				}
				r.Close()
			}
			r := h.openRoom(c)
			c.setRoom(r)
			c.sendWait("RoomCreated", protocol.RoomCreated{RoomID: r.id})

		case "LeaveRoom":
			if r := c.currentRoom(); r != nil {
				r.Close()
				c.setRoom(nil)
			}

		case "Logout":
			return

		// ---------- Battle ----------
		case "StartBattle", "SpawnUnit", "UpgradeGold", "SetSpeed", "PauseGame", "ResumeGame":
			r := c.currentRoom()
			if r == nil {
				c.sendWait("Error", protocol.ErrorMsg{Code: "NO_ROOM", Message: "create a room first"})
				continue
			}
			c.battleCommand(r, env)

		default:
			c.sendWait("Error", protocol.ErrorMsg{Code: "UNKNOWN_TYPE", Message: "Unknown message type: " + env.Type})
		}
	}
}

func (c *client) battleCommand(r *Room, env protocol.MsgEnvelope) {
	switch env.Type {
	case "StartBattle":
		r.Do(r.start)
	case "SpawnUnit":
		var msg protocol.SpawnUnit
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			c.sendWait("Error", protocol.ErrorMsg{Code: "BAD_MESSAGE", Message: "invalid SpawnUnit"})
			return
		}
		a, err := types.ParseArchetype(strings.TrimSpace(msg.Archetype))
		if err != nil {
			c.sendWait("Error", protocol.ErrorMsg{Code: "UNKNOWN_ARCHETYPE", Message: err.Error()})
			return
		}
		r.Do(func() { r.spawn(a) })
	case "UpgradeGold":
		r.Do(r.upgrade)
	case "SetSpeed":
		var msg protocol.SetSpeed
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			c.sendWait("Error", protocol.ErrorMsg{Code: "BAD_MESSAGE", Message: "invalid SetSpeed"})
			return
		}
		r.Do(func() { r.setSpeed(msg.Multiplier) })
	case "PauseGame":
		r.Do(func() { r.setPaused(true) })
	case "ResumeGame":
		r.Do(func() { r.setPaused(false) })
	}
}

func (c *client) writer() {
	defer c.conn.Close()
	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func encode(typ string, v interface{}) []byte {
	b, _ := json.Marshal(v)
	out, _ := json.Marshal(protocol.MsgEnvelope{Type: typ, Data: b})
	return out
}

// sendJSON queues a message, dropping it when the client is slow. Used for
// per-tick state that the next snapshot supersedes.
func sendJSON(c *client, typ string, v interface{}) {
	select {
	case c.send <- encode(typ, v):
	default:
	}
}

// sendWait queues a message that must not be dropped, waiting briefly for
// buffer space.
func (c *client) sendWait(typ string, v interface{}) {
	t := time.NewTimer(replyWait)
	defer t.Stop()
	select {
	case c.send <- encode(typ, v):
	case <-c.done:
	case <-t.C:
		c.log.Warn().Str("type", typ).Msg("send buffer full, dropping reply")
	}
}

// reject reports a refused command with its machine-readable code.
func (c *client) reject(err error) {
	c.sendWait("Error", protocol.ErrorMsg{Code: economy.Code(err), Message: err.Error()})
}
