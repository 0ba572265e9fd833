// server/srv/hub.go
package srv

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lanewar/server/metrics"
	"lanewar/server/sim"
	"lanewar/server/store"
	"lanewar/shared/protocol"
)

// Options configures the rooms a hub opens.
type Options struct {
	Sim           sim.Config
	Seed          int64 // 0 seeds each room from the clock
	SnapshotEvery int   // ticks between FullSnapshot resyncs
	AIRating      int
}

type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	rooms   map[string]*Room

	opts    Options
	store   *store.Store
	metrics *metrics.Recorder
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub(opts Options, st *store.Store, rec *metrics.Recorder, log zerolog.Logger) *Hub {
	if opts.SnapshotEvery <= 0 {
		opts.SnapshotEvery = protocol.SnapshotEveryTicks
	}
	if opts.AIRating <= 0 {
		opts.AIRating = store.DefaultRating
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients: make(map[*client]struct{}),
		rooms:   make(map[string]*Room),
		opts:    opts,
		store:   st,
		metrics: rec,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run prunes closed rooms until ctx is done, then stops every room.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return
		case <-ticker.C:
			h.mu.Lock()
			for id, r := range h.rooms {
				if r.closed() {
					delete(h.rooms, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Shutdown stops all rooms and waits for their goroutines.
func (h *Hub) Shutdown() {
	h.cancel()
	h.wg.Wait()
}

func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.rooms {
		if !r.closed() {
			n++
		}
	}
	return n
}

func makeRoomID(prefix string) string {
	return prefix + "-" + strconv.FormatInt(time.Now().UnixNano()%1_000_000_000, 36) + strconv.Itoa(rand.Intn(1000))
}

func (h *Hub) seed() int64 {
	if h.opts.Seed != 0 {
		return h.opts.Seed
	}
	return time.Now().UnixNano()
}

// openRoom creates and starts a solo room owned by c.
func (h *Hub) openRoom(c *client) *Room {
	rng := rand.New(rand.NewSource(h.seed()))
	r := NewRoom(makeRoomID("solo"), c, sim.New(h.opts.Sim, rng, nil), h)

	h.mu.Lock()
	h.rooms[r.id] = r
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		r.run(h.ctx)
	}()
	if h.metrics != nil {
		h.metrics.RoomOpened(h.ctx)
	}
	return r
}

func (h *Hub) removeRoom(r *Room) {
	h.mu.Lock()
	delete(h.rooms, r.id)
	h.mu.Unlock()
}

// HandleWS serves an authenticated connection until it drops.
func (h *Hub) HandleWS(conn *websocket.Conn, user *store.User) {
	c := newClient(conn, user, h.log)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writer()
	c.sendWait("Profile", h.profile(c))
	c.reader(h)
}

func (h *Hub) dropClient(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	if r := c.currentRoom(); r != nil {
		r.Close()
		c.setRoom(nil)
	}
	c.close()
}

// profile reloads the user's rating record.
func (h *Hub) profile(c *client) protocol.Profile {
	u := c.user
	if h.store != nil {
		if fresh, err := h.store.UserByName(h.ctx, u.Username); err == nil {
			u = fresh
		}
	}
	return protocol.Profile{
		PlayerID: c.id,
		Name:     u.Username,
		Rating:   u.Rating,
		Rank:     rankName(u.Rating),
		Wins:     u.Wins,
		Losses:   u.Losses,
	}
}
