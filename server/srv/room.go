package srv

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"lanewar/server/economy"
	"lanewar/server/sim"
	"lanewar/shared/game/types"
	"lanewar/shared/protocol"
)

// Room runs one solo match on its own goroutine. All access to the
// simulation happens on that goroutine; other goroutines submit work via Do.
type Room struct {
	id    string
	owner *client
	sim   *sim.Simulation
	hub   *Hub
	log   zerolog.Logger

	cmds      chan func()
	quit      chan struct{}
	closeOnce sync.Once
	isClosed  atomic.Bool
	finished  atomic.Bool

	ticker *time.Ticker
	active bool // ticking only after StartBattle
	paused bool
}

func NewRoom(id string, owner *client, s *sim.Simulation, h *Hub) *Room {
	return &Room{
		id:    id,
		owner: owner,
		sim:   s,
		hub:   h,
		log:   owner.log.With().Str("room", id).Logger(),
		cmds:  make(chan func(), 16),
		quit:  make(chan struct{}),
	}
}

func (r *Room) ID() string { return r.id }

// Finished reports whether the match reached an outcome.
func (r *Room) Finished() bool { return r.finished.Load() }

func (r *Room) closed() bool { return r.isClosed.Load() }

// Do runs fn on the room goroutine. It is a no-op once the room is closed.
func (r *Room) Do(fn func()) {
	select {
	case r.cmds <- fn:
	case <-r.quit:
	}
}

// Close stops the room goroutine.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		r.isClosed.Store(true)
		close(r.quit)
	})
}

func (r *Room) run(ctx context.Context) {
	r.ticker = time.NewTicker(r.sim.Interval())
	defer func() {
		r.ticker.Stop()
		r.Close()
		r.hub.removeRoom(r)
		if r.hub.metrics != nil {
			r.hub.metrics.RoomClosed(context.Background())
		}
		r.log.Debug().Int("tick", r.sim.Tick()).Msg("room closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.quit:
			return
		case fn := <-r.cmds:
			fn()
		case <-r.ticker.C:
			if r.active && !r.paused && !r.Finished() {
				r.step(ctx)
			}
		}
	}
}

// start sends Init, gold and a full snapshot, then enables ticking.
func (r *Room) start() {
	if r.active {
		return
	}
	c := r.owner
	c.sendWait("Init", r.sim.Init(c.id, r.id))
	c.sendWait("GoldUpdate", r.sim.GoldUpdate())
	c.sendWait("SpeedUpdate", r.sim.SpeedUpdate())
	c.sendWait("FullSnapshot", r.sim.FullSnapshot())
	r.active = true
	r.log.Info().Msg("battle started")
}

func (r *Room) spawn(a types.Archetype) {
	u, err := r.sim.Spawn(a)
	if err != nil {
		r.log.Debug().Err(err).Str("archetype", a.String()).Msg("spawn rejected")
		r.rejected(err)
		return
	}
	if m := r.hub.metrics; m != nil {
		m.Spawned(context.Background(), u.Side, a)
	}
	r.owner.sendWait("UnitSpawn", protocol.UnitSpawnEvent{
		UnitID: u.ID, Side: u.Side.String(), Archetype: u.Stats.Name, X: u.X,
	})
	r.owner.sendWait("GoldUpdate", r.sim.GoldUpdate())
}

func (r *Room) upgrade() {
	if err := r.sim.Upgrade(); err != nil {
		r.log.Debug().Err(err).Msg("upgrade rejected")
		r.rejected(err)
		return
	}
	r.owner.sendWait("GoldUpdate", r.sim.GoldUpdate())
}

func (r *Room) setSpeed(m float64) {
	if err := r.sim.SetSpeed(m); err != nil {
		r.rejected(err)
		return
	}
	r.ticker.Reset(r.sim.Interval())
	r.owner.sendWait("SpeedUpdate", r.sim.SpeedUpdate())
}

func (r *Room) setPaused(p bool) {
	r.paused = p
	r.log.Debug().Bool("paused", p).Msg("pause toggled")
}

func (r *Room) rejected(err error) {
	if m := r.hub.metrics; m != nil {
		m.Rejected(context.Background(), economy.Code(err))
	}
	r.owner.reject(err)
}

func (r *Room) step(ctx context.Context) {
	res := r.sim.Step()
	if m := r.hub.metrics; m != nil {
		m.Step(ctx, res)
	}

	c := r.owner
	sendJSON(c, "StateDelta", r.sim.Delta(res))
	for _, u := range res.Report.Removed {
		sendJSON(c, "UnitDeath", protocol.UnitDeathEvent{
			UnitID: u.ID, Side: u.Side.String(), Archetype: u.Stats.Name, X: u.X,
		})
	}
	if res.Accrued > 0 {
		sendJSON(c, "GoldUpdate", r.sim.GoldUpdate())
	}
	if res.Tick%r.hub.opts.SnapshotEvery == 0 {
		sendJSON(c, "FullSnapshot", r.sim.FullSnapshot())
	}

	if res.Outcome != sim.Running {
		r.finish(ctx, res)
	}
}

// finish records the result before announcing it.
func (r *Room) finish(ctx context.Context, res sim.StepResult) {
	r.finished.Store(true)
	r.log.Info().Str("winner", res.Outcome.String()).Int("tick", res.Tick).Msg("match over")

	if m := r.hub.metrics; m != nil {
		m.MatchFinished(ctx, res.Outcome)
	}
	rating, err := r.hub.applyMatchRating(ctx, r.owner, r.sim)
	if err != nil {
		r.log.Error().Err(err).Msg("recording match")
	}

	c := r.owner
	c.sendWait("FullSnapshot", r.sim.FullSnapshot())
	c.sendWait("GameOver", protocol.GameOver{
		Winner: res.Outcome.String(),
		Reason: "base destroyed",
		Ticks:  int64(res.Tick),
	})
	if err == nil {
		c.sendWait("RatingUpdate", rating)
		c.sendWait("Profile", r.hub.profile(c))
	}
}
