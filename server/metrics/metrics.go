// Package metrics exposes match counters through the OpenTelemetry meter API.
// Without a configured provider the instruments are no-ops.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"lanewar/server/sim"
	"lanewar/shared/game/types"
)

const instrumentationName = "lanewar/server/metrics"

type Recorder struct {
	ticks      metric.Int64Counter
	spawned    metric.Int64Counter
	kills      metric.Int64Counter
	baseDamage metric.Int64Counter
	rejected   metric.Int64Counter
	matches    metric.Int64Counter
	rooms      metric.Int64UpDownCounter
}

// New creates the instruments on mp, or on the global provider when mp is nil.
func New(mp metric.MeterProvider) (*Recorder, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m := mp.Meter(instrumentationName)

	var (
		r   Recorder
		err error
	)
	if r.ticks, err = m.Int64Counter("lanewar.sim.ticks",
		metric.WithDescription("Simulation ticks executed")); err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}
	if r.spawned, err = m.Int64Counter("lanewar.units.spawned",
		metric.WithDescription("Units entering the lane")); err != nil {
		return nil, fmt.Errorf("creating spawned counter: %w", err)
	}
	if r.kills, err = m.Int64Counter("lanewar.units.killed",
		metric.WithDescription("Units removed after reaching zero health")); err != nil {
		return nil, fmt.Errorf("creating kills counter: %w", err)
	}
	if r.baseDamage, err = m.Int64Counter("lanewar.base.damage",
		metric.WithDescription("Damage dealt to bases")); err != nil {
		return nil, fmt.Errorf("creating base damage counter: %w", err)
	}
	if r.rejected, err = m.Int64Counter("lanewar.commands.rejected",
		metric.WithDescription("Player commands rejected by the simulation")); err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}
	if r.matches, err = m.Int64Counter("lanewar.matches.finished",
		metric.WithDescription("Matches that reached an outcome")); err != nil {
		return nil, fmt.Errorf("creating matches counter: %w", err)
	}
	if r.rooms, err = m.Int64UpDownCounter("lanewar.rooms.active",
		metric.WithDescription("Rooms currently open")); err != nil {
		return nil, fmt.Errorf("creating rooms counter: %w", err)
	}
	return &r, nil
}

func sideAttr(s types.Side) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("side", s.String()))
}

// Step records one tick of a match.
func (r *Recorder) Step(ctx context.Context, res sim.StepResult) {
	r.ticks.Add(ctx, 1)
	for _, side := range []types.Side{types.SidePlayer, types.SideEnemy} {
		if n := res.Report.Kills(side); n > 0 {
			r.kills.Add(ctx, int64(n), sideAttr(side))
		}
		if d := res.Report.BaseDamage[side]; d > 0 {
			r.baseDamage.Add(ctx, int64(d), sideAttr(side))
		}
	}
	if u := res.EnemySpawned; u != nil {
		r.Spawned(ctx, u.Side, u.Archetype())
	}
}

func (r *Recorder) Spawned(ctx context.Context, side types.Side, a types.Archetype) {
	r.spawned.Add(ctx, 1, metric.WithAttributes(
		attribute.String("side", side.String()),
		attribute.String("archetype", a.String()),
	))
}

func (r *Recorder) Rejected(ctx context.Context, code string) {
	r.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

func (r *Recorder) MatchFinished(ctx context.Context, o sim.Outcome) {
	r.matches.Add(ctx, 1, metric.WithAttributes(attribute.String("winner", o.String())))
}

func (r *Recorder) RoomOpened(ctx context.Context) { r.rooms.Add(ctx, 1) }
func (r *Recorder) RoomClosed(ctx context.Context) { r.rooms.Add(ctx, -1) }
