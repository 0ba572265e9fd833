package metrics

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"lanewar/server/sim"
	"lanewar/shared/game/types"
	"lanewar/shared/protocol"
)

func TestNewWithGlobalProvider(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestRecordMatch(t *testing.T) {
	r, err := New(noop.NewMeterProvider())
	require.NoError(t, err)

	ctx := context.Background()
	s := sim.New(sim.DefaultConfig(), rand.New(rand.NewSource(1)), protocol.Sequence())
	r.RoomOpened(ctx)
	assert.NotPanics(t, func() {
		sim.Run(s, sim.Rush(), 400, func(res sim.StepResult) { r.Step(ctx, res) })
		r.Spawned(ctx, types.SidePlayer, types.ArchetypeRanged)
		r.Rejected(ctx, "INSUFFICIENT_FUNDS")
		r.MatchFinished(ctx, sim.EnemyWon)
	})
	r.RoomClosed(ctx)
}
