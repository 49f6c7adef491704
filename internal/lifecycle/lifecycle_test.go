package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestRun_ReleasesInReverseOrder(t *testing.T) {
	lc := New(zaptest.NewLogger(t))

	var order []string
	lc.Add("database", CloseFunc(func() { order = append(order, "database") }))
	lc.Add("script", CloseFunc(func() { order = append(order, "script") }))

	err := lc.Run(context.Background(), "stats", func(context.Context) error {
		assert.Empty(t, order, "resources must stay open while the command runs")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"script", "database"}, order)
}

func TestRun_ReturnsCommandErrorAndStillReleases(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lc := New(zap.New(core))

	released := false
	lc.Add("database", CloseFunc(func() { released = true }))

	boom := errors.New("boom")
	err := lc.Run(context.Background(), "pool", func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.True(t, released)
	require.Equal(t, 1, logs.FilterMessage("command failed").Len())
	assert.Equal(t, "pool", logs.FilterMessage("command failed").All()[0].ContextMap()["command"])
}

func TestRun_PropagatesParentCancellation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lc := New(zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := lc.Run(ctx, "tick", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, logs.FilterMessage("command interrupted").Len())
}

func TestShutdown_ReleasesOnce(t *testing.T) {
	lc := New(zaptest.NewLogger(t))

	n := 0
	lc.Add("database", CloseFunc(func() { n++ }))

	lc.Shutdown()
	lc.Shutdown()
	assert.Equal(t, 1, n)
}
