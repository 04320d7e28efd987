package shutter

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownFiresOnce(t *testing.T) {
	t.Parallel()

	var shots atomic.Int32
	s := New(func() { shots.Add(1) }, WithInterval(5*time.Millisecond))

	assert.Equal(t, Status{}, s.Status())
	require.NoError(t, s.Start(context.Background()))

	st := s.Status()
	assert.True(t, st.Counting)
	assert.Equal(t, DefaultCount, st.Remaining)

	s.Wait()
	assert.Equal(t, int32(1), shots.Load())
	assert.Equal(t, Status{}, s.Status())
}

func TestStartWhileCounting(t *testing.T) {
	t.Parallel()

	var shots atomic.Int32
	s := New(func() { shots.Add(1) }, WithInterval(20*time.Millisecond))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrCounting)

	s.Wait()
	assert.Equal(t, int32(1), shots.Load())

	// A finished countdown can be started again.
	require.NoError(t, s.Start(context.Background()))
	s.Wait()
	assert.Equal(t, int32(2), shots.Load())
}

func TestCountdownStopsWithContext(t *testing.T) {
	t.Parallel()

	var shots atomic.Int32
	s := New(func() { shots.Add(1) }, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	s.Wait()

	assert.Zero(t, shots.Load())
	assert.False(t, s.Status().Counting)
}

func TestShoot(t *testing.T) {
	t.Parallel()

	var shots atomic.Int32
	s := New(func() { shots.Add(1) }, WithCount(0))
	s.Shoot()
	assert.Equal(t, int32(1), shots.Load())
	assert.Equal(t, 1, s.count)
}
