package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search/internal/ratelimit"
)

type sweepRecorder struct {
	calls []time.Duration
	at    []time.Time
}

func (r *sweepRecorder) Sweep(now time.Time, ttl time.Duration) int {
	r.calls = append(r.calls, ttl)
	r.at = append(r.at, now)
	return 2
}

func TestRunOnce(t *testing.T) {
	rec := &sweepRecorder{}
	s := NewScheduler(rec, "@every 1m", 30*time.Minute)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.RunOnce()
	require.Len(t, rec.calls, 1)
	assert.Equal(t, 30*time.Minute, rec.calls[0])
	assert.Equal(t, fixed, rec.at[0])
}

func TestRunOnceRunsTasksAfterSweep(t *testing.T) {
	rec := &sweepRecorder{}
	s := NewScheduler(rec, "@every 1m", 30*time.Minute)

	var order []string
	s.AddTask("first", func() int {
		require.Len(t, rec.calls, 1, "tasks run after the sweep")
		order = append(order, "first")
		return 0
	})
	s.AddTask("second", func() int {
		order = append(order, "second")
		return 3
	})

	s.RunOnce()
	s.RunOnce()
	assert.Equal(t, []string{"first", "second", "first", "second"}, order)
	assert.Len(t, rec.calls, 2)
}

func TestRunOncePrunesRateLimiterClients(t *testing.T) {
	rl := ratelimit.NewRateLimiter(10, 100, true)
	require.True(t, rl.AllowRequest("active"))
	rl.GetStats("idle")

	s := NewScheduler(&sweepRecorder{}, "@every 1m", time.Minute)
	pruned := 0
	s.AddTask("rate limit clients", func() int {
		n := rl.Prune()
		pruned += n
		return n
	})

	s.RunOnce()
	assert.Equal(t, 1, pruned, "only the client with no requests is dropped")
	assert.Equal(t, 1, rl.GetStats("active").RequestsLastHour)

	s.RunOnce()
	assert.Equal(t, 1, pruned)
}

func TestStartDisabledOrInvalid(t *testing.T) {
	rec := &sweepRecorder{}

	s := NewScheduler(rec, "", time.Minute)
	require.NoError(t, s.Start())
	assert.False(t, s.isRunning)

	s = NewScheduler(rec, "not a cron spec", time.Minute)
	assert.Error(t, s.Start())

	s = NewScheduler(rec, "@every 1h", time.Minute)
	require.NoError(t, s.Start())
	assert.True(t, s.isRunning)
	s.Stop()
	assert.False(t, s.isRunning)
	assert.Empty(t, rec.calls)
}
