package pacer

import (
	"sort"
	"testing"
	"time"

	"breathpace/internal/core/model"
	"breathpace/internal/core/pattern"
	"breathpace/internal/core/sequencer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	at       time.Duration
	callback func()
	stopped  bool
	fired    bool
}

func (timer *fakeTimer) Stop() bool {
	if timer.stopped || timer.fired {
		return false
	}
	timer.stopped = true
	return true
}

type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer
}

func (scheduler *fakeScheduler) AfterFunc(delay time.Duration, callback func()) Stopper {
	timer := &fakeTimer{at: scheduler.now + delay, callback: callback}
	scheduler.timers = append(scheduler.timers, timer)
	return timer
}

func (scheduler *fakeScheduler) Now() time.Duration {
	return scheduler.now
}

func (scheduler *fakeScheduler) pending() []*fakeTimer {
	var pending []*fakeTimer
	for _, timer := range scheduler.timers {
		if !timer.stopped && !timer.fired {
			pending = append(pending, timer)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].at < pending[j].at })
	return pending
}

// runUntil fires due timers in order, moving the clock to each deadline.
func (scheduler *fakeScheduler) runUntil(target time.Duration) {
	for {
		pending := scheduler.pending()
		if len(pending) == 0 || pending[0].at > target {
			break
		}
		next := pending[0]
		scheduler.now = next.at
		next.fired = true
		next.callback()
	}
	scheduler.now = target
}

func newPacer(t *testing.T) (*Pacer, *fakeScheduler) {
	t.Helper()
	scheduler := &fakeScheduler{}
	pacer := New(Options{
		Scheduler: scheduler,
		Now:       scheduler.Now,
		NewID:     func() string { return "session" },
	})
	t.Cleanup(pacer.Close)
	return pacer, scheduler
}

func drain(events <-chan sequencer.Event) []sequencer.EventType {
	var types []sequencer.EventType
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return types
			}
			types = append(types, event.Type)
		default:
			return types
		}
	}
}

func balanceRequest(unit float64, rounds int) model.Request {
	return model.Request{PatternName: "1:1 Balance", UnitSeconds: unit, TotalRounds: rounds}
}

func TestStartRejectsInvalidRequest(t *testing.T) {
	pacer, scheduler := newPacer(t)

	err := pacer.Start(model.Request{PatternName: "missing", UnitSeconds: 4, TotalRounds: 1})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
	assert.ErrorIs(t, pacer.Start(balanceRequest(0, 1)), model.ErrInvalidConfig)
	assert.ErrorIs(t, pacer.Start(balanceRequest(4, 0)), model.ErrInvalidConfig)

	assert.Empty(t, scheduler.timers)
	assert.Equal(t, sequencer.StatusIdle, pacer.Snapshot().Status)
}

func TestSessionRunsToCompletion(t *testing.T) {
	pacer, scheduler := newPacer(t)
	events := pacer.Subscribe(128)

	require.NoError(t, pacer.Start(balanceRequest(4, 2)))
	assert.Equal(t, sequencer.StatusCountingDown, pacer.Snapshot().Status)
	assert.Equal(t, "Ready", pacer.Snapshot().CountdownLabel)
	require.Len(t, scheduler.pending(), 1)
	assert.Equal(t, time.Second, scheduler.pending()[0].at)

	scheduler.runUntil(3*time.Second + 4*time.Second)
	snapshot := pacer.Snapshot()
	assert.Equal(t, sequencer.StatusInPhase, snapshot.Status)
	assert.Equal(t, "exhale", string(snapshot.Phase))
	assert.Equal(t, 0.0, snapshot.PhaseProgress)

	scheduler.runUntil(time.Minute)
	snapshot = pacer.Snapshot()
	assert.Equal(t, sequencer.StatusComplete, snapshot.Status)
	assert.Equal(t, 2, snapshot.RoundsCompleted)
	assert.Empty(t, scheduler.pending())

	types := drain(events)
	completed := 0
	for _, eventType := range types {
		if eventType == sequencer.EventSessionCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, sequencer.EventSessionStarted, types[0])
}

func TestPauseStopsTimersAndResumeReschedules(t *testing.T) {
	pacer, scheduler := newPacer(t)
	require.NoError(t, pacer.Start(balanceRequest(4, 1)))
	scheduler.runUntil(4 * time.Second)

	require.True(t, pacer.Pause())
	assert.Empty(t, scheduler.pending())
	assert.Equal(t, 0, pacer.Stats().PendingTimers)

	scheduler.runUntil(time.Hour)
	paused := pacer.Snapshot()
	assert.True(t, paused.Paused)
	assert.InDelta(t, 0.25, paused.PhaseProgress, 1e-9)

	require.True(t, pacer.Resume())
	pending := scheduler.pending()
	require.Len(t, pending, 2)
	assert.Equal(t, time.Hour+time.Second, pending[0].at)
	assert.Equal(t, time.Hour+3*time.Second, pending[1].at)

	scheduler.runUntil(time.Hour + 3*time.Second)
	assert.Equal(t, "exhale", string(pacer.Snapshot().Phase))
}

func TestTogglePause(t *testing.T) {
	pacer, _ := newPacer(t)
	assert.False(t, pacer.TogglePause())

	require.NoError(t, pacer.Start(balanceRequest(4, 1)))
	assert.True(t, pacer.TogglePause())
	assert.Equal(t, sequencer.StatusPaused, pacer.Snapshot().Status)
	assert.True(t, pacer.TogglePause())
	assert.Equal(t, sequencer.StatusCountingDown, pacer.Snapshot().Status)
}

func TestStaleCallbackIsDropped(t *testing.T) {
	pacer, scheduler := newPacer(t)
	require.NoError(t, pacer.Start(balanceRequest(4, 1)))
	scheduler.runUntil(3 * time.Second)

	stale := scheduler.pending()[0]
	require.True(t, pacer.Pause())
	scheduler.now = 10 * time.Second
	require.True(t, pacer.Resume())
	before := pacer.Snapshot()

	// A callback that raced with Stop still runs after the lock is released.
	stale.callback()

	assert.Equal(t, uint64(1), pacer.Stats().StaleTimers)
	after := pacer.Snapshot()
	assert.Equal(t, before.Phase, after.Phase)
	assert.Equal(t, before.PhaseIndex, after.PhaseIndex)
}

func TestEarlyCallbackReschedules(t *testing.T) {
	pacer, scheduler := newPacer(t)
	require.NoError(t, pacer.Start(balanceRequest(4, 1)))

	early := scheduler.pending()[0]
	scheduler.now = 900 * time.Millisecond
	early.fired = true
	early.callback()

	assert.Equal(t, "Ready", pacer.Snapshot().CountdownLabel)
	pending := scheduler.pending()
	require.Len(t, pending, 1)
	assert.Equal(t, time.Second, pending[0].at)
}

func TestAbortAndClose(t *testing.T) {
	pacer, scheduler := newPacer(t)
	events := pacer.Subscribe(16)

	require.NoError(t, pacer.Start(balanceRequest(4, 1)))
	assert.ErrorIs(t, pacer.Start(balanceRequest(4, 1)), sequencer.ErrSessionActive)
	require.True(t, pacer.Abort())
	assert.Empty(t, scheduler.pending())
	assert.Contains(t, drain(events), sequencer.EventSessionAborted)

	pacer.Close()
	_, open := <-events
	assert.False(t, open)
	assert.ErrorIs(t, pacer.Start(balanceRequest(4, 1)), ErrClosed)
	assert.False(t, pacer.Pause())

	late := pacer.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	pacer, scheduler := newPacer(t)
	events := pacer.Subscribe(1)

	require.NoError(t, pacer.Start(balanceRequest(1, 3)))
	scheduler.runUntil(time.Minute)

	assert.Equal(t, sequencer.StatusComplete, pacer.Snapshot().Status)
	assert.Len(t, drain(events), 1)
}

func TestSetPatternsAffectsLaterStarts(t *testing.T) {
	pacer, _ := newPacer(t)
	custom, err := pattern.DefaultTable().Merge(pattern.Pattern{Name: "slow", Ratios: []float64{2, 3}})
	require.NoError(t, err)

	assert.Error(t, pacer.Start(model.Request{PatternName: "slow", UnitSeconds: 1, TotalRounds: 1}))
	pacer.SetPatterns(custom)
	pacer.SetPatterns(nil)
	require.NoError(t, pacer.Start(model.Request{PatternName: "slow", UnitSeconds: 1, TotalRounds: 1}))
	assert.Equal(t, "slow", pacer.Snapshot().Pattern)
}
