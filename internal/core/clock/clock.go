package clock

import "time"

// MinDuration is the floor applied to phase durations.
const MinDuration = time.Millisecond

// SecondUnit is the granularity of the discrete counter.
const SecondUnit = time.Second

// Reading is one observation of the running phase.
type Reading struct {
	Index     int
	Elapsed   time.Duration
	Duration  time.Duration
	Progress  float64
	Completed bool
	Second    int
}

// Clock tracks elapsed time within a single phase.
//
// All times are offsets on a caller-supplied monotonic base. The clock never
// reads the wall clock itself.
type Clock struct {
	index         int
	active        bool
	start         time.Duration
	duration      time.Duration
	paused        bool
	pausedElapsed time.Duration
	second        int
}

// StartPhase begins phase index at now, treating resumeElapsed as already spent.
func (clock *Clock) StartPhase(index int, duration, now, resumeElapsed time.Duration) {
	if duration < MinDuration {
		duration = MinDuration
	}
	resumeElapsed = clampDuration(resumeElapsed, 0, duration)

	clock.index = index
	clock.active = true
	clock.duration = duration
	clock.start = now - resumeElapsed
	clock.paused = false
	clock.pausedElapsed = 0
	clock.second = clock.wholeSeconds(resumeElapsed)
}

// Stop returns the clock to idle.
func (clock *Clock) Stop() {
	*clock = Clock{}
}

// Active reports whether a phase is loaded.
func (clock *Clock) Active() bool {
	return clock.active
}

// Paused reports whether the clock is frozen.
func (clock *Clock) Paused() bool {
	return clock.paused
}

// Index returns the loaded phase index.
func (clock *Clock) Index() int {
	return clock.index
}

// Duration returns the loaded phase duration.
func (clock *Clock) Duration() time.Duration {
	return clock.duration
}

// EndsAt returns the instant the running phase completes.
func (clock *Clock) EndsAt() time.Duration {
	return clock.start + clock.duration
}

// Tick observes the phase at now. The boolean is false when the clock is idle
// or paused; a paused clock reports its frozen reading.
func (clock *Clock) Tick(now time.Duration) (Reading, bool) {
	if !clock.active {
		return Reading{}, false
	}
	if clock.paused {
		return clock.reading(clock.pausedElapsed), false
	}
	return clock.reading(clock.elapsed(now)), true
}

// Pause freezes elapsed time at now.
func (clock *Clock) Pause(now time.Duration) {
	if !clock.active || clock.paused {
		return
	}
	clock.pausedElapsed = clock.elapsed(now)
	clock.paused = true
}

// Resume restarts the phase at now with the elapsed time captured by Pause.
func (clock *Clock) Resume(now time.Duration) {
	if !clock.active || !clock.paused {
		return
	}
	second := clock.second
	clock.StartPhase(clock.index, clock.duration, now, clock.pausedElapsed)
	if second > clock.second {
		clock.second = second
	}
}

// StepSecond advances the discrete counter to the whole seconds elapsed at
// now. It never moves backwards and reports whether the counter changed.
func (clock *Clock) StepSecond(now time.Duration) (int, bool) {
	if !clock.active || clock.paused {
		return clock.second, false
	}
	derived := clock.wholeSeconds(clock.elapsed(now))
	if derived <= clock.second {
		return clock.second, false
	}
	clock.second = derived
	return clock.second, true
}

// NextSecondAt returns the instant of the next discrete step, if the phase
// has one left.
func (clock *Clock) NextSecondAt() (time.Duration, bool) {
	if !clock.active || clock.paused || clock.second >= clock.maxSecond() {
		return 0, false
	}
	return clock.start + time.Duration(clock.second+1)*SecondUnit, true
}

func (clock *Clock) elapsed(now time.Duration) time.Duration {
	return clampDuration(now-clock.start, 0, clock.duration)
}

func (clock *Clock) reading(elapsed time.Duration) Reading {
	progress := float64(elapsed) / float64(clock.duration)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return Reading{
		Index:     clock.index,
		Elapsed:   elapsed,
		Duration:  clock.duration,
		Progress:  progress,
		Completed: elapsed >= clock.duration,
		Second:    clock.second,
	}
}

func (clock *Clock) wholeSeconds(elapsed time.Duration) int {
	seconds := int(elapsed / SecondUnit)
	if maxSecond := clock.maxSecond(); seconds > maxSecond {
		return maxSecond
	}
	return seconds
}

// maxSecond caps the counter so a display of Second+1 never exceeds the
// phase length in whole seconds.
func (clock *Clock) maxSecond() int {
	steps := int((clock.duration + SecondUnit - 1) / SecondUnit)
	if steps < 1 {
		return 0
	}
	return steps - 1
}

func clampDuration(value, low, high time.Duration) time.Duration {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
