package pacer

import "time"

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(delay time.Duration, callback func()) Stopper
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(delay time.Duration, callback func()) Stopper {
	return time.AfterFunc(delay, callback)
}

// MonotonicNow returns a clock reading offsets from the moment it was created.
// time.Since uses the monotonic reading, so wall-clock jumps are ignored.
func MonotonicNow() func() time.Duration {
	origin := time.Now()
	return func() time.Duration {
		return time.Since(origin)
	}
}
