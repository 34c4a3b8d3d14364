package scheduling

import "time"

// CancelFunc stops a scheduled callback. Calling it after the callback has
// fired is a no-op.
type CancelFunc func()

// Scheduler is the timer source for the game engines. The real
// implementation delegates to the time package; tests advance a Fake
// synchronously so no game logic ever sleeps.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) CancelFunc
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) CancelFunc {
	timer := time.AfterFunc(d, f)
	return func() { timer.Stop() }
}

func NewScheduler() Scheduler {
	return realScheduler{}
}
