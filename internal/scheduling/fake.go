package scheduling

import (
	"sync"
	"time"
)

type fakeTimer struct {
	deadline  time.Time
	f         func()
	cancelled bool
	seq       int
}

// Fake is a Scheduler driven by Advance. Callbacks run synchronously on the
// advancing goroutine, in deadline order. Callbacks may schedule further
// timers; those fire too if they fall within the advanced window.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	seq    int
}

func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) CancelFunc {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	timer := &fakeTimer{
		deadline: f.now.Add(d),
		f:        fn,
		seq:      f.seq,
	}
	f.timers = append(f.timers, timer)

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		timer.cancelled = true
	}
}

// Advance moves the fake clock forward and fires every due timer.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)

	for {
		next := f.nextDueLocked(target)
		if next == nil {
			break
		}

		// Time jumps to the timer's deadline so callbacks scheduling
		// relative to "now" line up with the real scheduler.
		if next.deadline.After(f.now) {
			f.now = next.deadline
		}

		f.mu.Unlock()
		next.f()
		f.mu.Lock()
	}

	f.now = target
	f.mu.Unlock()
}

// Now returns the fake clock's current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// PendingTimers returns the number of scheduled, uncancelled timers.
func (f *Fake) PendingTimers() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, timer := range f.timers {
		if !timer.cancelled {
			count++
		}
	}
	return count
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTimer {
	var next *fakeTimer
	nextIndex := -1
	for i, timer := range f.timers {
		if timer.cancelled || timer.deadline.After(target) {
			continue
		}
		if next == nil || timer.deadline.Before(next.deadline) || (timer.deadline.Equal(next.deadline) && timer.seq < next.seq) {
			next = timer
			nextIndex = i
		}
	}
	if next == nil {
		return nil
	}

	f.timers = append(f.timers[:nextIndex], f.timers[nextIndex+1:]...)
	return next
}

// Type assertion
var _ Scheduler = (*Fake)(nil)
