// Package retry holds the single cancellable retry timer each connection
// manager owns.
package retry

import "time"

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests swap in a fake.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
func (RealClock) Now() time.Time                            { return time.Now() }

// Slot holds at most one pending retry. Scheduling a new retry cancels the
// previous one first.
//
// A Slot is not safe for concurrent use. It belongs to one event loop: the
// fire callback runs on a timer goroutine and must hand its token back to the
// loop, which calls Claim before acting on it. Claim rejects tokens from
// timers that were cancelled or replaced after they had already fired.
type Slot struct {
	clock   Clock
	timer   Timer
	token   uint64
	pending bool
}

// NewSlot returns an empty slot. A nil clock means RealClock.
func NewSlot(clock Clock) *Slot {
	if clock == nil {
		clock = RealClock{}
	}
	return &Slot{clock: clock}
}

// Schedule cancels any pending retry and arms a new one. fire receives the
// token to pass to Claim.
func (s *Slot) Schedule(d time.Duration, fire func(token uint64)) uint64 {
	s.Cancel()
	s.token++
	token := s.token
	s.pending = true
	s.timer = s.clock.AfterFunc(d, func() { fire(token) })
	return token
}

// Cancel stops the pending retry, if any, and reports whether one was pending.
func (s *Slot) Cancel() bool {
	if !s.pending {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.pending = false
	s.token++ // invalidate a callback that already fired but is not claimed yet
	return true
}

// Claim consumes a fired token. It returns true only for the current pending
// retry; the slot is empty afterwards.
func (s *Slot) Claim(token uint64) bool {
	if !s.pending || token != s.token {
		return false
	}
	s.timer = nil
	s.pending = false
	return true
}

// Pending reports whether a retry is armed.
func (s *Slot) Pending() bool {
	return s.pending
}
