package game

import "time"

type Timer interface {
	Stop() bool
}

type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) Now() time.Time {
	return time.Now()
}

func RealClock() Clock {
	return realClock{}
}

// taskHandle is one scheduled callback of a room. Once cancelled it never
// runs, even if its timer already fired and the callback is queued.
type taskHandle struct {
	timer     Timer
	cancelled bool
}

func (h *taskHandle) cancel() {
	if h == nil || h.cancelled {
		return
	}
	h.cancelled = true
	if h.timer != nil {
		h.timer.Stop()
	}
}

func (h *taskHandle) active() bool {
	return h != nil && !h.cancelled
}
