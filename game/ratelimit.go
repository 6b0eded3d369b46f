package game

import (
	"time"

	"golang.org/x/time/rate"
)

const (
	DRAW_ACTIONS_PER_SECOND = 60
	CHAT_ACTIONS_PER_SECOND = 5
	RATE_WINDOW             = time.Second
	DROP_LOG_INTERVAL       = 10 * time.Second
)

// slidingWindow admits at most limit events in any trailing window. It keeps
// the accept times of the last limit events in a ring, oldest at next.
type slidingWindow struct {
	limit   int
	window  time.Duration
	accepts []time.Time
	next    int
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{limit: limit, window: window, accepts: make([]time.Time, 0, limit)}
}

func (w *slidingWindow) allowAt(now time.Time) bool {
	if len(w.accepts) < w.limit {
		w.accepts = append(w.accepts, now)
		return true
	}
	if now.Sub(w.accepts[w.next]) < w.window {
		return false
	}
	w.accepts[w.next] = now
	w.next = (w.next + 1) % w.limit
	return true
}

// actionLimiter caps inbound actions of one connection per action type.
// Only draw and chat traffic is limited. It is used by the read pump alone.
type actionLimiter struct {
	draw *slidingWindow
	chat *slidingWindow

	// drops throttles the log line for rejected actions.
	drops rate.Sometimes
}

func newActionLimiter() *actionLimiter {
	return &actionLimiter{
		draw:  newSlidingWindow(DRAW_ACTIONS_PER_SECOND, RATE_WINDOW),
		chat:  newSlidingWindow(CHAT_ACTIONS_PER_SECOND, RATE_WINDOW),
		drops: rate.Sometimes{First: 1, Interval: DROP_LOG_INTERVAL},
	}
}

func (l *actionLimiter) allowAt(action string, now time.Time) bool {
	switch action {
	case ACTION_DRAW:
		return l.draw.allowAt(now)
	case ACTION_CHAT_MESSAGE:
		return l.chat.allowAt(now)
	}
	return true
}

func (l *actionLimiter) allow(action string) bool {
	return l.allowAt(action, time.Now())
}

// dropped runs report for the first rejected action and then at most once
// per DROP_LOG_INTERVAL.
func (l *actionLimiter) dropped(report func()) {
	l.drops.Do(report)
}
