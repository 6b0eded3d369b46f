package game

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/doSwayamCode/chitrakaar/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- WebsocketConnection ---

type MockWebsocketConnection struct {
	mock.Mock
}

func (m *MockWebsocketConnection) Close(errCode string) {
	m.Called(errCode)
}

func (m *MockWebsocketConnection) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockWebsocketConnection) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockWebsocketConnection) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- ActionRouter ---

type MockActionRouter struct {
	mock.Mock
}

func (m *MockActionRouter) Route(p *Player, msg ClientMessage) {
	m.Called(p, msg)
}

func (m *MockActionRouter) Disconnect(p *Player) {
	m.Called(p)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

// --- roomLobby ---

type MockLobby struct {
	mock.Mock
}

func (m *MockLobby) UpdateDescription(desc RoomDescription) {
	m.Called(desc)
}

func (m *MockLobby) RemoveRoom(code string) {
	m.Called(code)
}

func (m *MockLobby) GameStarted() {
	m.Called()
}

// --- Stores ---

type MockGallery struct {
	mock.Mock
}

func (m *MockGallery) SaveDrawing(ctx context.Context, drawing domain.Drawing) error {
	args := m.Called(ctx, drawing)
	return args.Error(0)
}

func (m *MockGallery) RecentDrawings(ctx context.Context, limit int) ([]domain.Drawing, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Drawing), args.Error(1)
}

type MockScores struct {
	mock.Mock
}

func (m *MockScores) SaveGuestScore(ctx context.Context, entry domain.ScoreEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockScores) TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.ScoreEntry), args.Error(1)
}

// --- WordSource ---

// fixedWords hands out its words in order, skipping excluded ones.
type fixedWords []string

func (w fixedWords) Generate(count int, mode string, exclude map[string]struct{}) []string {
	out := make([]string, 0, count)
	for _, word := range w {
		if _, used := exclude[word]; used {
			continue
		}
		out = append(out, word)
		if len(out) == count {
			break
		}
	}
	return out
}

var testWords = fixedWords{
	"Biryani", "Taj Mahal", "Cricket", "Samosa", "Rickshaw", "Diwali",
	"Chai", "Kabaddi", "Mango", "Peacock", "Sitar", "Tiffin",
	"Lassi", "Rangoli", "Bindi",
}

// --- Clock ---

type manualTimer struct {
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

// manualClock fires callbacks only from Advance, on the calling goroutine.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{at: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.fn()
	}
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// --- Room and player helpers ---

func newTestPlayer(name string) *Player {
	p := NewPlayer(strings.ToLower(name))
	p.setProfile(name, 0)
	return p
}

// newTestRoom builds a room whose tasks run inline on the test goroutine.
func newTestRoom(t *testing.T, opts RoomOptions, words WordSource) (*Room, *manualClock, *MockLobby) {
	t.Helper()
	clock := newManualClock()
	lobby := &MockLobby{}
	lobby.On("UpdateDescription", mock.Anything).Return().Maybe()
	lobby.On("GameStarted").Return().Maybe()
	lobby.On("RemoveRoom", mock.Anything).Return().Maybe()

	if opts.Mode.Name == "" {
		opts.Mode = ModeByName(DEFAULT_MODE)
	}
	r := NewRoom("ROOM42", opts, RoomDeps{Clock: clock, Words: words}, lobby)
	r.dispatch = func(task func()) { task() }
	r.intn = func(int) int { return 0 }
	return r, clock, lobby
}

func join(t *testing.T, r *Room, players ...*Player) {
	t.Helper()
	for _, p := range players {
		req := roomJoinRequest{player: p, errChan: make(chan error, 1)}
		r.handleJoinRequest(req)
		require.NoError(t, <-req.errChan, "join of %s", p.name)
	}
}

func act(t *testing.T, r *Room, from *Player, action string, data any) {
	t.Helper()
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		require.NoError(t, err)
		raw = b
	}
	r.handleEnvelope(ClientPacketEnvelope{message: ClientMessage{Action: action, Data: raw}, from: from})
}

func chat(t *testing.T, r *Room, from *Player, msg string) {
	t.Helper()
	act(t, r, from, ACTION_CHAT_MESSAGE, chatMessageData{Message: msg})
}

func drain(p *Player) []ServerEvent {
	var evs []ServerEvent
	for {
		select {
		case ev := <-p.outbox:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func drainAll(players ...*Player) {
	for _, p := range players {
		drain(p)
	}
}

func eventNames(evs []ServerEvent) []string {
	names := make([]string, len(evs))
	for i, ev := range evs {
		names[i] = ev.Event
	}
	return names
}

func eventsNamed(evs []ServerEvent, name string) []ServerEvent {
	return slices.DeleteFunc(slices.Clone(evs), func(ev ServerEvent) bool { return ev.Event != name })
}

func findEvent(t *testing.T, evs []ServerEvent, name string) ServerEvent {
	t.Helper()
	found := eventsNamed(evs, name)
	require.NotEmpty(t, found, "no %q event in %v", name, eventNames(evs))
	return found[len(found)-1]
}

// waitForEvent reads p's outbox until an event named name arrives.
func waitForEvent(t *testing.T, p *Player, name string) ServerEvent {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-p.outbox:
			if ev.Event == name {
				return ev
			}
		case <-timeout:
			require.FailNow(t, "timed out waiting for event", name)
		}
	}
}

func assertPayload(t *testing.T, want, got any, msgAndArgs ...any) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		assert.Fail(t, "payload mismatch (-want +got):\n"+diff, msgAndArgs...)
	}
}

func scoreOf(scores []ScoreInfo, id string) int {
	for _, s := range scores {
		if s.Id == id {
			return s.Score
		}
	}
	return -1
}
