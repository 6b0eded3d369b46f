package game

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

func NewRoom(code string, opts RoomOptions, deps RoomDeps, lobby roomLobby) *Room {
	clock := deps.Clock
	if clock == nil {
		clock = realClock{}
	}
	rounds := opts.Rounds
	if rounds == 0 {
		rounds = opts.Mode.Rounds
	}

	room := &Room{
		code:        code,
		mode:        opts.Mode,
		isPublic:    opts.Public,
		maxPlayers:  MAX_PLAYERS,
		totalRounds: rounds,
		turnTime:    opts.Mode.TurnTime,
		phase:       PHASE_WAITING,
		usedWords:   make(map[string]struct{}),
		guessed:     make(map[string]bool),
		revealed:    make(map[int]bool),
		clock:       clock,
		intn:        rand.IntN,
		words:       deps.Words,
		gallery:     deps.Gallery,
		scores:      deps.Scores,
		lobby:       lobby,
		players:     make([]*Player, 0, MAX_PLAYERS),
		inbox:       make(chan ClientPacketEnvelope, 1024),
		joinReqs:    make(chan roomJoinRequest),
		removeMe:    make(chan *Player, 64),
		tasks:       make(chan func(), 64),
		done:        make(chan struct{}),
	}
	room.lastActivity = clock.Now()

	var once sync.Once
	room.closeOnce = func() { once.Do(func() { close(room.done) }) }
	room.dispatch = func(task func()) {
		select {
		case room.tasks <- task:
		case <-room.done:
		}
	}
	return room
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) GameLoop() {
	for {
		select {
		case env := <-r.inbox:
			r.handleEnvelope(env)
		case req := <-r.joinReqs:
			r.handleJoinRequest(req)
		case p := <-r.removeMe:
			r.handleRemovePlayer(p)
		case task := <-r.tasks:
			task()
		case <-r.done:
			return
		}
	}
}

func (r *Room) Send(ctx context.Context, env ClientPacketEnvelope) {
	select {
	case r.inbox <- env:
	case <-ctx.Done():
	case <-r.done:
	}
}

// RequestJoin blocks until the room admitted or refused p. Once the request
// is handed over the answer is always awaited so an admitted player is
// never left behind by a cancelled caller.
func (r *Room) RequestJoin(ctx context.Context, p *Player) error {
	req := roomJoinRequest{player: p, errChan: make(chan error, 1)}
	select {
	case r.joinReqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRoomNotFound
	}
	select {
	case err := <-req.errChan:
		return err
	case <-r.done:
		return ErrRoomNotFound
	}
}

func (r *Room) RemoveMe(p *Player) {
	select {
	case r.removeMe <- p:
	case <-r.done:
	}
}

// Shutdown tells every player the server is going away and stops the room.
func (r *Room) Shutdown(ctx context.Context) {
	finished := make(chan struct{})
	go r.dispatch(func() {
		defer close(finished)
		r.cancelAllTimers()
		r.broadcast(ServerEvent{Event: EVENT_GAME_ENDED, Data: messagePayload{Message: RESTART_NOTICE}})
		for _, p := range r.players {
			p.Release()
		}
	})
	select {
	case <-finished:
	case <-ctx.Done():
	case <-r.done:
	}
	r.CloseAndRelease()
}

func (r *Room) CloseAndRelease() {
	r.closeOnce()
}

func (r *Room) post(task func()) {
	r.dispatch(task)
}

// schedule runs fn inside the room loop after d unless the returned handle
// is cancelled first.
func (r *Room) schedule(d time.Duration, fn func()) *taskHandle {
	h := &taskHandle{}
	h.timer = r.clock.AfterFunc(d, func() {
		r.post(func() {
			if h.cancelled {
				return
			}
			h.cancelled = true
			fn()
		})
	})
	return h
}

func (r *Room) cancelTurnTimers() {
	r.wordTimer.cancel()
	r.turnTimer.cancel()
	r.wordTimer, r.turnTimer = nil, nil
}

func (r *Room) cancelAllTimers() {
	r.cancelTurnTimers()
	r.phaseTimer.cancel()
	r.autoStartTimer.cancel()
	r.phaseTimer, r.autoStartTimer = nil, nil
}

func (r *Room) touch() {
	r.lastActivity = r.clock.Now()
}

func (r *Room) setPhase(phase RoomPhase) {
	r.phase = phase
	r.publishDescription()
}

func (r *Room) description() RoomDescription {
	return RoomDescription{
		Code:         r.code,
		Public:       r.isPublic,
		Phase:        r.phase,
		PlayersCount: len(r.players),
		MaxPlayers:   r.maxPlayers,
		LastActivity: r.lastActivity,
	}
}

func (r *Room) publishDescription() {
	if r.lobby != nil {
		r.lobby.UpdateDescription(r.description())
	}
}

func (r *Room) drawer() *Player {
	if r.drawerIndex < 0 || r.drawerIndex >= len(r.players) {
		return nil
	}
	return r.players[r.drawerIndex]
}

func (r *Room) host() *Player {
	if len(r.players) == 0 {
		return nil
	}
	return r.players[0]
}

func (r *Room) indexOf(p *Player) int {
	for i, player := range r.players {
		if player == p {
			return i
		}
	}
	return -1
}

func (r *Room) sendTo(p *Player, ev ServerEvent) {
	if err := p.Send(ev); err != nil {
		log.Debug().Err(err).Str("room", r.code).Str("player", p.id).Str("event", ev.Event).Msg("event dropped")
	}
}

func (r *Room) broadcast(ev ServerEvent) {
	for _, p := range r.players {
		r.sendTo(p, ev)
	}
}

func (r *Room) broadcastExcept(ev ServerEvent, except *Player) {
	for _, p := range r.players {
		if p != except {
			r.sendTo(p, ev)
		}
	}
}

func (r *Room) playerInfos() []PlayerInfo {
	infos := make([]PlayerInfo, len(r.players))
	for i, p := range r.players {
		infos[i] = p.info()
	}
	return infos
}

func (r *Room) scoreInfos() []ScoreInfo {
	scores := make([]ScoreInfo, len(r.players))
	for i, p := range r.players {
		scores[i] = p.scoreInfo()
	}
	return scores
}

// persist runs a store call off the room loop. Failures are only logged.
func (r *Room) persist(what string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PERSIST_TIMEOUT)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Str("room", r.code).Msgf("failed to %s", what)
		}
	}()
}
