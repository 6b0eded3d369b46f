package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ROOM_CODE_ALPHABET = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ROOM_CODE_LENGTH   = 6
)

type RegistryOptions struct {
	MaxRooms  int
	Retention time.Duration
}

type Stats struct {
	Rooms        int   `json:"rooms"`
	PublicRooms  int   `json:"publicRooms"`
	Players      int   `json:"players"`
	GamesStarted int64 `json:"gamesStarted"`
}

// Registry owns every live room. Rooms report their state through
// UpdateDescription so the registry never reads room internals.
type Registry struct {
	mu           sync.Mutex
	rooms        map[string]*Room
	descriptions map[string]RoomDescription

	maxRooms      int
	retention     time.Duration
	deps          RoomDeps
	tickerCreator PeriodicTickerChannelCreator
	codeGen       func() string
	gamesStarted  atomic.Int64
	closing       atomic.Bool

	// startRoom runs a room's loop; tests swap it for a synchronous setup.
	startRoom func(r *Room)
}

func NewRegistry(opts RegistryOptions, deps RoomDeps, tickerCreator PeriodicTickerChannelCreator) *Registry {
	return &Registry{
		rooms:         make(map[string]*Room),
		descriptions:  make(map[string]RoomDescription),
		maxRooms:      opts.MaxRooms,
		retention:     opts.Retention,
		deps:          deps,
		tickerCreator: tickerCreator,
		codeGen:       generateRoomCode,
		startRoom:     func(r *Room) { go r.GameLoop() },
	}
}

func generateRoomCode() string {
	code := make([]byte, ROOM_CODE_LENGTH)
	for i := range code {
		code[i] = ROOM_CODE_ALPHABET[rand.IntN(len(ROOM_CODE_ALPHABET))]
	}
	return string(code)
}

// CreateRoom registers a new room and seats host in it.
func (reg *Registry) CreateRoom(ctx context.Context, host *Player, opts RoomOptions) (*Room, error) {
	reg.mu.Lock()
	if reg.closing.Load() {
		reg.mu.Unlock()
		return nil, ErrServerClosing
	}
	if reg.maxRooms > 0 && len(reg.rooms) >= reg.maxRooms {
		reg.mu.Unlock()
		return nil, ErrRegistryFull
	}
	code := reg.codeGen()
	for _, taken := reg.rooms[code]; taken; _, taken = reg.rooms[code] {
		code = reg.codeGen()
	}
	room := NewRoom(code, opts, reg.deps, reg)
	reg.rooms[code] = room
	reg.descriptions[code] = room.description()
	reg.mu.Unlock()

	reg.startRoom(room)
	log.Info().Str("room", code).Str("mode", opts.Mode.Name).Bool("public", opts.Public).Msg("room created")

	if err := room.RequestJoin(ctx, host); err != nil {
		return nil, err
	}
	return room, nil
}

func (reg *Registry) JoinRoom(ctx context.Context, code string, p *Player) (*Room, error) {
	reg.mu.Lock()
	room, ok := reg.rooms[normalizeRoomCode(code)]
	reg.mu.Unlock()
	if reg.closing.Load() {
		return nil, ErrServerClosing
	}
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := room.RequestJoin(ctx, p); err != nil {
		return nil, err
	}
	return room, nil
}

// QuickPlay seats p in the first open public room that accepts it, or
// opens a new public classic room.
func (reg *Registry) QuickPlay(ctx context.Context, p *Player) (*Room, error) {
	for _, room := range reg.listedRooms() {
		err := room.RequestJoin(ctx, p)
		if err == nil {
			return room, nil
		}
		if !errorsIsAny(err, ErrRoomFull, ErrGameInProgress, ErrRoomNotFound) {
			return nil, err
		}
	}
	mode := ModeByName(DEFAULT_MODE)
	return reg.CreateRoom(ctx, p, RoomOptions{Mode: mode, Public: true, Rounds: mode.Rounds})
}

func (reg *Registry) listedRooms() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rooms := make([]*Room, 0)
	for code, desc := range reg.descriptions {
		if desc.Listed() {
			rooms = append(rooms, reg.rooms[code])
		}
	}
	return rooms
}

func (reg *Registry) Route(p *Player, msg ClientMessage) {
	switch msg.Action {
	case ACTION_CREATE_ROOM, ACTION_JOIN_ROOM, ACTION_QUICK_PLAY:
		if p.Room() != nil {
			p.Send(errorEvent(ErrAlreadyInRoom))
			return
		}
		// Connections still in the lobby get the notice a room would send.
		if reg.closing.Load() {
			p.Send(ServerEvent{Event: EVENT_GAME_ENDED, Data: messagePayload{Message: RESTART_NOTICE}})
			p.Release()
			return
		}
		if err := reg.enter(p, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Debug().Err(err).Str("player", p.id).Str("action", msg.Action).Msg("entry refused")
			p.Send(errorEvent(err))
		}
	default:
		room := p.Room()
		if room == nil {
			return
		}
		room.Send(p.ctx, ClientPacketEnvelope{message: msg, from: p})
	}
}

func (reg *Registry) enter(p *Player, msg ClientMessage) error {
	switch msg.Action {
	case ACTION_CREATE_ROOM:
		var data createRoomData
		if err := decode(msg, &data); err != nil {
			return err
		}
		name := sanitizeName(data.PlayerName)
		if name == "" {
			return ErrInvalidName
		}
		mode := ModeByName(data.Mode)
		rounds, err := parseRounds(data.Rounds, mode)
		if err != nil {
			return err
		}
		p.setProfile(name, validAvatar(data.AvatarId))
		_, err = reg.CreateRoom(p.ctx, p, RoomOptions{Mode: mode, Public: data.IsPublic, Rounds: rounds})
		return err

	case ACTION_JOIN_ROOM:
		var data joinRoomData
		if err := decode(msg, &data); err != nil {
			return err
		}
		name := sanitizeName(data.PlayerName)
		if name == "" {
			return ErrInvalidName
		}
		p.setProfile(name, validAvatar(data.AvatarId))
		_, err := reg.JoinRoom(p.ctx, data.RoomCode, p)
		return err

	case ACTION_QUICK_PLAY:
		var data quickPlayData
		if err := decode(msg, &data); err != nil {
			return err
		}
		name := sanitizeName(data.PlayerName)
		if name == "" {
			return ErrInvalidName
		}
		p.setProfile(name, validAvatar(data.AvatarId))
		_, err := reg.QuickPlay(p.ctx, p)
		return err
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, msg.Action)
}

func (reg *Registry) Disconnect(p *Player) {
	if room := p.Room(); room != nil {
		room.RemoveMe(p)
	}
	p.Release()
}

func (reg *Registry) UpdateDescription(desc RoomDescription) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rooms[desc.Code]; ok {
		reg.descriptions[desc.Code] = desc
	}
}

func (reg *Registry) RemoveRoom(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
	delete(reg.descriptions, code)
	log.Info().Str("room", code).Msg("room removed")
}

func (reg *Registry) GameStarted() {
	reg.gamesStarted.Add(1)
}

// Sweep drops waiting rooms nobody has been in for longer than the
// retention window.
func (reg *Registry) Sweep(now time.Time) int {
	reg.mu.Lock()
	stale := make([]*Room, 0)
	for code, desc := range reg.descriptions {
		if desc.Phase == PHASE_WAITING && desc.PlayersCount == 0 && now.Sub(desc.LastActivity) > reg.retention {
			stale = append(stale, reg.rooms[code])
			delete(reg.rooms, code)
			delete(reg.descriptions, code)
		}
	}
	reg.mu.Unlock()

	for _, room := range stale {
		room.CloseAndRelease()
	}
	if len(stale) > 0 {
		log.Info().Int("rooms", len(stale)).Msg("swept idle rooms")
	}
	return len(stale)
}

func (reg *Registry) SweepLoop(ctx context.Context, interval time.Duration, started chan struct{}) {
	ticks := reg.tickerCreator.Create(interval)
	close(started)
	for {
		select {
		case now := <-ticks:
			reg.Sweep(now)
		case <-ctx.Done():
			return
		}
	}
}

// Shutdown sends the restart notice to every room and stops them all.
// Entry actions are refused from then on.
func (reg *Registry) Shutdown(ctx context.Context) {
	reg.mu.Lock()
	reg.closing.Store(true)
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	clear(reg.rooms)
	clear(reg.descriptions)
	reg.mu.Unlock()

	var wg sync.WaitGroup
	for _, room := range rooms {
		wg.Go(func() { room.Shutdown(ctx) })
	}
	wg.Wait()
	log.Info().Int("rooms", len(rooms)).Msg("rooms shut down")
}

func (reg *Registry) Stats() Stats {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	stats := Stats{Rooms: len(reg.rooms), GamesStarted: reg.gamesStarted.Load()}
	for _, desc := range reg.descriptions {
		stats.Players += desc.PlayersCount
		if desc.Listed() {
			stats.PublicRooms++
		}
	}
	return stats
}
