package game

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const PLAYER_OUTBOX_SIZE = 256

func NewPlayer(id string) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		id:        id,
		limiter:   newActionLimiter(),
		outbox:    make(chan ServerEvent, PLAYER_OUTBOX_SIZE),
		ctx:       ctx,
		cancelCtx: cancel,
	}
}

func (p *Player) Id() string {
	return p.id
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) Room() *Room {
	return p.room.Load()
}

func (p *Player) setRoom(r *Room) {
	p.room.Store(r)
}

// setProfile is only called while the player belongs to no room.
func (p *Player) setProfile(name string, avatarId int) {
	p.name = name
	p.avatarId = avatarId
}

// Send queues ev without ever blocking the caller.
func (p *Player) Send(ev ServerEvent) error {
	select {
	case <-p.ctx.Done():
		return ErrPlayerReleased
	default:
	}
	select {
	case p.outbox <- ev:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Release stops the write pump, which flushes what is queued and closes the
// connection.
func (p *Player) Release() {
	p.cancelCtx()
}

func (p *Player) info() PlayerInfo {
	return PlayerInfo{Id: p.id, Name: p.name, Score: p.score, AvatarId: p.avatarId}
}

func (p *Player) scoreInfo() ScoreInfo {
	return ScoreInfo{Id: p.id, Name: p.name, Score: p.score}
}

func (p *Player) ReadPump(conn WebsocketConnection, router ActionRouter) {
	defer router.Disconnect(p)

	for {
		data, err := conn.Read()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Action == "" {
			log.Debug().Str("player", p.id).Msg("dropping malformed frame")
			continue
		}

		if !p.limiter.allow(msg.Action) {
			p.limiter.dropped(func() {
				log.Debug().Str("player", p.id).Str("action", msg.Action).Msg("rate limited")
			})
			continue
		}

		router.Route(p, msg)
	}
}

func (p *Player) WritePump(conn WebsocketConnection, pings <-chan time.Time) {
	for {
		select {
		case ev := <-p.outbox:
			if err := p.write(conn, ev); err != nil {
				p.Release()
				conn.Close("write-failed")
				return
			}
		case <-pings:
			if err := conn.Ping(); err != nil {
				p.Release()
				conn.Close("ping-failed")
				return
			}
		case <-p.ctx.Done():
			p.flush(conn)
			conn.Close("")
			return
		}
	}
}

func (p *Player) flush(conn WebsocketConnection) {
	for {
		select {
		case ev := <-p.outbox:
			if err := p.write(conn, ev); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (p *Player) write(conn WebsocketConnection, ev ServerEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Event).Msg("failed to encode event")
		return nil
	}
	return conn.Write(data)
}
