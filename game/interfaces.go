package game

import (
	"context"
	"time"

	"github.com/doSwayamCode/chitrakaar/domain"
)

type WebsocketConnection interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// WordSource hands out count distinct words of a mode, skipping exclude.
type WordSource interface {
	Generate(count int, mode string, exclude map[string]struct{}) []string
}

type GallerySaver interface {
	SaveDrawing(ctx context.Context, drawing domain.Drawing) error
}

type ScoreRecorder interface {
	SaveGuestScore(ctx context.Context, entry domain.ScoreEntry) error
}

type GalleryReader interface {
	RecentDrawings(ctx context.Context, limit int) ([]domain.Drawing, error)
}

type LeaderboardReader interface {
	TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error)
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

// ActionRouter receives everything a connection reads.
type ActionRouter interface {
	Route(p *Player, msg ClientMessage)
	Disconnect(p *Player)
}

type roomLobby interface {
	UpdateDescription(desc RoomDescription)
	RemoveRoom(code string)
	GameStarted()
}
