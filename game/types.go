package game

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/doSwayamCode/chitrakaar/domain"
)

type RoomPhase int

const (
	PHASE_WAITING RoomPhase = iota
	PHASE_CHOOSING_WORD
	PHASE_PLAYING
	PHASE_ROUND_END
	PHASE_GAME_OVER
)

func (p RoomPhase) String() string {
	switch p {
	case PHASE_WAITING:
		return "waiting"
	case PHASE_CHOOSING_WORD:
		return "choosingWord"
	case PHASE_PLAYING:
		return "playing"
	case PHASE_ROUND_END:
		return "roundEnd"
	case PHASE_GAME_OVER:
		return "gameOver"
	}
	return "unknown"
}

func (p RoomPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

const (
	MAX_PLAYERS         = 8
	MIN_PLAYERS         = 2
	AUTO_START_PLAYERS  = 4
	WORD_CHOICES_COUNT  = 3
	MIN_ROUNDS          = 3
	MAX_ROUNDS          = 10
	GALLERY_MIN_STROKES = 10
	GALLERY_MAX_STROKES = 1000
	MAX_GUEST_SCORE     = 9999
)

const (
	WORD_CHOICE_TIMEOUT = 15 * time.Second
	TURN_TICK           = time.Second
	ROUND_END_DELAY     = 5 * time.Second
	GAME_OVER_DELAY     = 10 * time.Second
	AUTO_START_DELAY    = 5 * time.Second
	PERSIST_TIMEOUT     = 5 * time.Second
)

type Player struct {
	id       string
	name     string
	avatarId int
	score    int

	limiter   *actionLimiter
	outbox    chan ServerEvent
	room      atomic.Pointer[Room]
	ctx       context.Context
	cancelCtx context.CancelFunc
}

type ClientMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type ClientPacketEnvelope struct {
	message ClientMessage
	from    *Player
}

type roomJoinRequest struct {
	player  *Player
	errChan chan error
}

type RoomOptions struct {
	Mode   Mode
	Public bool
	Rounds int
}

type RoomDeps struct {
	Clock   Clock
	Words   WordSource
	Gallery GallerySaver
	Scores  ScoreRecorder
}

type RoomDescription struct {
	Code         string
	Public       bool
	Phase        RoomPhase
	PlayersCount int
	MaxPlayers   int
	LastActivity time.Time
}

// Listed reports whether matchmaking may place a player in the room.
func (d RoomDescription) Listed() bool {
	return d.Public && d.Phase == PHASE_WAITING && d.PlayersCount < d.MaxPlayers
}

type Room struct {
	// Identity / metadata
	code     string
	mode     Mode
	isPublic bool

	// Configuration
	maxPlayers  int
	totalRounds int
	turnTime    int

	// Runtime state
	phase          RoomPhase
	round          int
	drawerIndex    int
	drawerVacated  bool
	currentWord    string
	wordChoices    []string
	usedWords      map[string]struct{}
	turnTimeLeft   int
	nextTickAt     time.Time
	guessed        map[string]bool
	revealed       map[int]bool
	hintThresholds []float64
	hintsGiven     int
	drawHistory    []domain.Stroke
	lastActivity   time.Time

	// Scheduled tasks, at most one of each in flight
	wordTimer      *taskHandle
	turnTimer      *taskHandle
	phaseTimer     *taskHandle
	autoStartTimer *taskHandle

	// Collaborators
	clock   Clock
	intn    func(n int) int
	words   WordSource
	gallery GallerySaver
	scores  ScoreRecorder
	lobby   roomLobby

	// Players
	players []*Player

	// Communication
	inbox     chan ClientPacketEnvelope
	joinReqs  chan roomJoinRequest
	removeMe  chan *Player
	tasks     chan func()
	dispatch  func(task func())
	done      chan struct{}
	closeOnce func()
}
