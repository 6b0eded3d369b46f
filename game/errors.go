package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room-not-found")
	ErrRoomFull         = errors.New("room-full")
	ErrGameInProgress   = errors.New("game-in-progress")
	ErrRegistryFull     = errors.New("registry-full")
	ErrAlreadyInRoom    = errors.New("already-in-room")
	ErrInvalidName      = errors.New("invalid-name")
	ErrInvalidRounds    = errors.New("invalid-rounds")
	ErrInvalidStroke    = errors.New("invalid-stroke")
	ErrNotHost          = errors.New("not-host")
	ErrNotEnoughPlayers = errors.New("not-enough-players")
	ErrSendBufferFull   = errors.New("send-buffer-full")
	ErrPlayerReleased   = errors.New("player-released")
	ErrServerClosing    = errors.New("server-closing")
	ErrUnknownAction    = errors.New("unknown-action")
	ErrMalformedAction  = errors.New("malformed-action")
)

// userMessages holds the copy shown to players for errors that reach them.
var userMessages = map[error]string{
	ErrRoomNotFound:     "Room not found! Check the code and try again.",
	ErrRoomFull:         "Room is full! Maximum 8 players.",
	ErrGameInProgress:   "Game already in progress! Wait for the next round.",
	ErrRegistryFull:     "Too many rooms are open right now. Please try again later.",
	ErrAlreadyInRoom:    "You are already in a room.",
	ErrInvalidName:      "Please enter a valid name.",
	ErrInvalidRounds:    "Rounds must be between 3 and 10.",
	ErrInvalidStroke:    "Invalid drawing data.",
	ErrNotHost:          "Only the host can start the game!",
	ErrNotEnoughPlayers: "Need at least 2 players to start!",
	ErrServerClosing:    RESTART_NOTICE,
}

func userMessage(err error) string {
	for target, msg := range userMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return "Something went wrong. Please try again."
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
