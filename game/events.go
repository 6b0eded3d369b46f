package game

import "github.com/doSwayamCode/chitrakaar/domain"

// Inbound actions.
const (
	ACTION_CREATE_ROOM   = "createRoom"
	ACTION_JOIN_ROOM     = "joinRoom"
	ACTION_QUICK_PLAY    = "quickPlay"
	ACTION_START_GAME    = "startGame"
	ACTION_UPDATE_ROUNDS = "updateRounds"
	ACTION_WORD_CHOSEN   = "wordChosen"
	ACTION_DRAW          = "draw"
	ACTION_CLEAR_CANVAS  = "clearCanvas"
	ACTION_CHAT_MESSAGE  = "chatMessage"
)

// Outbound events.
const (
	EVENT_ROOM_CREATED    = "roomCreated"
	EVENT_ROOM_JOINED     = "roomJoined"
	EVENT_PLAYER_JOINED   = "playerJoined"
	EVENT_PLAYER_LEFT     = "playerLeft"
	EVENT_ROUNDS_UPDATED  = "roundsUpdated"
	EVENT_AUTO_STARTING   = "autoStarting"
	EVENT_GAME_STARTED    = "gameStarted"
	EVENT_DRAWER_CHOOSING = "drawerChoosing"
	EVENT_CHOOSE_WORD     = "chooseWord"
	EVENT_WORD_SELECTED   = "wordSelected"
	EVENT_CLEAR_CANVAS    = "clearCanvas"
	EVENT_DRAW            = "draw"
	EVENT_TIMER_UPDATE    = "timerUpdate"
	EVENT_HINT_REVEALED   = "hintRevealed"
	EVENT_CORRECT_GUESS   = "correctGuess"
	EVENT_CHAT_MESSAGE    = "chatMessage"
	EVENT_TURN_END        = "turnEnd"
	EVENT_NEW_TURN        = "newTurn"
	EVENT_GAME_OVER       = "gameOver"
	EVENT_GAME_ENDED      = "gameEnded"
	EVENT_ROOM_UPDATE     = "roomUpdate"
	EVENT_ERROR           = "error"
)

const (
	CHAT_NORMAL       = "normal"
	CHAT_GUESSED      = "guessed-chat"
	CHAT_CLOSE_GUESS  = "close-guess"
	HINT_SENDER_NAME  = "Hint"
	NOT_ENOUGH_NOTICE = "Not enough players. Game ended."
	RESTART_NOTICE    = "Server is restarting. Please rejoin."
)

type createRoomData struct {
	PlayerName string `json:"playerName"`
	AvatarId   any    `json:"avatarId"`
	Mode       string `json:"mode"`
	IsPublic   bool   `json:"isPublic"`
	Rounds     int    `json:"rounds"`
}

type joinRoomData struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	AvatarId   any    `json:"avatarId"`
}

type quickPlayData struct {
	PlayerName string `json:"playerName"`
	AvatarId   any    `json:"avatarId"`
}

type updateRoundsData struct {
	Rounds int `json:"rounds"`
}

type wordChosenData struct {
	Word string `json:"word"`
}

type chatMessageData struct {
	Message string `json:"message"`
}

type PlayerInfo struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	AvatarId int    `json:"avatarId"`
}

type ScoreInfo struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type roomJoinedPayload struct {
	Code        string       `json:"code"`
	Mode        string       `json:"mode"`
	IsPublic    bool         `json:"isPublic"`
	TotalRounds int          `json:"totalRounds"`
	Players     []PlayerInfo `json:"players"`
}

type playerMovedPayload struct {
	PlayerName string       `json:"playerName"`
	Players    []PlayerInfo `json:"players"`
}

type roundsUpdatedPayload struct {
	TotalRounds int `json:"totalRounds"`
}

type autoStartingPayload struct {
	Countdown int `json:"countdown"`
}

type gameStartedPayload struct {
	Round       int    `json:"round"`
	TotalRounds int    `json:"totalRounds"`
	DrawerName  string `json:"drawerName"`
	DrawerId    string `json:"drawerId"`
	Mode        string `json:"mode"`
	TurnTime    int    `json:"turnTime"`
}

type drawerPayload struct {
	DrawerName string `json:"drawerName"`
	DrawerId   string `json:"drawerId"`
}

type chooseWordPayload struct {
	Words []string `json:"words"`
}

type wordSelectedPayload struct {
	Word       string `json:"word"`
	IsDrawer   bool   `json:"isDrawer"`
	WordLength int    `json:"wordLength,omitempty"`
}

type timerUpdatePayload struct {
	SecondsLeft int `json:"secondsLeft"`
}

type hintRevealedPayload struct {
	MaskedHint string `json:"maskedHint"`
}

type correctGuessPayload struct {
	PlayerName string      `json:"playerName"`
	PlayerId   string      `json:"playerId"`
	Score      int         `json:"score"`
	Scores     []ScoreInfo `json:"scores"`
}

type chatMessagePayload struct {
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Type       string `json:"type"`
}

type turnEndPayload struct {
	Word   string      `json:"word"`
	Scores []ScoreInfo `json:"scores"`
}

type newTurnPayload struct {
	Round       int    `json:"round"`
	TotalRounds int    `json:"totalRounds"`
	DrawerName  string `json:"drawerName"`
	DrawerId    string `json:"drawerId"`
}

type gameOverPayload struct {
	Players []ScoreInfo `json:"players"`
	Winner  ScoreInfo   `json:"winner"`
}

type messagePayload struct {
	Message string `json:"message"`
}

type roomUpdatePayload struct {
	Players []PlayerInfo `json:"players"`
	State   RoomPhase    `json:"state"`
}

func errorEvent(err error) ServerEvent {
	return ServerEvent{Event: EVENT_ERROR, Data: messagePayload{Message: userMessage(err)}}
}

func drawEvent(s domain.Stroke) ServerEvent {
	return ServerEvent{Event: EVENT_DRAW, Data: s}
}
