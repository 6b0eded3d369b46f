package game

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/doSwayamCode/chitrakaar/domain"
	"github.com/rs/zerolog/log"
)

func (r *Room) handleJoinRequest(req roomJoinRequest) {
	req.errChan <- r.admit(req.player)
}

func (r *Room) admit(p *Player) error {
	if len(r.players) >= r.maxPlayers {
		return ErrRoomFull
	}
	if r.phase != PHASE_WAITING {
		return ErrGameInProgress
	}

	p.setRoom(r)
	r.players = append(r.players, p)
	r.touch()

	event := EVENT_ROOM_JOINED
	if len(r.players) == 1 {
		event = EVENT_ROOM_CREATED
	}
	r.sendTo(p, ServerEvent{Event: event, Data: roomJoinedPayload{
		Code:        r.code,
		Mode:        r.mode.Name,
		IsPublic:    r.isPublic,
		TotalRounds: r.totalRounds,
		Players:     r.playerInfos(),
	}})
	r.broadcastExcept(ServerEvent{Event: EVENT_PLAYER_JOINED, Data: playerMovedPayload{
		PlayerName: p.name,
		Players:    r.playerInfos(),
	}}, p)
	r.publishDescription()

	if r.isPublic && len(r.players) >= AUTO_START_PLAYERS && !r.autoStartTimer.active() {
		r.broadcast(ServerEvent{Event: EVENT_AUTO_STARTING, Data: autoStartingPayload{Countdown: int(AUTO_START_DELAY.Seconds())}})
		r.autoStartTimer = r.schedule(AUTO_START_DELAY, r.autoStart)
	}
	return nil
}

func (r *Room) autoStart() {
	r.autoStartTimer = nil
	if r.phase != PHASE_WAITING || len(r.players) < MIN_PLAYERS {
		return
	}
	r.startGame()
}

func (r *Room) handleRemovePlayer(p *Player) {
	idx := r.indexOf(p)
	if idx < 0 {
		return
	}
	drawerLeft := r.removePlayer(idx)
	r.touch()

	if len(r.players) == 0 {
		r.cancelAllTimers()
		if r.lobby != nil {
			r.lobby.RemoveRoom(r.code)
		}
		r.closeOnce()
		return
	}

	r.broadcast(ServerEvent{Event: EVENT_PLAYER_LEFT, Data: playerMovedPayload{
		PlayerName: p.name,
		Players:    r.playerInfos(),
	}})
	r.publishDescription()

	midGame := r.phase == PHASE_CHOOSING_WORD || r.phase == PHASE_PLAYING || r.phase == PHASE_ROUND_END
	if midGame && len(r.players) < MIN_PLAYERS {
		r.abandonGame()
		return
	}

	switch {
	case drawerLeft && (r.phase == PHASE_CHOOSING_WORD || r.phase == PHASE_PLAYING):
		r.cancelTurnTimers()
		r.beginTurnOrFinish()
	case drawerLeft && r.phase == PHASE_ROUND_END:
		// The next drawer already sits at drawerIndex, unless the slot
		// fell off the end and the round has to wrap.
		if r.drawerIndex >= len(r.players) {
			r.drawerIndex = len(r.players) - 1
			r.drawerVacated = false
		} else {
			r.drawerVacated = true
		}
	case r.phase == PHASE_PLAYING && len(r.guessed) >= len(r.players)-1:
		r.endTurn()
	}
}

// removePlayer is the only place that shrinks the player list. The drawer
// index keeps pointing at the same player unless that player is the one
// leaving, which is reported to the caller.
func (r *Room) removePlayer(idx int) (drawerLeft bool) {
	leaving := r.players[idx]
	r.players = slices.Delete(r.players, idx, idx+1)
	delete(r.guessed, leaving.id)
	leaving.setRoom(nil)

	switch {
	case idx < r.drawerIndex:
		r.drawerIndex--
	case idx == r.drawerIndex:
		drawerLeft = true
	}
	if r.phase == PHASE_WAITING || r.phase == PHASE_GAME_OVER {
		r.drawerIndex = 0
		drawerLeft = false
	}
	return drawerLeft
}

func (r *Room) handleEnvelope(env ClientPacketEnvelope) {
	from := env.from
	if r.indexOf(from) < 0 {
		return
	}

	var err error
	switch env.message.Action {
	case ACTION_START_GAME:
		err = r.handleStartGame(from)
	case ACTION_UPDATE_ROUNDS:
		var data updateRoundsData
		if err = decode(env.message, &data); err == nil {
			err = r.handleUpdateRounds(from, data.Rounds)
		}
	case ACTION_WORD_CHOSEN:
		var data wordChosenData
		if err = decode(env.message, &data); err == nil {
			r.handleWordChosen(from, data.Word)
		}
	case ACTION_DRAW:
		var stroke domain.Stroke
		if err = decode(env.message, &stroke); err == nil {
			err = r.handleDraw(from, stroke)
		}
	case ACTION_CLEAR_CANVAS:
		r.handleClearCanvas(from)
	case ACTION_CHAT_MESSAGE:
		var data chatMessageData
		if err = decode(env.message, &data); err == nil {
			r.handleChat(from, data.Message)
		}
	default:
		err = ErrUnknownAction
	}

	switch {
	case err == nil:
	case errorsIsAny(err, ErrMalformedAction, ErrUnknownAction):
		log.Debug().Err(err).Str("room", r.code).Str("action", env.message.Action).Msg("dropping action")
	default:
		r.sendTo(from, errorEvent(err))
	}
}

func decode(msg ClientMessage, v any) error {
	if len(msg.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedAction, err)
	}
	return nil
}

func (r *Room) handleStartGame(from *Player) error {
	if from != r.host() {
		return ErrNotHost
	}
	if r.phase != PHASE_WAITING {
		return nil
	}
	if len(r.players) < MIN_PLAYERS {
		return ErrNotEnoughPlayers
	}
	r.startGame()
	return nil
}

func (r *Room) handleUpdateRounds(from *Player, rounds int) error {
	if from != r.host() || r.phase != PHASE_WAITING {
		return nil
	}
	if rounds < MIN_ROUNDS || rounds > MAX_ROUNDS {
		return ErrInvalidRounds
	}
	r.totalRounds = rounds
	r.touch()
	r.broadcast(ServerEvent{Event: EVENT_ROUNDS_UPDATED, Data: roundsUpdatedPayload{TotalRounds: rounds}})
	return nil
}

func (r *Room) handleWordChosen(from *Player, word string) {
	if r.phase != PHASE_CHOOSING_WORD || from != r.drawer() {
		return
	}
	if !slices.Contains(r.wordChoices, word) {
		return
	}
	r.selectWord(word)
}

func (r *Room) handleDraw(from *Player, stroke domain.Stroke) error {
	if r.phase != PHASE_PLAYING || from != r.drawer() {
		return nil
	}
	if err := validateStroke(stroke); err != nil {
		return err
	}
	r.drawHistory = append(r.drawHistory, stroke)
	if len(r.drawHistory) > GALLERY_MAX_STROKES {
		r.drawHistory = slices.Clone(r.drawHistory[len(r.drawHistory)-GALLERY_MAX_STROKES:])
	}
	r.broadcastExcept(drawEvent(stroke), from)
	return nil
}

func (r *Room) handleClearCanvas(from *Player) {
	if from != r.drawer() {
		return
	}
	r.drawHistory = nil
	r.broadcastExcept(ServerEvent{Event: EVENT_CLEAR_CANVAS}, from)
}

func (r *Room) handleChat(from *Player, raw string) {
	msg := sanitizeMessage(raw)
	if msg == "" {
		return
	}
	r.touch()

	if r.phase == PHASE_PLAYING {
		drawer := r.drawer()
		if from == drawer {
			return
		}
		if r.guessed[from.id] {
			ev := ServerEvent{Event: EVENT_CHAT_MESSAGE, Data: chatMessagePayload{
				PlayerName: from.name, Message: msg, Type: CHAT_GUESSED,
			}}
			for _, p := range r.players {
				if p == drawer || r.guessed[p.id] {
					r.sendTo(p, ev)
				}
			}
			return
		}

		switch evaluateGuess(msg, r.currentWord) {
		case GUESS_CORRECT:
			r.acceptGuess(from)
			return
		case GUESS_CLOSE:
			r.sendTo(from, ServerEvent{Event: EVENT_CHAT_MESSAGE, Data: chatMessagePayload{
				PlayerName: HINT_SENDER_NAME,
				Message:    fmt.Sprintf(`"%s" is very close!`, msg),
				Type:       CHAT_CLOSE_GUESS,
			}})
			return
		}
	}

	r.broadcast(ServerEvent{Event: EVENT_CHAT_MESSAGE, Data: chatMessagePayload{
		PlayerName: from.name, Message: msg, Type: CHAT_NORMAL,
	}})
}

func (r *Room) acceptGuess(p *Player) {
	score := guessScore(r.turnTimeLeft, r.turnTime)
	p.score += score
	r.guessed[p.id] = true

	r.broadcast(ServerEvent{Event: EVENT_CORRECT_GUESS, Data: correctGuessPayload{
		PlayerName: p.name,
		PlayerId:   p.id,
		Score:      score,
		Scores:     r.scoreInfos(),
	}})

	if len(r.guessed) >= len(r.players)-1 {
		r.endTurn()
	}
}
