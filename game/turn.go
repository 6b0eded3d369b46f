package game

import (
	"context"
	"errors"
	"slices"
	"unicode/utf8"

	"github.com/doSwayamCode/chitrakaar/domain"
	"github.com/rs/zerolog/log"
)

func (r *Room) startGame() {
	r.autoStartTimer.cancel()
	r.autoStartTimer = nil

	r.round = 0
	r.drawerIndex = 0
	r.drawerVacated = false
	r.usedWords = make(map[string]struct{})
	for _, p := range r.players {
		p.score = 0
	}
	r.touch()
	if r.lobby != nil {
		r.lobby.GameStarted()
	}
	r.setPhase(PHASE_CHOOSING_WORD)

	drawer := r.drawer()
	r.broadcast(ServerEvent{Event: EVENT_GAME_STARTED, Data: gameStartedPayload{
		Round:       1,
		TotalRounds: r.totalRounds,
		DrawerName:  drawer.name,
		DrawerId:    drawer.id,
		Mode:        r.mode.Name,
		TurnTime:    r.turnTime,
	}})
	log.Info().Str("room", r.code).Int("players", len(r.players)).Msg("game started")

	r.startWordChoice()
}

func (r *Room) startWordChoice() {
	r.cancelTurnTimers()
	r.drawHistory = nil
	r.guessed = make(map[string]bool)
	r.revealed = make(map[int]bool)
	r.hintThresholds = nil
	r.hintsGiven = 0
	r.currentWord = ""

	drawer := r.drawer()
	if drawer == nil {
		return
	}

	choices := r.words.Generate(WORD_CHOICES_COUNT, r.mode.Name, r.usedWords)
	if len(choices) == 0 {
		log.Warn().Str("room", r.code).Str("mode", r.mode.Name).Msg("word pool exhausted, ending game")
		r.endGame()
		return
	}
	r.wordChoices = choices
	if r.phase != PHASE_CHOOSING_WORD {
		r.setPhase(PHASE_CHOOSING_WORD)
	}

	r.sendTo(drawer, ServerEvent{Event: EVENT_CHOOSE_WORD, Data: chooseWordPayload{Words: slices.Clone(choices)}})
	r.broadcast(ServerEvent{Event: EVENT_DRAWER_CHOOSING, Data: drawerPayload{
		DrawerName: drawer.name,
		DrawerId:   drawer.id,
	}})

	r.wordTimer = r.schedule(WORD_CHOICE_TIMEOUT, r.onWordChoiceTimeout)
}

func (r *Room) onWordChoiceTimeout() {
	r.wordTimer = nil
	if r.phase != PHASE_CHOOSING_WORD || len(r.wordChoices) == 0 {
		return
	}
	r.selectWord(r.wordChoices[r.intn(len(r.wordChoices))])
}

func (r *Room) selectWord(word string) {
	r.wordTimer.cancel()
	r.wordTimer = nil

	r.currentWord = word
	r.usedWords[word] = struct{}{}
	r.revealed = make(map[int]bool)
	r.hintsGiven = 0
	r.hintThresholds = hintSchedule(word, r.turnTime)
	r.turnTimeLeft = r.turnTime
	r.setPhase(PHASE_PLAYING)

	drawer := r.drawer()
	r.sendTo(drawer, ServerEvent{Event: EVENT_WORD_SELECTED, Data: wordSelectedPayload{Word: word, IsDrawer: true}})
	masked := ServerEvent{Event: EVENT_WORD_SELECTED, Data: wordSelectedPayload{
		Word:       maskWord(word, r.revealed),
		IsDrawer:   false,
		WordLength: utf8.RuneCountInString(word),
	}}
	r.broadcastExcept(masked, drawer)
	r.broadcast(ServerEvent{Event: EVENT_CLEAR_CANVAS})

	r.nextTickAt = r.clock.Now()
	r.scheduleTurnTick()
}

// scheduleTurnTick arms the next tick one TURN_TICK after the previous
// deadline, so a late tick does not push back the ones after it.
func (r *Room) scheduleTurnTick() {
	r.nextTickAt = r.nextTickAt.Add(TURN_TICK)
	delay := max(r.nextTickAt.Sub(r.clock.Now()), 0)
	r.turnTimer = r.schedule(delay, r.onTurnTick)
}

func (r *Room) onTurnTick() {
	r.turnTimer = nil
	if r.phase != PHASE_PLAYING {
		return
	}

	r.turnTimeLeft--
	r.broadcast(ServerEvent{Event: EVENT_TIMER_UPDATE, Data: timerUpdatePayload{SecondsLeft: r.turnTimeLeft}})
	if r.turnTimeLeft <= 0 {
		r.endTurn()
		return
	}
	r.revealDueHints()
	r.scheduleTurnTick()
}

func (r *Room) revealDueHints() {
	due := dueHints(r.hintThresholds, r.hintsGiven, r.turnTimeLeft)
	if due == 0 {
		return
	}
	revealed := false
	for range due {
		r.hintsGiven++
		if revealLetter(r.currentWord, r.revealed, r.intn) {
			revealed = true
		}
	}
	if !revealed {
		return
	}

	ev := ServerEvent{Event: EVENT_HINT_REVEALED, Data: hintRevealedPayload{MaskedHint: maskWord(r.currentWord, r.revealed)}}
	drawer := r.drawer()
	for _, p := range r.players {
		if p != drawer && !r.guessed[p.id] {
			r.sendTo(p, ev)
		}
	}
}

func (r *Room) endTurn() {
	r.turnTimer.cancel()
	r.turnTimer = nil
	r.setPhase(PHASE_ROUND_END)

	drawer := r.drawer()
	if n := len(r.guessed); n > 0 && drawer != nil {
		drawer.score += drawerScore(n)
	}

	r.broadcast(ServerEvent{Event: EVENT_TURN_END, Data: turnEndPayload{
		Word:   r.currentWord,
		Scores: r.scoreInfos(),
	}})
	r.saveDrawing(drawer)

	r.phaseTimer = r.schedule(ROUND_END_DELAY, r.nextTurn)
}

func (r *Room) nextTurn() {
	r.phaseTimer = nil
	if r.phase != PHASE_ROUND_END {
		return
	}
	if r.drawerVacated {
		r.drawerVacated = false
	} else {
		r.drawerIndex++
	}
	r.beginTurnOrFinish()
}

// beginTurnOrFinish starts the turn of whoever sits at drawerIndex, wrapping
// into the next round when the index ran past the last player.
func (r *Room) beginTurnOrFinish() {
	if r.drawerIndex >= len(r.players) {
		r.drawerIndex = 0
		r.round++
		if r.round >= r.totalRounds {
			r.endGame()
			return
		}
	}

	drawer := r.drawer()
	r.broadcast(ServerEvent{Event: EVENT_NEW_TURN, Data: newTurnPayload{
		Round:       r.round + 1,
		TotalRounds: r.totalRounds,
		DrawerName:  drawer.name,
		DrawerId:    drawer.id,
	}})
	r.startWordChoice()
}

func (r *Room) endGame() {
	r.cancelAllTimers()
	r.setPhase(PHASE_GAME_OVER)

	standings := slices.Clone(r.players)
	slices.SortStableFunc(standings, func(a, b *Player) int { return b.score - a.score })

	payload := gameOverPayload{Players: make([]ScoreInfo, len(standings))}
	for i, p := range standings {
		payload.Players[i] = p.scoreInfo()
	}
	if len(standings) > 0 {
		payload.Winner = standings[0].scoreInfo()
	}
	r.broadcast(ServerEvent{Event: EVENT_GAME_OVER, Data: payload})
	log.Info().Str("room", r.code).Str("winner", payload.Winner.Name).Msg("game over")

	r.recordScores()
	r.phaseTimer = r.schedule(GAME_OVER_DELAY, r.resetAfterGameOver)
}

func (r *Room) resetAfterGameOver() {
	r.phaseTimer = nil
	if r.phase != PHASE_GAME_OVER {
		return
	}
	r.resetToWaiting()
	r.broadcast(ServerEvent{Event: EVENT_ROOM_UPDATE, Data: roomUpdatePayload{
		Players: r.playerInfos(),
		State:   r.phase,
	}})
}

func (r *Room) abandonGame() {
	r.cancelAllTimers()
	r.resetToWaiting()
	r.broadcast(ServerEvent{Event: EVENT_GAME_ENDED, Data: messagePayload{Message: NOT_ENOUGH_NOTICE}})
	log.Info().Str("room", r.code).Msg("game abandoned")
}

func (r *Room) resetToWaiting() {
	r.round = 0
	r.drawerIndex = 0
	r.drawerVacated = false
	r.currentWord = ""
	r.wordChoices = nil
	r.usedWords = make(map[string]struct{})
	r.guessed = make(map[string]bool)
	r.revealed = make(map[int]bool)
	r.hintThresholds = nil
	r.hintsGiven = 0
	r.drawHistory = nil
	for _, p := range r.players {
		p.score = 0
	}
	r.touch()
	r.setPhase(PHASE_WAITING)
}

func (r *Room) saveDrawing(drawer *Player) {
	if r.gallery == nil || drawer == nil || len(r.drawHistory) < GALLERY_MIN_STROKES {
		return
	}
	drawing := domain.Drawing{
		Word:       r.currentWord,
		DrawerName: drawer.name,
		Strokes:    slices.Clone(r.drawHistory),
		CreatedAt:  r.clock.Now(),
	}
	gallery := r.gallery
	r.persist("save drawing", func(ctx context.Context) error {
		return gallery.SaveDrawing(ctx, drawing)
	})
}

func (r *Room) recordScores() {
	if r.scores == nil || len(r.players) == 0 {
		return
	}
	now := r.clock.Now()
	entries := make([]domain.ScoreEntry, 0, len(r.players))
	for _, p := range r.players {
		entries = append(entries, domain.ScoreEntry{
			DisplayName: p.name,
			Score:       min(max(p.score, 0), MAX_GUEST_SCORE),
			Mode:        r.mode.Name,
			CreatedAt:   now,
		})
	}
	scores := r.scores
	r.persist("record scores", func(ctx context.Context) error {
		var errs []error
		for _, e := range entries {
			if err := scores.SaveGuestScore(ctx, e); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
