package game

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	NEAR_MISS_MIN_LENGTH   = 4
	NEAR_MISS_MAX_DISTANCE = 2
)

type guessVerdict int

const (
	GUESS_WRONG guessVerdict = iota
	GUESS_CLOSE
	GUESS_CORRECT
)

// guessScore decays linearly from 300 points with the full turn left to 100
// points at zero.
func guessScore(timeLeft, turnTime int) int {
	if turnTime <= 0 {
		return 100
	}
	timeLeft = min(max(timeLeft, 0), turnTime)
	return int(math.Round(100 + 200*float64(timeLeft)/float64(turnTime)))
}

func drawerScore(correctGuessers int) int {
	return int(math.Round(float64(correctGuessers) * 50))
}

func evaluateGuess(guess, word string) guessVerdict {
	g := strings.ToLower(guess)
	w := strings.ToLower(word)
	if g == w {
		return GUESS_CORRECT
	}
	if utf8.RuneCountInString(w) >= NEAR_MISS_MIN_LENGTH &&
		levenshtein.ComputeDistance(g, w) <= NEAR_MISS_MAX_DISTANCE {
		return GUESS_CLOSE
	}
	return GUESS_WRONG
}
