package game

import (
	"strings"
	"unicode"
)

// hintSchedule returns the remaining-time thresholds, in seconds and in
// descending order, at which one more letter of word is disclosed.
func hintSchedule(word string, turnTime int) []float64 {
	var fractions []float64
	switch n := letterCount(word); {
	case n <= 4:
		fractions = []float64{0.5}
	case n <= 8:
		fractions = []float64{0.65, 0.35}
	default:
		fractions = []float64{0.7, 0.45, 0.2}
	}
	thresholds := make([]float64, len(fractions))
	for i, f := range fractions {
		thresholds[i] = f * float64(turnTime)
	}
	return thresholds
}

func letterCount(word string) int {
	n := 0
	for _, r := range word {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// maskWord renders word with every unrevealed letter as "_". Letters are
// separated by one space and words by two.
func maskWord(word string, revealed map[int]bool) string {
	var b strings.Builder
	gap := false
	for i, r := range []rune(word) {
		if unicode.IsSpace(r) {
			gap = b.Len() > 0
			continue
		}
		if b.Len() > 0 {
			if gap {
				b.WriteString("  ")
			} else {
				b.WriteByte(' ')
			}
		}
		gap = false
		if revealed[i] {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// revealLetter discloses one random hidden letter position of word. At
// least one letter always stays hidden.
func revealLetter(word string, revealed map[int]bool, intn func(int) int) bool {
	if len(revealed) >= letterCount(word)-1 {
		return false
	}
	hidden := make([]int, 0, len(word))
	for i, r := range []rune(word) {
		if !unicode.IsSpace(r) && !revealed[i] {
			hidden = append(hidden, i)
		}
	}
	if len(hidden) == 0 {
		return false
	}
	revealed[hidden[intn(len(hidden))]] = true
	return true
}

// dueHints counts the thresholds crossed at timeLeft that have not produced
// a reveal yet.
func dueHints(thresholds []float64, given, timeLeft int) int {
	due := 0
	for i := given; i < len(thresholds); i++ {
		if float64(timeLeft) <= thresholds[i] {
			due++
		}
	}
	return due
}
