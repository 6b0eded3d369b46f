package words

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

//go:embed words.txt
var defaultBank string

var ErrEmptyBank = errors.New("empty-word-bank")

// modeCategories maps a game mode to the categories it draws from.
// A mode missing from the map (classic, speed) uses every category.
var modeCategories = map[string][]string{
	"bollywood": {"bollywood", "personalities", "memes"},
	"cricket":   {"cricket", "sports", "personalities"},
	"food":      {"food", "dailyLife"},
	"festivals": {"festivals", "dailyLife"},
	"travel":    {"places", "monuments"},
	"culture":   {"dailyLife", "clothes", "slang", "music"},
	"history":   {"monuments", "personalities"},
	"nature":    {"animals", "nature"},
	"memes":     {"memes", "personalities", "bollywood"},
	"hard":      {"monuments", "personalities", "places"},
}

type Bank struct {
	categories map[string][]string
	order      []string
}

// Load parses a word bank where "# name" lines open a category and every
// other non-blank line is a word of the current category.
func Load(data string) (*Bank, error) {
	bank := &Bank{categories: map[string][]string{}}
	category := ""

	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			category = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if _, ok := bank.categories[category]; !ok {
				bank.order = append(bank.order, category)
				bank.categories[category] = nil
			}
		default:
			if category == "" {
				return nil, fmt.Errorf("word %q outside of any category", line)
			}
			bank.categories[category] = append(bank.categories[category], line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(bank.order) == 0 {
		return nil, ErrEmptyBank
	}
	return bank, nil
}

// Default returns the bank embedded in the binary.
func Default() *Bank {
	bank, err := Load(defaultBank)
	if err != nil {
		panic(fmt.Sprintf("embedded word bank is broken: %v", err))
	}
	return bank
}

func (b *Bank) Categories() []string {
	return append([]string(nil), b.order...)
}

// Pool flattens the categories of a mode into a duplicate-free list.
func (b *Bank) Pool(mode string) []string {
	cats, filtered := modeCategories[mode]
	if !filtered {
		cats = b.order
	}

	seen := make(map[string]struct{})
	pool := make([]string, 0, 256)
	for _, cat := range cats {
		for _, w := range b.categories[cat] {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			pool = append(pool, w)
		}
	}
	return pool
}

// Generate returns up to count distinct random words of the mode's pool
// that are not in exclude. Fewer words come back when the pool runs dry.
func (b *Bank) Generate(count int, mode string, exclude map[string]struct{}) []string {
	if count <= 0 {
		return []string{}
	}
	pool := b.Pool(mode)
	candidates := pool[:0]
	for _, w := range pool {
		if _, used := exclude[w]; !used {
			candidates = append(candidates, w)
		}
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return append([]string(nil), candidates...)
}
