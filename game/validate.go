package game

import (
	"math"
	"regexp"
	"strings"

	"github.com/doSwayamCode/chitrakaar/domain"
)

const (
	MAX_NAME_LENGTH    = 20
	MAX_MESSAGE_LENGTH = 200
	MAX_STROKE_SIZE    = 50
)

var (
	colorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)
	nameStripper = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")
)

func sanitizeName(name string) string {
	return truncate(nameStripper.Replace(strings.TrimSpace(name)), MAX_NAME_LENGTH)
}

func sanitizeMessage(msg string) string {
	return truncate(strings.TrimSpace(msg), MAX_MESSAGE_LENGTH)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func normalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validAvatar accepts any JSON number naming a known avatar and maps the
// rest to avatar 0.
func validAvatar(v any) int {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < 0 || int(f) >= len(avatars) {
		return 0
	}
	return int(f)
}

// parseRounds treats 0 as "use the mode default".
func parseRounds(rounds int, mode Mode) (int, error) {
	if rounds == 0 {
		return mode.Rounds, nil
	}
	if rounds < MIN_ROUNDS || rounds > MAX_ROUNDS {
		return 0, ErrInvalidRounds
	}
	return rounds, nil
}

func validateStroke(s domain.Stroke) error {
	if !colorPattern.MatchString(s.Color) {
		return ErrInvalidStroke
	}
	var coords []float64
	switch s.Type {
	case "line":
		if !(s.Size > 0 && s.Size <= MAX_STROKE_SIZE) {
			return ErrInvalidStroke
		}
		coords = []float64{s.X1, s.Y1, s.X2, s.Y2}
	case "fill":
		coords = []float64{s.X, s.Y}
	default:
		return ErrInvalidStroke
	}
	for _, c := range coords {
		if !(c >= 0 && c <= 1) {
			return ErrInvalidStroke
		}
	}
	return nil
}
