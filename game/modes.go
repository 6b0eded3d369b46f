package game

type Mode struct {
	Name     string `json:"-"`
	Label    string `json:"label"`
	TurnTime int    `json:"turnTime"`
	Rounds   int    `json:"rounds"`
}

type Avatar struct {
	Id    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

const DEFAULT_MODE = "classic"

var modes = map[string]Mode{
	"classic":   {Name: "classic", Label: "Classic", TurnTime: 80, Rounds: 3},
	"bollywood": {Name: "bollywood", Label: "Bollywood", TurnTime: 80, Rounds: 3},
	"cricket":   {Name: "cricket", Label: "Cricket", TurnTime: 80, Rounds: 3},
	"food":      {Name: "food", Label: "Food", TurnTime: 80, Rounds: 3},
	"speed":     {Name: "speed", Label: "Speed", TurnTime: 30, Rounds: 4},
}

var avatars = []Avatar{
	{0, "Turban", "#ff6b2b"},
	{1, "Saree", "#e74c3c"},
	{2, "Kurta", "#3498db"},
	{3, "Sherwani", "#9b59b6"},
	{4, "Dhoti", "#f39c12"},
	{5, "Lehenga", "#e91e63"},
	{6, "Pagdi", "#00c97b"},
	{7, "Dupatta", "#1abc9c"},
	{8, "Cap", "#2ecc71"},
	{9, "Bindi", "#ff4f9a"},
	{10, "Lungi", "#f1c40f"},
	{11, "Topi", "#95a5a6"},
}

// ModeByName falls back to classic for unknown names.
func ModeByName(name string) Mode {
	if m, ok := modes[name]; ok {
		return m
	}
	return modes[DEFAULT_MODE]
}

func Modes() map[string]Mode {
	out := make(map[string]Mode, len(modes))
	for k, v := range modes {
		out[k] = v
	}
	return out
}

func Avatars() []Avatar {
	return append([]Avatar(nil), avatars...)
}
