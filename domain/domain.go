package domain

import "time"

// Stroke is one relayed canvas operation. Lines use X1..Y2 and Size, fills
// use X and Y. Coordinates are normalised to the 0..1 canvas square.
type Stroke struct {
	Type  string  `json:"type" bson:"type"`
	X1    float64 `json:"x1" bson:"x1"`
	Y1    float64 `json:"y1" bson:"y1"`
	X2    float64 `json:"x2" bson:"x2"`
	Y2    float64 `json:"y2" bson:"y2"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	Color string  `json:"color" bson:"color"`
	Size  float64 `json:"size,omitempty" bson:"size,omitempty"`
}

type Drawing struct {
	Word       string    `json:"word" bson:"word"`
	DrawerName string    `json:"drawerName" bson:"drawerName"`
	Strokes    []Stroke  `json:"strokes" bson:"strokes"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

type ScoreEntry struct {
	DisplayName string    `json:"displayName" bson:"displayName"`
	Score       int       `json:"score" bson:"score"`
	Mode        string    `json:"mode" bson:"mode"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
