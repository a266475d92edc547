package stats

import (
	"encoding/json"
	"math"
)

// Difficulty is the upstream problem classification tag.
type Difficulty string

const (
	All    Difficulty = "All"
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Tiers are the difficulties that get a progress indicator, in display order.
var Tiers = []Difficulty{Easy, Medium, Hard}

// DifficultyCount is one entry of an upstream count list.
type DifficultyCount struct {
	Difficulty  Difficulty `json:"difficulty"`
	Count       int        `json:"count"`
	Submissions int        `json:"submissions"`
}

// CountList decodes leniently: entries that fail to decode are dropped and
// negative or fractional numbers are clamped, so one bad entry never fails
// the whole list.
type CountList []DifficultyCount

// UnmarshalJSON implements json.Unmarshaler.
func (l *CountList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// not a list at all; treat as empty
		*l = nil
		return nil
	}

	out := make(CountList, 0, len(raw))
	for _, item := range raw {
		var entry struct {
			Difficulty  string          `json:"difficulty"`
			Count       json.RawMessage `json:"count"`
			Submissions json.RawMessage `json:"submissions"`
		}
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		out = append(out, DifficultyCount{
			Difficulty:  Difficulty(entry.Difficulty),
			Count:       lenientCount(entry.Count),
			Submissions: lenientCount(entry.Submissions),
		})
	}
	*l = out
	return nil
}

// lenientCount turns a JSON number into a non-negative int, zero otherwise.
func lenientCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// Field selects which number of an entry to read.
type Field int

const (
	FieldCount Field = iota
	FieldSubmissions
)

// Lookup finds the entry tagged d and returns the selected field.
// A missing entry yields zero. Position in the list is irrelevant.
func (l CountList) Lookup(d Difficulty, field Field) int {
	for _, item := range l {
		if item.Difficulty != d {
			continue
		}
		if field == FieldSubmissions {
			return item.Submissions
		}
		return item.Count
	}
	return 0
}
