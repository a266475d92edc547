package stats

// Card is one summary tile.
type Card struct {
	Label string
	Value int
}

// Cards returns the submission cards in display order.
func Cards(s UserStats) []Card {
	return []Card{
		{Label: "Overall Submissions", Value: s.Submissions.All},
		{Label: "Easy Submissions", Value: s.Submissions.Easy},
		{Label: "Medium Submissions", Value: s.Submissions.Medium},
		{Label: "Hard Submissions", Value: s.Submissions.Hard},
	}
}
