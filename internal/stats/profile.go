package stats

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Response mirrors the upstream GraphQL payload.
type Response struct {
	Data struct {
		AllQuestionsCount CountList    `json:"allQuestionsCount"`
		MatchedUser       *MatchedUser `json:"matchedUser"`
	} `json:"data"`
}

// MatchedUser is the per-user part of the payload; nil when the user
// does not exist.
type MatchedUser struct {
	SubmitStats struct {
		ACSubmissionNum    CountList `json:"acSubmissionNum"`
		TotalSubmissionNum CountList `json:"totalSubmissionNum"`
	} `json:"submitStats"`
}

// TierStats is the solved/total pair of one difficulty tier.
type TierStats struct {
	Solved int
	Total  int
}

// Percent returns solved/total*100, or 0 for an empty tier.
func (t TierStats) Percent() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Solved) / float64(t.Total) * 100
}

// Degrees returns the ring fill angle, 0..360 scaled by solved/total.
func (t TierStats) Degrees() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Solved) / float64(t.Total) * 360
}

// FormatPercent renders a percentage with one decimal, e.g. "20.0%".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// Submissions holds total submission counts per category.
type Submissions struct {
	All    int
	Easy   int
	Medium int
	Hard   int
}

// UserStats is derived from one upstream response and never stored.
type UserStats struct {
	Tiers       map[Difficulty]TierStats
	Submissions Submissions
}

// Tier returns the stats of d; unknown tiers are zero.
func (s UserStats) Tier(d Difficulty) TierStats {
	return s.Tiers[d]
}

// Parse decodes an upstream body and derives UserStats from it.
// Only a body that is not JSON fails; absent sections count as zero.
func Parse(body []byte) (UserStats, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return UserStats{}, fmt.Errorf("decode stats: %w", err)
	}
	return FromResponse(&resp), nil
}

// FromResponse extracts per-tier totals and solved counts by difficulty tag.
func FromResponse(resp *Response) UserStats {
	totals := resp.Data.AllQuestionsCount

	var solved, submitted CountList
	if u := resp.Data.MatchedUser; u != nil {
		solved = u.SubmitStats.ACSubmissionNum
		submitted = u.SubmitStats.TotalSubmissionNum
	}

	s := UserStats{Tiers: make(map[Difficulty]TierStats, len(Tiers))}
	for _, d := range Tiers {
		s.Tiers[d] = TierStats{
			Solved: solved.Lookup(d, FieldCount),
			Total:  totals.Lookup(d, FieldCount),
		}
	}

	s.Submissions = Submissions{
		All:    submitted.Lookup(All, FieldSubmissions),
		Easy:   submitted.Lookup(Easy, FieldSubmissions),
		Medium: submitted.Lookup(Medium, FieldSubmissions),
		Hard:   submitted.Lookup(Hard, FieldSubmissions),
	}
	return s
}
