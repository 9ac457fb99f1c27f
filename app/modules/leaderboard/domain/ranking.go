package leaderboarddomain

import (
	"errors"
	"sort"
	"time"
)

// ScoreWeights configures the activity score.
type ScoreWeights struct {
	Reports     int `yaml:"reports" json:"reports"`
	Community   int `yaml:"community" json:"community"`
	Simulations int `yaml:"simulations" json:"simulations"`

	// SimulationCap bounds how many simulations contribute to the score.
	// 0 leaves them uncapped.
	SimulationCap int `yaml:"simulation_cap" json:"simulation_cap"`
}

// DefaultScoreWeights returns reports 15, community 10, simulations 5, uncapped.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Reports: 15, Community: 10, Simulations: 5}
}

var ErrInvalidWeights = errors.New("score weights must not be negative")

// Validate rejects negative weights and caps.
func (w ScoreWeights) Validate() error {
	if w.Reports < 0 || w.Community < 0 || w.Simulations < 0 || w.SimulationCap < 0 {
		return ErrInvalidWeights
	}
	return nil
}

// ActivityCounts are the raw tallies a score is computed from.
type ActivityCounts struct {
	Reports     int `json:"reports"`
	Community   int `json:"community"`
	Simulations int `json:"simulations"`
}

// ActivityScore returns reports*W_r + community*W_c + simulations*W_s.
func ActivityScore(c ActivityCounts, w ScoreWeights) int {
	sims := c.Simulations
	if w.SimulationCap > 0 && sims > w.SimulationCap {
		sims = w.SimulationCap
	}
	return c.Reports*w.Reports + c.Community*w.Community + sims*w.Simulations
}

// RankInput is one user's data going into a ranking.
type RankInput struct {
	UserID    string
	Counts    ActivityCounts
	CreatedAt time.Time
}

// LeaderboardEntry is a computed leaderboard row.
type LeaderboardEntry struct {
	Rank          int            `json:"rank"`
	UserID        string         `json:"user_id"`
	RawCounts     ActivityCounts `json:"raw_counts"`
	TotalScore    int            `json:"total_score"`
	IsCurrentUser bool           `json:"is_current_user"`
}

// RankEntries scores and orders users. Higher scores rank first; equal scores
// go to the user who started earlier, then to the lower user ID. Ranks run
// 1..n without gaps.
func RankEntries(inputs []RankInput, w ScoreWeights, currentUserID string) []LeaderboardEntry {
	type scored struct {
		in    RankInput
		score int
	}
	rows := make([]scored, len(inputs))
	for i, in := range inputs {
		rows[i] = scored{in: in, score: ActivityScore(in.Counts, w)}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.in.CreatedAt.Equal(b.in.CreatedAt) {
			return a.in.CreatedAt.Before(b.in.CreatedAt)
		}
		return a.in.UserID < b.in.UserID
	})

	entries := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		entries[i] = LeaderboardEntry{
			Rank:          i + 1,
			UserID:        r.in.UserID,
			RawCounts:     r.in.Counts,
			TotalScore:    r.score,
			IsCurrentUser: currentUserID != "" && r.in.UserID == currentUserID,
		}
	}
	return entries
}
