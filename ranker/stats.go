package ranker

import "time"

// MatchRecord is a processed match as stored in a player's history.
type MatchRecord struct {
	ID       string    `json:"id" db:"id"`
	Winner   string    `json:"winner" db:"winner"`
	Loser    string    `json:"loser" db:"loser"`
	Delta    Rating    `json:"delta" db:"delta"`
	PlayedAt time.Time `json:"played_at" db:"played_at"`
}

// PlayerStats is a player's running record. The methods never modify the
// receiver; they return an updated copy.
type PlayerStats struct {
	User    string        `json:"user"`
	Rating  Rating        `json:"rating"`
	Matches []MatchRecord `json:"matches"`
	Wins    int           `json:"wins"`
	Points  float64       `json:"points"`
}

func (s PlayerStats) IncrementWins() PlayerStats {
	s.Wins++
	return s
}

func (s PlayerStats) AdjustPoints(delta float64) PlayerStats {
	s.Points += delta
	return s
}

func (s PlayerStats) AdjustRating(delta Rating) PlayerStats {
	s.Rating += delta
	return s
}

// RecordMatch appends m to the match history.
func (s PlayerStats) RecordMatch(m MatchRecord) PlayerStats {
	matches := make([]MatchRecord, len(s.Matches), len(s.Matches)+1)
	copy(matches, s.Matches)
	s.Matches = append(matches, m)
	return s
}

// Onboarding reports whether the player is still placed in the hidden
// division.
func (s PlayerStats) Onboarding() bool {
	return len(s.Matches) < onboardingMatches
}
