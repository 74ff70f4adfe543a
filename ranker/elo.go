package ranker

import "math"

// deviation is the rating gap that gives the stronger player 10-to-1 odds.
const deviation = 400

// Rating is a player's skill rating.
type Rating float64

// Score is the observed outcome of a match from one player's point of view.
type Score float64

const (
	Loss Score = 0
	Win  Score = 1
)

// eₙ is the expected score of r against m.
func (r Rating) eₙ(m Rating) float64 {
	return 1 / (1 + math.Pow(10, float64(m-r)/deviation))
}

// Expected returns the probability that a player rated r beats a player
// rated opponent.
func Expected(r, opponent Rating) float64 {
	return r.eₙ(opponent)
}

// Adjust returns the raw Elo adjustment for a player rated r who scored s
// against opponent: k * (s - E).
func Adjust(r, opponent Rating, s Score, k float64) float64 {
	return k * (float64(s) - r.eₙ(opponent))
}
