// Package ranker extends the Elo rating system with rating divisions, a
// hidden onboarding division for new players and a rating floor.
package ranker

import (
	"math"

	"github.com/pkg/errors"
)

// onboardingMatches is the number of matches played in the Hidden division.
const onboardingMatches = 3

// bonus is reserved for promotion bonuses and is always 1.
const bonus = 1.0

// Standings looks up the current stats of a player.
type Standings interface {
	Stats(user string) (PlayerStats, error)
}

// StandingsFunc adapts a function to the Standings interface.
type StandingsFunc func(user string) (PlayerStats, error)

func (f StandingsFunc) Stats(user string) (PlayerStats, error) { return f(user) }

// Config configures a Ranker.
type Config struct {
	// Floor is the lowest rating an adjustment can produce.
	Floor Rating
	// Initial is the rating given to new players.
	Initial   Rating
	Divisions []Division
	// Logf, if set, receives the computed adjustments.
	Logf func(format string, args ...interface{})
}

// DefaultConfig returns the default floor, initial rating and divisions.
func DefaultConfig() Config {
	return Config{
		Floor:   950,
		Initial: 1000,
		Divisions: []Division{
			NewDivision("C", 0, 48),
			NewDivision("B", 1000, 32),
			NewDivision("A", 1050, 24),
			NewDivision("S", 1100, 16),
		},
	}
}

// Overrides holds the optional Config fields a caller may replace.
type Overrides struct {
	Floor     *Rating    `json:"floor"`
	Initial   *Rating    `json:"initial"`
	Divisions []Division `json:"divisions"`
}

// Merge returns c with every field set in o replaced.
func (c Config) Merge(o Overrides) Config {
	if o.Floor != nil {
		c.Floor = *o.Floor
	}
	if o.Initial != nil {
		c.Initial = *o.Initial
	}
	if len(o.Divisions) > 0 {
		c.Divisions = o.Divisions
	}

	return c
}

// Ranker computes rating adjustments. It is immutable and safe for
// concurrent use, but callers must serialize adjustments that read and
// write the same player.
type Ranker struct {
	floor     Rating
	initial   Rating
	divisions Divisions
	logf      func(format string, args ...interface{})
}

func New(c Config) (*Ranker, error) {
	if math.IsNaN(float64(c.Floor)) || math.IsNaN(float64(c.Initial)) {
		return nil, ConfigurationError{Reason: "floor and initial rating must be numbers"}
	}

	divisions, err := NewDivisions(c.Divisions...)
	if err != nil {
		return nil, err
	}

	logf := c.Logf
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	return &Ranker{
		floor:     c.Floor,
		initial:   c.Initial,
		divisions: divisions,
		logf:      logf,
	}, nil
}

func (r *Ranker) Floor() Rating   { return r.floor }
func (r *Ranker) Initial() Rating { return r.initial }

// Divisions returns a copy of the division table.
func (r *Ranker) Divisions() Divisions {
	d := make(Divisions, len(r.divisions))
	copy(d, r.divisions)
	return d
}

// NewStats returns the stats of a newly registered player.
func (r *Ranker) NewStats(user string) PlayerStats {
	return PlayerStats{User: user, Rating: r.initial}
}

// Division returns the division the next adjustment of stats will use.
func (r *Ranker) Division(stats PlayerStats) Division {
	if stats.Onboarding() {
		return HiddenDivision()
	}

	return r.divisions.Resolve(stats.Rating)
}

// Adjust returns the stats of the player after match. The opponent's rating
// is read from standings; only the first opponent is considered.
func (r *Ranker) Adjust(stats PlayerStats, match Match, standings Standings) (PlayerStats, error) {
	if !match.HasUser(stats.User) {
		return PlayerStats{}, InvalidMatchError{User: stats.User, Players: match.Opponents(stats.User)}
	}

	division := r.Division(stats)

	opponents := match.Opponents(stats.User)
	if len(opponents) == 0 {
		return PlayerStats{}, InvalidMatchError{User: stats.User, Players: []string{stats.User}}
	}
	opponent, err := standings.Stats(opponents[0])
	if err != nil {
		return PlayerStats{}, errors.Wrapf(err, "unable to get stats for opponent %s", opponents[0])
	}

	var adjustment Rating
	var points float64
	if match.IsWinner(stats.User) {
		stats = stats.IncrementWins()
		adjustment = Rating(math.Ceil(Adjust(stats.Rating, opponent.Rating, Win, division.K) * division.Gain * bonus))
		if len(stats.Matches) > onboardingMatches {
			points = float64(adjustment)
		}
	} else {
		adjustment = Rating(math.Ceil(Adjust(stats.Rating, opponent.Rating, Loss, division.K) * division.Loss * bonus))
	}

	if stats.Rating+adjustment < r.floor {
		adjustment = r.floor - stats.Rating
		points = 0
	}

	r.logf("rating adjustment for %s: %v (division %s, opponent %s at %v)", stats.User, adjustment, division.Name, opponent.User, opponent.Rating)

	return stats.AdjustPoints(points).AdjustRating(adjustment), nil
}
