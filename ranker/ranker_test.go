package ranker

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type standings map[string]PlayerStats

func (s standings) Stats(user string) (PlayerStats, error) {
	st, ok := s[user]
	if !ok {
		return PlayerStats{}, fmt.Errorf("no stats for %s", user)
	}

	return st, nil
}

func newRanker(t *testing.T) *Ranker {
	r, err := New(DefaultConfig())
	require.NoError(t, err)
	return r
}

func played(n int) []MatchRecord {
	return make([]MatchRecord, n)
}

func TestNew(t *testing.T) {
	r := newRanker(t)
	assert.Equal(t, Rating(950), r.Floor())
	assert.Equal(t, Rating(1000), r.Initial())
	assert.Len(t, r.Divisions(), 4)
	assert.Equal(t, PlayerStats{User: "u1", Rating: 1000}, r.NewStats("u1"))
}

func TestNewConfigurationErrors(t *testing.T) {
	c := DefaultConfig()
	c.Divisions = nil
	_, err := New(c)
	require.Error(t, err)
	_, ok := errors.Cause(err).(ConfigurationError)
	assert.True(t, ok)

	c = DefaultConfig()
	c.Divisions = append(c.Divisions, NewDivision("X", 2000, 0))
	_, err = New(c)
	require.Error(t, err)
	_, ok = errors.Cause(err).(ConfigurationError)
	assert.True(t, ok)
}

func TestConfigMerge(t *testing.T) {
	var o Overrides
	require.NoError(t, json.Unmarshal([]byte(`{"floor": 900, "divisions": [{"name": "only", "start": 0, "k": 20}]}`), &o))

	c := DefaultConfig().Merge(o)
	assert.Equal(t, Rating(900), c.Floor)
	assert.Equal(t, Rating(1000), c.Initial)
	assert.Equal(t, []Division{NewDivision("only", 0, 20)}, c.Divisions)

	assert.Equal(t, DefaultConfig().Divisions, DefaultConfig().Merge(Overrides{}).Divisions)

	zero := Rating(0)
	assert.Equal(t, Rating(0), DefaultConfig().Merge(Overrides{Floor: &zero}).Floor)
}

func TestRankerDivision(t *testing.T) {
	c := DefaultConfig()
	c.Divisions = []Division{{Name: "odd", Start: 0, K: 100, Gain: 3, Loss: 2}}
	r, err := New(c)
	require.NoError(t, err)

	for n := 0; n < 3; n++ {
		d := r.Division(PlayerStats{Rating: 1500, Matches: played(n)})
		assert.Equal(t, 40.0, d.K)
		assert.Equal(t, 1.0, d.Gain)
		assert.Equal(t, 1.0, d.Loss)
	}

	assert.Equal(t, "odd", r.Division(PlayerStats{Rating: 1500, Matches: played(3)}).Name)
}

func TestHiddenDivisionFixed(t *testing.T) {
	r := newRanker(t)

	h := HiddenDivision()
	h.K = 0
	h.Gain = 5

	assert.Equal(t, Division{Name: "Hidden", Start: 0, K: 40, Gain: 1, Loss: 1}, r.Division(PlayerStats{Rating: 1000}))
	assert.Equal(t, 40.0, HiddenDivision().K)
}

func TestRankerAdjust(t *testing.T) {
	tests := []struct {
		name     string
		stats    PlayerStats
		opponent Rating
		won      bool
		expected PlayerStats
	}{{
		"new player wins in the hidden division",
		PlayerStats{User: "p", Rating: 1000},
		1000,
		true,
		PlayerStats{User: "p", Rating: 1020, Wins: 1},
	}, {
		"new player loses in the hidden division",
		PlayerStats{User: "p", Rating: 1000, Matches: played(2)},
		1000,
		false,
		PlayerStats{User: "p", Rating: 980, Matches: played(2)},
	}, {
		"win on the third match is not credited to points",
		PlayerStats{User: "p", Rating: 1000, Matches: played(3), Wins: 1},
		1000,
		true,
		PlayerStats{User: "p", Rating: 1016, Matches: played(3), Wins: 2},
	}, {
		"established win is credited to points",
		PlayerStats{User: "p", Rating: 1040, Matches: played(4), Wins: 2, Points: 3},
		1000,
		true,
		PlayerStats{User: "p", Rating: 1055, Matches: played(4), Wins: 3, Points: 18},
	}, {
		"established loss in S",
		PlayerStats{User: "p", Rating: 1120, Matches: played(10), Wins: 6, Points: 40},
		1000,
		false,
		PlayerStats{User: "p", Rating: 1110, Matches: played(10), Wins: 6, Points: 40},
	}, {
		"near the floor without clamping",
		PlayerStats{User: "p", Rating: 960, Matches: played(4), Wins: 2},
		1300,
		false,
		PlayerStats{User: "p", Rating: 955, Matches: played(4), Wins: 2},
	}, {
		"loss clamped to the floor",
		PlayerStats{User: "p", Rating: 960, Matches: played(4), Wins: 2},
		1100,
		false,
		PlayerStats{User: "p", Rating: 950, Matches: played(4), Wins: 2},
	}, {
		"loss one above the floor",
		PlayerStats{User: "p", Rating: 951, Matches: played(4), Wins: 2},
		1100,
		false,
		PlayerStats{User: "p", Rating: 950, Matches: played(4), Wins: 2},
	}}

	r := newRanker(t)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := standings{"o": {User: "o", Rating: test.opponent}}
			m := NewResult("o", "p")
			if test.won {
				m = NewResult("p", "o")
			}

			got, err := r.Adjust(test.stats, m, s)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
}

func TestRankerAdjustMultipliers(t *testing.T) {
	c := DefaultConfig()
	c.Divisions = []Division{{Name: "tuned", Start: 0, K: 32, Gain: 1.5, Loss: 0.5}}
	r, err := New(c)
	require.NoError(t, err)

	s := standings{"o": {User: "o", Rating: 1000}}
	p := PlayerStats{User: "p", Rating: 1000, Matches: played(5)}

	won, err := r.Adjust(p, NewResult("p", "o"), s)
	require.NoError(t, err)
	assert.Equal(t, Rating(1024), won.Rating)
	assert.Equal(t, 24.0, won.Points)

	lost, err := r.Adjust(p, NewResult("o", "p"), s)
	require.NoError(t, err)
	assert.Equal(t, Rating(992), lost.Rating)
}

func TestRankerAdjustFloorVoidsPoints(t *testing.T) {
	c := DefaultConfig()
	c.Divisions = []Division{{Name: "punishing", Start: 0, K: 32, Gain: -1, Loss: 1}}
	r, err := New(c)
	require.NoError(t, err)

	s := standings{"o": {User: "o", Rating: 1000}}
	got, err := r.Adjust(PlayerStats{User: "p", Rating: 955, Matches: played(5), Points: 7}, NewResult("p", "o"), s)
	require.NoError(t, err)
	assert.Equal(t, Rating(950), got.Rating)
	assert.Equal(t, 7.0, got.Points)
	assert.Equal(t, 1, got.Wins)
}

func TestRankerAdjustNeverBelowFloor(t *testing.T) {
	r := newRanker(t)
	for rating := Rating(950); rating < 1200; rating += 13 {
		for opp := Rating(400); opp < 2000; opp += 97 {
			for _, n := range []int{0, 3, 8} {
				s := standings{"o": {User: "o", Rating: opp}}
				p := PlayerStats{User: "p", Rating: rating, Matches: played(n)}
				for _, m := range []Match{NewResult("p", "o"), NewResult("o", "p")} {
					got, err := r.Adjust(p, m, s)
					require.NoError(t, err)
					assert.True(t, got.Rating >= r.Floor(), "%v vs %v fell to %v", rating, opp, got.Rating)
				}
			}
		}
	}
}

func TestRankerAdjustInvalidMatch(t *testing.T) {
	r := newRanker(t)
	s := standings{"o": {User: "o", Rating: 1000}, "x": {User: "x", Rating: 1000}}

	got, err := r.Adjust(PlayerStats{User: "p", Rating: 1000}, NewResult("o", "x"), s)
	require.Error(t, err)
	assert.Equal(t, PlayerStats{}, got)

	e, ok := errors.Cause(err).(InvalidMatchError)
	require.True(t, ok)
	assert.Equal(t, "p", e.User)
	assert.Equal(t, []string{"o", "x"}, e.Players)
}

func TestRankerAdjustLookupFailure(t *testing.T) {
	r := newRanker(t)
	lookupErr := errors.New("standings offline")
	s := StandingsFunc(func(string) (PlayerStats, error) {
		return PlayerStats{}, lookupErr
	})

	_, err := r.Adjust(PlayerStats{User: "p", Rating: 1000}, NewResult("p", "o"), s)
	require.Error(t, err)
	assert.Equal(t, lookupErr, errors.Cause(err))
}

func TestRankerAdjustFirstOpponent(t *testing.T) {
	r := newRanker(t)
	s := standings{"o": {User: "o", Rating: 1000}, "x": {User: "x", Rating: 3000}}
	m := Result{Players: []string{"p", "o", "x"}, Winner: "p"}

	got, err := r.Adjust(PlayerStats{User: "p", Rating: 1000}, m, s)
	require.NoError(t, err)
	assert.Equal(t, Rating(1020), got.Rating)
}

func TestRankerAdjustLogs(t *testing.T) {
	var logged []string
	c := DefaultConfig()
	c.Logf = func(format string, args ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}
	r, err := New(c)
	require.NoError(t, err)

	_, err = r.Adjust(PlayerStats{User: "p", Rating: 1000}, NewResult("p", "o"), standings{"o": {User: "o", Rating: 1000}})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "rating adjustment for p: 20")
}
