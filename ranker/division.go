package ranker

import (
	"encoding/json"
	"sort"
)

// Division groups players of a similar rating and tunes how fast their
// rating moves.
type Division struct {
	Name string `json:"name"`
	// Start is the rating a player has to reach to be in this division.
	Start Rating `json:"start"`
	// K is the K-factor used while in this division.
	K float64 `json:"k"`
	// Gain multiplies the adjustment of a won match.
	Gain float64 `json:"gain"`
	// Loss multiplies the adjustment of a lost match.
	Loss float64 `json:"loss"`
}

// HiddenDivision is used in place of the real division for a player's first
// three matches.
func HiddenDivision() Division {
	return Division{Name: "Hidden", Start: 0, K: 40, Gain: 1, Loss: 1}
}

// NewDivision returns a division with neutral multipliers.
func NewDivision(name string, start Rating, k float64) Division {
	return Division{Name: name, Start: start, K: k, Gain: 1, Loss: 1}
}

// UnmarshalJSON defaults the multipliers to 1 when they are omitted.
func (d *Division) UnmarshalJSON(data []byte) error {
	type division Division
	v := division{Gain: 1, Loss: 1}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*d = Division(v)
	return nil
}

// Divisions is a table of divisions sorted by their starting rating.
type Divisions []Division

// NewDivisions validates and sorts a copy of ds.
func NewDivisions(ds ...Division) (Divisions, error) {
	if len(ds) == 0 {
		return nil, ConfigurationError{Reason: "no divisions configured"}
	}

	t := make(Divisions, len(ds))
	copy(t, ds)
	for _, d := range t {
		if !(d.K > 0) {
			return nil, ConfigurationError{Reason: "division " + d.Name + " must have a positive k-factor"}
		}
	}

	sort.Stable(t)

	return t, nil
}

func (t Divisions) Less(i, j int) bool { return t[i].Start < t[j].Start }
func (t Divisions) Len() int           { return len(t) }
func (t Divisions) Swap(i, j int)      { t[i], t[j] = t[j], t[i] }

// Resolve returns the division with the highest start that rating has
// reached, or the lowest division if it has reached none.
func (t Divisions) Resolve(rating Rating) Division {
	match := t[0]
	for _, d := range t {
		if rating >= d.Start {
			match = d
		}
	}

	return match
}
