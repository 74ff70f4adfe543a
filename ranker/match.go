package ranker

// Match is a resolved match between players with a declared winner.
type Match interface {
	HasUser(user string) bool
	// Opponents returns every participant other than user, in order.
	Opponents(user string) []string
	IsWinner(user string) bool
}

// Result is a Match with a fixed list of players.
type Result struct {
	Players []string
	Winner  string
}

// NewResult returns the result of a head-to-head match.
func NewResult(winner, loser string) Result {
	return Result{Players: []string{winner, loser}, Winner: winner}
}

func (r Result) HasUser(user string) bool {
	for _, p := range r.Players {
		if p == user {
			return true
		}
	}

	return false
}

func (r Result) Opponents(user string) []string {
	var o []string
	for _, p := range r.Players {
		if p != user {
			o = append(o, p)
		}
	}

	return o
}

func (r Result) IsWinner(user string) bool {
	return r.Winner == user
}
