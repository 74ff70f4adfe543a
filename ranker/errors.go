package ranker

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned when a Ranker can't be built from a Config.
type ConfigurationError struct {
	Reason string
}

func (e ConfigurationError) Error() string {
	return "invalid ranker configuration: " + e.Reason
}

// InvalidMatchError is returned by Adjust when the match doesn't include the
// player being adjusted.
type InvalidMatchError struct {
	User    string
	Players []string
}

func (e InvalidMatchError) Error() string {
	return fmt.Sprintf("match does not contain user %s (players: %s)", e.User, strings.Join(e.Players, ", "))
}
