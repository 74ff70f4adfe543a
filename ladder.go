package main

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/losinggeneration/elo-ladder/ranker"
	"github.com/pkg/errors"
)

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

func isNotFound(err error) bool {
	_, ok := errors.Cause(err).(errNotFound)
	return ok
}

type ladders []ranker.PlayerStats

func (l ladders) Less(i, j int) bool {
	if l[i].Rating == l[j].Rating {
		return l[i].User < l[j].User
	}
	return l[i].Rating > l[j].Rating
}
func (l ladders) Len() int      { return len(l) }
func (l ladders) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// sortLadder orders by rating, highest first.
func sortLadder(l []ranker.PlayerStats) {
	sort.Sort(ladders(l))
}

// standings reads a channel's current stats from the database. Players that
// aren't stored yet get newStats when it is set.
type standings struct {
	db        DB
	channelID string
	newStats  func(user string) ranker.PlayerStats
}

func (s standings) Stats(user string) (ranker.PlayerStats, error) {
	st, err := s.db.getStats(s.channelID, user)
	if err != nil {
		if isNotFound(err) && s.newStats != nil {
			return s.newStats(user), nil
		}
		return ranker.PlayerStats{}, err
	}

	return *st, nil
}

// league records matches for every channel. Matches are processed one at a
// time so an adjustment never reads stats another one is about to replace.
type league struct {
	mu     sync.Mutex
	db     DB
	ranker *ranker.Ranker
	now    func() time.Time
	newID  func() string
}

func newLeague(db DB, r *ranker.Ranker) *league {
	return &league{
		db:     db,
		ranker: r,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// register returns the user's stats, adding the user at the initial rating if
// they aren't on the ladder yet.
func (l *league) register(channelID, userID string) (ranker.PlayerStats, error) {
	st, err := l.db.getStats(channelID, userID)
	if err == nil {
		return *st, nil
	}
	if !isNotFound(err) {
		return ranker.PlayerStats{}, err
	}

	s := l.ranker.NewStats(userID)
	Debugf("registering %s in %s at %v", userID, channelID, s.Rating)
	if err := l.db.insertOrUpdate(channelID, s); err != nil {
		return ranker.PlayerStats{}, err
	}

	return s, nil
}

// stats is register for callers outside the league.
func (l *league) stats(channelID, userID string) (ranker.PlayerStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.register(channelID, userID)
}

func (l *league) join(channelID, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.register(channelID, userID)
	return err
}

func (l *league) leave(channelID, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.db.removeUser(channelID, userID)
}

func (l *league) reset(channelID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.db.clearLadder(channelID)
}

// recordMatch adjusts both players against their pre-match ratings and
// stores the results together. Unknown players are only added to the ladder
// by that final write.
func (l *league) recordMatch(channelID, winnerID, loserID string) (winner, loser ranker.PlayerStats, err error) {
	if winnerID == loserID {
		return winner, loser, errors.New("a player can't play against themselves")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	st := standings{db: l.db, channelID: channelID, newStats: l.ranker.NewStats}

	w, err := st.Stats(winnerID)
	if err != nil {
		return winner, loser, err
	}
	lo, err := st.Stats(loserID)
	if err != nil {
		return winner, loser, err
	}

	m := ranker.NewResult(winnerID, loserID)

	winner, err = l.ranker.Adjust(w, m, st)
	if err != nil {
		return winner, loser, errors.Wrap(err, "unable to adjust winner")
	}
	loser, err = l.ranker.Adjust(lo, m, st)
	if err != nil {
		return winner, loser, errors.Wrap(err, "unable to adjust loser")
	}

	record := ranker.MatchRecord{
		ID:       l.newID(),
		Winner:   winnerID,
		Loser:    loserID,
		PlayedAt: l.now().UTC(),
	}

	record.Delta = winner.Rating - w.Rating
	winner = winner.RecordMatch(record)
	record.Delta = loser.Rating - lo.Rating
	loser = loser.RecordMatch(record)

	if err := l.db.updateLadder(channelID, []ranker.PlayerStats{winner, loser}); err != nil {
		return winner, loser, err
	}

	return winner, loser, nil
}

// position returns the 1-based board position of userID.
func position(l []ranker.PlayerStats, userID string) int {
	for i, s := range l {
		if s.User == userID {
			return i + 1
		}
	}

	return 0
}

// challengeTarget is the lowest rated player above userID.
func challengeTarget(l []ranker.PlayerStats, userID string) (ranker.PlayerStats, bool) {
	p := position(l, userID)
	if p <= 1 {
		return ranker.PlayerStats{}, false
	}

	return l[p-2], true
}
