package main

import (
	"github.com/jmoiron/sqlx"
	"github.com/losinggeneration/elo-ladder/ranker"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

type sqlite struct {
	db *sqlx.DB
}

type ladderRow struct {
	ID        int64   `db:"id"`
	ChannelID string  `db:"channel_id"`
	UserID    string  `db:"user_id"`
	Rating    float64 `db:"rating"`
	Wins      int     `db:"wins"`
	Points    float64 `db:"points"`
}

type matchRow struct {
	ranker.MatchRecord
	ChannelID string `db:"channel_id"`
	UserID    string `db:"user_id"`
}

func NewSqlite(filename string) (DB, error) {
	db, err := sqlx.Connect("sqlite3", filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", filename)
	}
	// a second connection to :memory: would be a different database
	db.SetMaxOpenConns(1)

	s := sqlite{db: db}

	if err := s.createLadderTable(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *sqlite) Close() error {
	return errors.Wrap(s.db.Close(), "unable to close database")
}

func (s *sqlite) createLadderTable() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ladder (
		id INTEGER NOT NULL PRIMARY KEY,
		channel_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		rating REAL NOT NULL,
		wins INTEGER NOT NULL DEFAULT 0,
		points REAL NOT NULL DEFAULT 0,
		UNIQUE (channel_id, user_id)
	)`)
	if err != nil {
		return errors.Wrap(err, "unable to create table ladder")
	}

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS matches (
		seq INTEGER NOT NULL PRIMARY KEY,
		id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		winner TEXT NOT NULL,
		loser TEXT NOT NULL,
		delta REAL NOT NULL,
		played_at DATETIME NOT NULL,
		UNIQUE (id, user_id)
	)`)

	return errors.Wrap(err, "unable to create table matches")
}

func (s *sqlite) getMatches(q sqlx.Queryer, channelID, userID string) ([]ranker.MatchRecord, error) {
	m := []ranker.MatchRecord{}
	err := sqlx.Select(q, &m, `SELECT id, winner, loser, delta, played_at FROM matches WHERE channel_id=? AND user_id=? ORDER BY seq`, channelID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to select from matches")
	}

	if len(m) == 0 {
		return nil, nil
	}

	return m, nil
}

func (s *sqlite) toStats(r ladderRow) (ranker.PlayerStats, error) {
	matches, err := s.getMatches(s.db, r.ChannelID, r.UserID)
	if err != nil {
		return ranker.PlayerStats{}, err
	}

	return ranker.PlayerStats{
		User:    r.UserID,
		Rating:  ranker.Rating(r.Rating),
		Matches: matches,
		Wins:    r.Wins,
		Points:  r.Points,
	}, nil
}

func (s *sqlite) getStats(channelID, userID string) (*ranker.PlayerStats, error) {
	l := []ladderRow{}
	err := s.db.Select(&l, `SELECT id, channel_id, user_id, rating, wins, points FROM ladder WHERE user_id=? AND channel_id=?`, userID, channelID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to select from ladder")
	}

	if len(l) == 0 {
		return nil, errors.Wrapf(errNotFound{}, "unable to get user %s", userID)
	}

	st, err := s.toStats(l[0])
	if err != nil {
		return nil, err
	}

	return &st, nil
}

func (s *sqlite) getLadders() ([]string, error) {
	c := []string{}
	err := s.db.Select(&c, `SELECT DISTINCT channel_id FROM ladder ORDER BY channel_id`)
	return c, errors.Wrap(err, "unable to get ladders")
}

func (s *sqlite) getLadder(channelID string) ([]ranker.PlayerStats, error) {
	l := []ladderRow{}
	err := s.db.Select(&l, `SELECT id, channel_id, user_id, rating, wins, points FROM ladder WHERE channel_id=? ORDER BY rating DESC, user_id`, channelID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get ladder")
	}

	if len(l) == 0 {
		return nil, errors.Wrap(errNotFound{}, "ladder is empty")
	}

	stats := make([]ranker.PlayerStats, 0, len(l))
	for _, r := range l {
		st, err := s.toStats(r)
		if err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}

	return stats, nil
}

func (s *sqlite) clearLadder(channelID string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ladder WHERE channel_id=?`, channelID); err != nil {
		return errors.Wrap(err, "unable to delete ladder group")
	}
	if _, err := tx.Exec(`DELETE FROM matches WHERE channel_id=?`, channelID); err != nil {
		return errors.Wrap(err, "unable to delete ladder matches")
	}

	return errors.Wrap(tx.Commit(), "unable to commit transaction")
}

func (s *sqlite) removeUser(channelID, userID string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ladder WHERE channel_id=? AND user_id=?`, channelID, userID); err != nil {
		return errors.Wrap(err, "unable to delete user from ladder")
	}
	if _, err := tx.Exec(`DELETE FROM matches WHERE channel_id=? AND user_id=?`, channelID, userID); err != nil {
		return errors.Wrap(err, "unable to delete user matches")
	}

	return errors.Wrap(tx.Commit(), "unable to commit transaction")
}

func (s *sqlite) insert(tx *sqlx.Tx, channelID string, st ranker.PlayerStats) error {
	_, err := tx.NamedExec(`INSERT INTO ladder (channel_id, user_id, rating, wins, points) VALUES(:channel_id, :user_id, :rating, :wins, :points)
		ON CONFLICT (channel_id, user_id) DO UPDATE SET rating=excluded.rating, wins=excluded.wins, points=excluded.points`, &ladderRow{
		ChannelID: channelID,
		UserID:    st.User,
		Rating:    float64(st.Rating),
		Wins:      st.Wins,
		Points:    st.Points,
	})
	if err != nil {
		return errors.Wrap(err, "unable to insert/update into ladder")
	}

	for _, m := range st.Matches {
		_, err := tx.NamedExec(`INSERT OR IGNORE INTO matches (id, channel_id, user_id, winner, loser, delta, played_at) VALUES(:id, :channel_id, :user_id, :winner, :loser, :delta, :played_at)`, &matchRow{
			MatchRecord: m,
			ChannelID:   channelID,
			UserID:      st.User,
		})
		if err != nil {
			return errors.Wrap(err, "unable to insert into matches")
		}
	}

	return nil
}

func (s *sqlite) insertOrUpdate(channelID string, st ranker.PlayerStats) error {
	return s.updateLadder(channelID, []ranker.PlayerStats{st})
}

func (s *sqlite) updateLadder(channelID string, l []ranker.PlayerStats) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	defer tx.Rollback()

	for _, st := range l {
		if err := s.insert(tx, channelID, st); err != nil {
			return err
		}
	}

	return errors.Wrap(tx.Commit(), "unable to commit transaction")
}
