package main

import (
	"encoding/json"

	"github.com/boltdb/bolt"
	"github.com/losinggeneration/elo-ladder/ranker"
	"github.com/pkg/errors"
)

type boltdb struct {
	db *bolt.DB
}

func NewBoltDB(filename string) (DB, error) {
	db, err := bolt.Open(filename, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", filename)
	}

	return &boltdb{db: db}, nil
}

func (b *boltdb) Close() error {
	return errors.Wrap(b.db.Close(), "unable to close database")
}

// buckets are created on first insert
func (b *boltdb) createLadderTable() error {
	return nil
}

func (b *boltdb) getStats(channelID, userID string) (*ranker.PlayerStats, error) {
	var s ranker.PlayerStats
	err := b.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(channelID))
		if b == nil {
			return errors.Wrap(errNotFound{}, "bucket does not exist yet")
		}
		u := b.Get([]byte(userID))
		if len(u) == 0 {
			return errors.Wrapf(errNotFound{}, "unable to get user %s", userID)
		}

		return errors.Wrap(json.Unmarshal(u, &s), "unable to unmarshal user")
	})
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (b *boltdb) getLadders() ([]string, error) {
	var channels []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			channels = append(channels, string(name))
			return nil
		})
	})

	return channels, errors.Wrap(err, "unable to list buckets")
}

func (b *boltdb) getLadder(channelID string) ([]ranker.PlayerStats, error) {
	l := make([]ranker.PlayerStats, 0)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(channelID))
		if bucket == nil {
			return errors.Wrap(errNotFound{}, "unable to get bucket")
		}

		return errors.Wrap(bucket.ForEach(func(k, v []byte) error {
			var s ranker.PlayerStats
			if err := json.Unmarshal(v, &s); err != nil {
				return errors.Wrap(err, "unable to unmarshal user")
			}
			l = append(l, s)
			return nil
		}), "unable to get bucket contents")
	})

	if err != nil {
		return nil, err
	}

	if len(l) == 0 {
		return nil, errors.Wrap(errNotFound{}, "ladder is empty")
	}

	sortLadder(l)

	return l, nil
}

func (b *boltdb) clearLadder(channelID string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(channelID))
		if b != nil {
			return errors.Wrap(tx.DeleteBucket([]byte(channelID)), "unable to delete bucket")
		}

		return nil
	})

	return errors.Wrap(err, "unable to clear the ladder")
}

func (b *boltdb) removeUser(channelID, userID string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(channelID))
		if b == nil {
			return nil
		}
		return errors.Wrap(b.Delete([]byte(userID)), "unable to delete user")
	})

	return errors.Wrap(err, "unable to remove user")
}

func (b *boltdb) insert(channelID string, s ranker.PlayerStats) func(*bolt.Tx) error {
	return func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(channelID))
		if err != nil {
			return errors.Wrap(err, "unable to create bucket")
		}

		data, err := json.Marshal(s)
		if err != nil {
			return errors.Wrap(err, "unable to marshal user into json")
		}

		err = b.Put([]byte(s.User), data)
		return errors.Wrap(err, "error puting user")
	}
}

func (b *boltdb) insertOrUpdate(channelID string, s ranker.PlayerStats) error {
	err := b.db.Update(b.insert(channelID, s))
	return errors.Wrap(err, "unable to insert user")
}

func (b *boltdb) updateLadder(channelID string, l []ranker.PlayerStats) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		for _, s := range l {
			if err := b.insert(channelID, s)(tx); err != nil {
				return err
			}
		}

		return nil
	})

	return errors.Wrap(err, "unable to update ladder")
}
