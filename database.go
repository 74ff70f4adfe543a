package main

import "github.com/losinggeneration/elo-ladder/ranker"

// DB stores one ladder of player stats per channel.
type DB interface {
	Close() error
	createLadderTable() error
	getStats(channelID, userID string) (*ranker.PlayerStats, error)
	getLadders() ([]string, error)
	getLadder(channelID string) ([]ranker.PlayerStats, error)
	clearLadder(channelID string) error
	removeUser(channelID, userID string) error
	insertOrUpdate(channelID string, s ranker.PlayerStats) error
	updateLadder(channelID string, s []ranker.PlayerStats) error
}
