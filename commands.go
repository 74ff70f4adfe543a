package main

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/losinggeneration/elo-ladder/ranker"
	"github.com/nlopes/slack"
	"github.com/pkg/errors"
)

type command string

const (
	helpCommand      command = "help"
	rankCommand      command = "rank"
	wonCommand       command = "won"
	challengeCommand command = "challenge"
	boardCommand     command = "board"
	historyCommand   command = "history"
	resetCommand     command = "reset"
	unknownCommand   command = "unknown"
)

// historySize is how many matches the history command shows.
const historySize = 5

type commands map[command]string

var cmds = commands{
	helpCommand:      "a list of available commands",
	rankCommand:      "your current rating and division",
	wonCommand:       "report a win against another player: won @user",
	challengeCommand: "challenge another player to a match: challenge [@user]",
	boardCommand:     "show the board rankings",
	historyCommand:   "your last matches",
	resetCommand:     "reset the board, everyone starts over",
}

func (c commands) Print() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	cmds := "Available commands\n"
	for _, k := range keys {
		cmds += fmt.Sprintf("%q - %v\n", k, c[command(k)])
	}

	return cmds
}

var mentionRe = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]*)?>`)

// mentions returns the users mentioned in text, ignoring the bot.
func mentions(text string) []string {
	var users []string
	for _, m := range mentionRe.FindAllStringSubmatch(text, -1) {
		if m[1] != botID {
			users = append(users, m[1])
		}
	}

	return users
}

// checkMessage looks for a command as the first word, after an optional
// mention of the bot.
func checkMessage(msg slack.Msg) command {
	fields := strings.Fields(msg.Text)
	for len(fields) > 0 && mentionRe.MatchString(fields[0]) && len(mentions(fields[0])) == 0 {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return unknownCommand
	}

	c := command(strings.ToLower(strings.TrimSuffix(fields[0], ":")))
	if _, ok := cmds[c]; ok {
		return c
	}

	return unknownCommand
}

func divisionName(r *ranker.Ranker, s ranker.PlayerStats) string {
	return r.Division(s).Name
}

func formatRank(r *ranker.Ranker, name string, s ranker.PlayerStats, pos, total int) string {
	return fmt.Sprintf("%s\t%d/%d\t%v (%s)\twins %d/%d\tpoints %v",
		name, pos, total, s.Rating, divisionName(r, s), s.Wins, len(s.Matches), s.Points)
}

func formatBoard(r *ranker.Ranker, l []ranker.PlayerStats, name func(string) string) string {
	var message string
	for i, s := range l {
		message += fmt.Sprintf("%d. %s\t%v\t%s\n", i+1, name(s.User), s.Rating, divisionName(r, s))
	}

	return message
}

func lastDelta(s ranker.PlayerStats) ranker.Rating {
	if len(s.Matches) == 0 {
		return 0
	}

	return s.Matches[len(s.Matches)-1].Delta
}

func formatResult(winner, loser ranker.PlayerStats, name func(string) string) string {
	return fmt.Sprintf("%s %v (%+g)\n%s %v (%+g)",
		name(winner.User), winner.Rating, float64(lastDelta(winner)),
		name(loser.User), loser.Rating, float64(lastDelta(loser)))
}

func formatHistory(s ranker.PlayerStats, name func(string) string) string {
	if len(s.Matches) == 0 {
		return "no matches played yet"
	}

	var message string
	for i := len(s.Matches) - 1; i >= 0 && i >= len(s.Matches)-historySize; i-- {
		m := s.Matches[i]
		if m.Winner == s.User {
			message += fmt.Sprintf("%s\twon against %s\t%+g\n", m.PlayedAt.Format("2006-01-02"), name(m.Loser), float64(m.Delta))
		} else {
			message += fmt.Sprintf("%s\tlost against %s\t%+g\n", m.PlayedAt.Format("2006-01-02"), name(m.Winner), float64(m.Delta))
		}
	}

	return message
}

func userName(rtm *slack.RTM) func(string) string {
	return func(id string) string {
		user, err := rtm.GetUserInfo(id)
		if err != nil {
			logError(errors.Wrap(err, "unable to get user info"))
			return id
		}

		if user.RealName != "" {
			return user.RealName
		}
		return user.Name
	}
}

func rank(l *league, rtm *slack.RTM, msg slack.Msg) error {
	u, err := l.db.getStats(msg.Channel, msg.User)
	if err != nil {
		if isNotFound(err) {
			return sendMessage(rtm, msg.Channel, "you're not on the board yet, report a match to join")
		}
		return err
	}

	ladder, err := l.db.getLadder(msg.Channel)
	if err != nil {
		return err
	}

	message := formatRank(l.ranker, userName(rtm)(msg.User), *u, position(ladder, msg.User), len(ladder))
	return sendMessage(rtm, msg.Channel, message)
}

func challenge(l *league, rtm *slack.RTM, msg slack.Msg) error {
	challenger, err := l.stats(msg.Channel, msg.User)
	if err != nil {
		return err
	}

	var challenged ranker.PlayerStats
	if m := mentions(msg.Text); len(m) > 0 {
		if challenged, err = l.stats(msg.Channel, m[0]); err != nil {
			return err
		}
	} else {
		ladder, err := l.db.getLadder(msg.Channel)
		if err != nil {
			return err
		}

		var ok bool
		if challenged, ok = challengeTarget(ladder, msg.User); !ok {
			return sendMessage(rtm, msg.Channel, "nobody is rated above you, mention someone to challenge them")
		}
	}

	u, err := rtm.GetUserInfo(msg.User)
	if err != nil {
		return errors.Wrap(err, "unable to get user info")
	}

	c, err := rtm.GetUserInfo(challenged.User)
	if err != nil {
		return errors.Wrap(err, "unable to get user info")
	}

	odds := 100 * ranker.Expected(challenger.Rating, challenged.Rating)
	message := fmt.Sprintf("<@%s|%s> you've been challenged by %s (<@%s|%s>), who has a %.0f%% chance to win\n", c.ID, c.Name, u.RealName, u.ID, u.Name, odds)

	return sendMessage(rtm, msg.Channel, message)
}

func won(l *league, rtm *slack.RTM, msg slack.Msg) error {
	m := mentions(msg.Text)
	if len(m) == 0 {
		return sendMessage(rtm, msg.Channel, "who did you beat? "+cmds[wonCommand])
	}

	winner, loser, err := l.recordMatch(msg.Channel, msg.User, m[0])
	if err != nil {
		return err
	}

	return sendMessage(rtm, msg.Channel, formatResult(winner, loser, userName(rtm)))
}

func board(l *league, rtm *slack.RTM, msg slack.Msg) error {
	ladder, err := l.db.getLadder(msg.Channel)
	if err != nil {
		if isNotFound(err) {
			return sendMessage(rtm, msg.Channel, "the board is empty")
		}
		return err
	}

	return sendMessage(rtm, msg.Channel, formatBoard(l.ranker, ladder, userName(rtm)))
}

func history(l *league, rtm *slack.RTM, msg slack.Msg) error {
	u, err := l.db.getStats(msg.Channel, msg.User)
	if err != nil {
		if isNotFound(err) {
			return sendMessage(rtm, msg.Channel, "no matches played yet")
		}
		return err
	}

	return sendMessage(rtm, msg.Channel, formatHistory(*u, userName(rtm)))
}

func reset(l *league, rtm *slack.RTM, msg slack.Msg) error {
	if err := l.reset(msg.Channel); err != nil {
		return err
	}

	return sendMessage(rtm, msg.Channel, "the board has been reset")
}

func sendMessage(rtm *slack.RTM, channel, text string) error {
	var err error
	for i := 0; i < 5; i++ {
		_, _, err = rtm.PostMessage(channel,
			slack.MsgOptionText(text, false),
			slack.MsgOptionAsUser(true),
		)
		if err == nil {
			break
		}
	}

	return errors.Wrap(err, "unable to send message")
}

func runCommand(l *league, cmd command, rtm *slack.RTM, evt *slack.MessageEvent) error {
	switch cmd {
	case rankCommand:
		return rank(l, rtm, evt.Msg)
	case challengeCommand:
		return challenge(l, rtm, evt.Msg)
	case wonCommand:
		return won(l, rtm, evt.Msg)
	case boardCommand:
		return board(l, rtm, evt.Msg)
	case historyCommand:
		return history(l, rtm, evt.Msg)
	case resetCommand:
		return reset(l, rtm, evt.Msg)
	case helpCommand:
		return sendMessage(rtm, evt.Channel, cmds.Print())
	}

	switch evt.Msg.SubType {
	case "channel_join", "group_join":
		return l.join(evt.Channel, evt.User)
	case "channel_leave", "group_leave":
		return l.leave(evt.Channel, evt.User)
	}

	return nil
}
