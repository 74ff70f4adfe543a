package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/losinggeneration/elo-ladder/ranker"
	"github.com/nlopes/slack"
)

var botID string

func transferData(input, output DB) error {
	Debug("transfering data")
	ladders, err := input.getLadders()
	if err != nil {
		return err
	}

	Debugf("Got ladders: %#v", ladders)
	for _, ladder := range ladders {
		stats, err := input.getLadder(ladder)
		if err != nil {
			return err
		}

		Debugf("Got %d players for %s", len(stats), ladder)
		if err := output.updateLadder(ladder, stats); err != nil {
			return err
		}
	}

	return nil
}

func openDatabase(database, filename string) (DB, error) {
	switch database {
	case "sqlite":
		return NewSqlite(filename)
	case "boltdb":
		return NewBoltDB(filename)
	}

	return nil, errors.New("invalid database argument")
}

func main() {
	debug := flag.Bool("debug", false, "enable debugging")
	database := flag.String("database", "sqlite", "[sqlite, boltdb]")
	filename := flag.String("filename", "database.sql", "filename for file based databases")
	transfer := flag.String("transfer", "", "[sqlite, boltdb] database to transfer to")
	output := flag.String("output", "database.db", "filename for transfer to")
	config := flag.String("config", rankerConfig, "JSON file overriding the floor, initial rating and divisions")
	flag.Parse()

	setDebug(*debug)

	db, err := openDatabase(*database, *filename)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatal(err)
		}
	}()

	if *transfer != "" {
		out, err := openDatabase(*transfer, *output)
		if err != nil {
			log.Fatalf("%+v", err)
		}
		defer func() {
			if err := out.Close(); err != nil {
				log.Fatal(err)
			}
		}()

		if err := transferData(db, out); err != nil {
			log.Fatalf("%+v", err)
		}

		return
	}

	c, err := loadRankerConfig(*config)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	r, err := ranker.New(c)
	if err != nil {
		log.Fatalf("%+v", err)
	}

	l := newLeague(db, r)

	api := slack.New(accessToken)

	rtm := api.NewRTM()
	go rtm.ManageConnection()

	auth, err := api.AuthTest()
	if err != nil {
		log.Fatal(err)
	}

	botID = auth.UserID

	log.Println("started ", os.Args[0])
	log.Println("using", *database, "for a database")
	log.Printf("floor %v, initial rating %v, %d divisions", r.Floor(), r.Initial(), len(r.Divisions()))

	for e := range rtm.IncomingEvents {
		switch evt := e.Data.(type) {
		case *slack.MessageEvent:
			Debugf("%#v", evt)
			if evt.BotID == "" && evt.User != botID {
				cmd := checkMessage(evt.Msg)
				logError(runCommand(l, cmd, rtm, evt))
			}
		case *slack.InvalidAuthEvent:
			log.Fatal("invalid slack credentials")
		default:
			Debugf("%#v", evt)
		}
	}
}
