package main

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
	"github.com/losinggeneration/elo-ladder/ranker"
	"github.com/pkg/errors"
)

var accessToken = ""
var rankerConfig = ""

func init() {
	// values already in the environment win over .env
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		Debugf("unable to load .env: %v", err)
	}

	t := os.Getenv("ACCESS_TOKEN")
	if t != "" {
		accessToken = t
	}

	rankerConfig = os.Getenv("RANKER_CONFIG")
}

// loadRankerConfig merges the overrides in filename, if any, into the
// default ranker configuration.
func loadRankerConfig(filename string) (ranker.Config, error) {
	c := ranker.DefaultConfig()
	c.Logf = Debugf

	if filename == "" {
		return c, nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return c, errors.Wrap(err, "unable to open ranker config")
	}
	defer f.Close()

	var o ranker.Overrides
	if err := json.NewDecoder(f).Decode(&o); err != nil {
		return c, errors.Wrapf(err, "unable to decode %s", filename)
	}

	return c.Merge(o), nil
}
