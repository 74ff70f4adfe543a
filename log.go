package main

import "log"

var debug bool

func setDebug(enable bool) {
	debug = enable
}

// Debug will conditionally log a debug message
func Debug(args ...interface{}) {
	if debug {
		log.Print(append([]interface{}{"DEBUG: "}, args...)...)
	}
}

// Debugf will conditionally log a formatted debug message. It has the
// signature of ranker.Config.Logf so adjustments show up with -debug.
func Debugf(format string, args ...interface{}) {
	if debug {
		log.Printf("DEBUG: "+format, args...)
	}
}

// logError logs err with its stack trace when it carries one.
func logError(err error) {
	if err != nil {
		log.Printf("%+v", err)
	}
}
