package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// log is the package-wide structured logger, configured once from the
// environment. The pager and Database.Query derive a scoped *logrus.Entry
// from it tagged with a "component" field; OpenDatabase logs through it
// directly.
var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   false,
		TimestampFormat: "15:04:05.000",
	})
	l.SetLevel(levelFromEnv())
	return l
}

// levelFromEnv reads CLI_LOG_LEVEL (debug, info, warn, error); defaults to
// warn so a bare `.dbinfo`/`.tables`/query run stays quiet on stderr.
func levelFromEnv() logrus.Level {
	raw := os.Getenv("CLI_LOG_LEVEL")
	if raw == "" {
		return logrus.WarnLevel
	}
	lvl, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}
