// Package logger builds the process-wide structured logger. Level and format
// come from the environment so deployments can switch without a rebuild.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a configured logger. LOG_LEVEL picks the level (default info),
// LOG_FORMAT=json switches to JSON output for log collection.
func New() *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	log.SetOutput(os.Stdout)
	return log
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
