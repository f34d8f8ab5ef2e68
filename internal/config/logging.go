package config

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger from the configured level and format.
// debug forces the debug level. An unknown level falls back to info with a
// warning.
func NewLogger(c *Global, debug bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if c != nil && strings.EqualFold(c.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	levelName := "info"
	if c != nil && c.LogLevel != "" {
		levelName = c.LogLevel
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, defaulting to info")
		level = logrus.InfoLevel
	}
	if debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}
