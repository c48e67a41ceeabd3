package logging

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// TextFormatter is the human readable format shared by the daemon and the CLI.
func TextFormatter() *log.TextFormatter {
	return &log.TextFormatter{
		FullTimestamp:          true,
		TimestampFormat:        time.RFC3339Nano,
		DisableLevelTruncation: true,
	}
}

func JSONFormatter() *log.JSONFormatter {
	return &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
}

// Setup configures the standard logger with the named format and level.
func Setup(level, format string) error {
	switch format {
	case FormatJSON:
		log.SetFormatter(JSONFormatter())
	case FormatText:
		log.SetFormatter(TextFormatter())
	default:
		return fmt.Errorf("log format %q is not one of %s, %s", format, FormatText, FormatJSON)
	}

	logLevel, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(logLevel)

	return nil
}
