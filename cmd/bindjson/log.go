package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"
)

const (
	logFormatFlag = "logformat"
	logLevelFlag  = "loglevel"

	logFormatText = "text"
	logFormatJSON = "json"
)

func registerLoggingFlags(fs *pflag.FlagSet) {
	fs.String(logFormatFlag, logFormatText, `log output format
   text: human-readable text
   json: structured JSON, suitable for machine processing`)
	fs.String(logLevelFlag, "warn", `logging level (debug, info, warn, error)
   debug also reports table builds and structurally derived types`)
}

// newLogger builds the slog logger selected by the logging flags. Logs go to
// w, which is stderr in normal operation.
func newLogger(fs *pflag.FlagSet, w io.Writer) (*slog.Logger, error) {
	format, err := fs.GetString(logFormatFlag)
	if err != nil {
		return nil, err
	}
	levelName, err := fs.GetString(logLevelFlag)
	if err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case logFormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case logFormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q (want %s or %s)", format, logFormatText, logFormatJSON)
}
