// Package observability holds the process logger, prometheus counters and
// the gin middleware that feeds them.
package observability

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "PROPSIM_LOG_LEVEL"
	EnvLogNoColor = "PROPSIM_LOG_NOCOLOR"
	EnvLogJSON    = "PROPSIM_LOG_JSON"
)

// InitLogger builds the process logger and installs it as the zerolog
// global. The configured level can be overridden through the environment.
func InitLogger(app, level string) zerolog.Logger {
	lvl := parseLevel(level)
	if envLvl, ok := parseLevelStrict(os.Getenv(EnvLogLevel)); ok {
		lvl = envLvl
	}

	var out io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    envBool(EnvLogNoColor),
	}
	if envBool(EnvLogJSON) {
		out = os.Stdout
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

func parseLevel(raw string) zerolog.Level {
	if lvl, ok := parseLevelStrict(raw); ok {
		return lvl
	}
	return zerolog.InfoLevel
}

func parseLevelStrict(raw string) (zerolog.Level, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return zerolog.InfoLevel, false
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel, false
	}
	return lvl, true
}

func envBool(key string) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return v
}
