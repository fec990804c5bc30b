// Package logging builds the logrus loggers used by the library and tools.
package logging

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv enables debug logging when set to a true value.
const DebugEnv = "REBUFFER_DEBUG"

// New returns a logger writing to stderr. The level is Debug when DebugEnv
// parses as true and Info otherwise.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if debugEnabled() {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

func debugEnabled() bool {
	debug, err := strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		return false
	}
	return debug
}
