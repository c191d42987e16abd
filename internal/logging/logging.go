// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options controls Init.
type Options struct {
	// Debug lowers the level to Debug. The DEBUG environment variable has
	// the same effect when set to anything but "", "0" or "false".
	Debug bool
	// File, when set, receives log output instead of Out.
	File string
	// Out defaults to os.Stderr.
	Out io.Writer
}

// Init sets the formatter, level and output of the standard logger. The
// returned function closes the log file, if one was opened.
func Init(opts Options) func() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableQuote:  true,
		PadLevelText:  true,
	})
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	logrus.SetOutput(out)

	level := logrus.WarnLevel
	if opts.Debug || debugEnv() {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	closer := func() {}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logrus.WithError(err).Warn("failed to open log file, logging to stderr")
			return closer
		}
		logrus.SetOutput(f)
		closer = func() { _ = f.Close() }
	}
	return closer
}

func debugEnv() bool {
	v, ok := os.LookupEnv("DEBUG")
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false":
		return false
	}
	return true
}
