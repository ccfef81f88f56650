package sim

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a per-run structured logger writing to both stdout and
// logPath, rather than mutating the package-global logrus logger — each
// simulation or tuning worker gets its own instance so concurrent runs
// never interleave or race on level/output state (SPEC_FULL.md §9
// REDESIGN FLAGS).
func NewLogger(level, logPath string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("vasim: invalid log level %q: %w", level, err)
	}

	log := logrus.New()
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var writers []io.Writer = []io.Writer{os.Stdout}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("vasim: opening log file %s: %w", logPath, err)
		}
		writers = append(writers, f)
	}
	log.SetOutput(io.MultiWriter(writers...))

	return log, nil
}
