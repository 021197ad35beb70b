// Package cli implements the trigen command-line interface.
//
// The commands seed a root bucket, apply single rules, walk whole plans,
// and inspect, verify and render the resulting bucket files. The CLI is
// built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - seed: write the root bucket file
//   - apply: apply one rule to one bucket file
//   - run: seed and walk a plan (built-in or TOML)
//   - inspect: list the records of a bucket file
//   - verify: replay and check every record of a bucket file
//   - render: draw one record as SVG or DOT
//   - cache: manage the step cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// shows pipeline and store events.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Verified 42 records (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
