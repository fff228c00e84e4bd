// Package cli implements the forcegraph command-line interface.
//
// Commands compute layouts headless, render them to static formats, open
// an interactive terminal viewer and serve the live browser view. The CLI
// is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - layout: Run the simulation to convergence and write a layout file
//   - visualize: Render a layout file to SVG, PNG, JSON or DOT output
//   - render: Layout and render in one step
//   - view: Explore a graph interactively in the terminal
//   - serve: Serve the live browser view over websockets
//   - convert: Convert graph data between JSON and YAML
//   - cache: Manage the layout and render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes leveled lines to w with a centisecond clock, which is
// fine enough to tell simulation phases apart.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stage times one step of a command (load, simulate, render) and logs it
// once at debug level with its elapsed time and any result fields.
type stage struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startStage(ctx context.Context, name string) *stage {
	return &stage{logger: contextLogger(ctx), name: name, start: time.Now()}
}

// end logs "<name> done" with elapsed=<ms> followed by keyvals.
func (s *stage) end(keyvals ...any) {
	kv := append([]any{"elapsed", time.Since(s.start).Round(time.Millisecond)}, keyvals...)
	s.logger.Debug(s.name+" done", kv...)
}

type loggerKey struct{}

// withLogger attaches l for the commands run under ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// contextLogger returns the command logger, or log.Default outside a
// command.
func contextLogger(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
