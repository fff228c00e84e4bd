package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/internal/watch"
	"github.com/matzehuels/forcegraph/pkg/live"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command for the live browser view.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		watchFS bool
		fps     int
	)
	defaults := defaultOptions()

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Serve a live, interactive view of a graph",
		Long: `Serve a live, interactive view of a graph.

Open the address in a browser. Every connection runs its own simulation on
the server and streams frames over a websocket; pointer input drags, zooms
and pans. Clicks and hovers are logged.

With --watch, saving the data file updates every open view in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, bindLayoutFlags, bindStyleFlags, bindInteractFlags)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), args[0], opts, addr, watchFS, fps)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVarP(&watchFS, "watch", "w", false, "reload the graph when the file changes")
	cmd.Flags().IntVar(&fps, "fps", 60, "frames per second per connection")
	bindLayoutFlags(cmd.Flags(), defaults)
	bindStyleFlags(cmd.Flags(), defaults)
	bindInteractFlags(cmd.Flags(), defaults)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts pipeline.Options, addr string, watchFS bool, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	if watchFS && pipeline.IsRemote(input) {
		return fmt.Errorf("--watch needs a local file, got %s", input)
	}
	in, err := pipeline.LoadContext(ctx, input)
	if err != nil {
		return err
	}
	srv, err := live.NewServer(in.Graph, opts,
		live.WithLogger(c.Logger),
		live.WithInterval(time.Second/time.Duration(fps)))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if watchFS {
		go watchGraph(ctx, c.Logger, input, func(in pipeline.Input, err error) {
			if err == nil {
				err = srv.SetGraph(in.Graph)
			}
			if err != nil {
				c.Logger.Warn("reload failed", "path", input, "err", err)
			}
		})
	}

	hs := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	printSuccess("Serving %s", StyleHighlight.Render(input))
	printKeyValue("Address", StyleLink.Render(displayURL(addr)))
	printKeyValue("Nodes", fmt.Sprintf("%d", len(in.Graph.Nodes)))
	if watchFS {
		printDetail("Watching for changes")
	}

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	srv.Close()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

// watchGraph reloads input on every change until ctx ends. Load failures
// are passed to reload too, so a half-saved file does not stop the watch.
func watchGraph(ctx context.Context, logger *log.Logger, input string, reload func(pipeline.Input, error)) {
	w := watch.New(input, watch.WithLogger(logger))
	err := w.Watch(ctx, func() {
		reload(pipeline.Load(input))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watch stopped", "path", input, "err", err)
	}
}

func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
