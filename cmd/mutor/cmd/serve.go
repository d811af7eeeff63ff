package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/mutor/pkg/mutor"
)

const (
	defaultServeAddr = "127.0.0.1:9090"
	shutdownTimeout  = 5 * time.Second
)

func init() {
	RegisterCommand(func(o *options) *cobra.Command {
		var (
			addr     string
			interval time.Duration
		)
		c := &cobra.Command{
			Use:   "serve",
			Short: "Run the counter demo with the debug server",
			Long: `Mount the counter demo, click it on an interval and serve the debug
endpoints until interrupted:

  /render-tree    the render tree as text
  /instance-tree  mounted instances as JSON
  /runtime        runtime counters as JSON
  /metrics        Prometheus metrics
  /health         liveness

Metrics are always enabled. The listen address defaults to metrics.addr from
the config file, then ` + defaultServeAddr + `.`,
			Args: cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return runServe(c.Context(), c, o, addr, interval)
			},
		}
		c.Flags().StringVar(&addr, "addr", "", "listen address")
		c.Flags().DurationVar(&interval, "interval", time.Second, "time between demo clicks (0 disables)")
		return c
	})
}

func runServe(ctx context.Context, c *cobra.Command, o *options, addr string, interval time.Duration) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	cfg.Metrics.Enabled = true
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr == "" {
		addr = defaultServeAddr
	}

	app, err := mutor.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	demo, err := mountCounter(app)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: app.DebugHandler(), ReadHeaderTimeout: 5 * time.Second}
	fmt.Fprintf(c.OutOrStdout(), "serving debug endpoints on http://%s\n", listener.Addr())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for i := 0; ; i++ {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					step := i
					app.Dispatch(func() { demo.step(app, step) })
				}
			}
		}()
	}

	runErr := make(chan error, 1)
	go func() { runErr <- app.Run(ctx) }()

	select {
	case err = <-serveErr:
		cancel()
	case <-ctx.Done():
	}
	<-runErr

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}
