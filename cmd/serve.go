package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/moviedash/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard as a JSON API",
	Long:  `Starts an HTTP server exposing domains, dashboard, views, series, facts and
exports under /api, plus /healthz and Prometheus /metrics. With --watch the
data file is reloaded when it changes on disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		addr := c.ServerAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		watch := c.Watch
		if cmd.Flags().Changed("watch") {
			watch = serveWatch
		}

		cache := newCache(c)
		// Fail fast on a broken source rather than on the first request.
		t, err := cache.Load(c.DataPath)
		if err != nil {
			return err
		}
		log := logEntry()
		log.WithField("path", t.Source).WithField("rows", t.Len()).Info("Dataset loaded")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(cache, server.Options{
			DataPath:    c.DataPath,
			TopN:        c.TopN,
			Delimiter:   c.DelimiterRune(),
			CORSOrigins: c.CORSOrigins,
			RateLimit:   c.RateLimit,
		}, log)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(gctx, addr) })
		if watch {
			g.Go(func() error { return cache.Watch(gctx, c.DataPath) })
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server_addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "reload the data file when it changes (overrides watch)")
}
