package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/todoapi/internal/api"
	"github.com/Kerhoff/todoapi/internal/metrics"
	"github.com/Kerhoff/todoapi/internal/service"
	"github.com/Kerhoff/todoapi/internal/session"
	"github.com/Kerhoff/todoapi/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, l, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	l.Info("Starting todoapi...")

	// Database
	db, err := openDatabase(cfg, l)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.New()
	sessions := session.NewProvider(db.DB, db.Dialect, m)
	svc := service.New(l, m)
	apiServer := api.NewServer(svc, sessions, l, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	servers := []*http.Server{httpServer}
	if cfg.PrometheusPort != "" {
		servers = append(servers, metrics.NewServer(":"+cfg.PrometheusPort, m))
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.WithFields(l, logrus.Fields{"addr": srv.Addr}).Info("HTTP server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv)
	}

	l.Info("todoapi started successfully")

	var serveErr error
	select {
	case <-ctx.Done():
		l.Info("Received shutdown signal...")
	case serveErr = <-errCh:
		l.WithError(serveErr).Error("HTTP server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.WithError(err).WithField("addr", srv.Addr).Warn("HTTP server did not shut down cleanly")
		}
	}

	l.Info("todoapi stopped")
	return serveErr
}
