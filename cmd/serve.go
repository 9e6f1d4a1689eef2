package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raptorflow/raptorflow/internal/backend"
	"github.com/raptorflow/raptorflow/internal/events"
	"github.com/raptorflow/raptorflow/internal/log"
	"github.com/raptorflow/raptorflow/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local RaptorFlow API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	client := backend.New(cfg.Backend.URL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithCacheTTL(cfg.Backend.CacheTTL),
	)

	// Handler events double as the server's audit trail.
	bus := events.NewBus()
	auditCh, auditCancel := bus.Subscribe(events.Filter{}, 32)
	defer auditCancel()
	go func() {
		for e := range auditCh {
			log.Info(log.CatServer, "Workspace event",
				"type", string(e.Type), "schema", e.Schema, "cohort", e.CohortID)
		}
	}()

	handler := server.NewHandler(
		db.CohortRepository(),
		db.DraftRepository(),
		backend.NewPositioningGenerator(client),
		bus,
		cfg.ROI.PlanAnnualPrice,
		cfg.MetricsSeed,
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.CatServer, "listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info(log.CatServer, "stopped")
	return nil
}
