package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenqi/daystar/internal/api"
	"github.com/wrenqi/daystar/internal/fusion"
	"github.com/wrenqi/daystar/internal/scheduler"
	"github.com/wrenqi/daystar/internal/store"
	"github.com/wrenqi/daystar/pkg/config"
	"github.com/wrenqi/daystar/pkg/database"
	"github.com/wrenqi/daystar/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and daily scan scheduler",
	Long: `Starts the HTTP API, the websocket alert stream and the scheduled
post-close signal scan.

Example:
  go run ./cmd/daystar serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	scfg, err := loadStrategy(cfg)
	if err != nil {
		return err
	}

	engine, err := fusion.NewEngine(scfg, log)
	if err != nil {
		return fmt.Errorf("init fusion engine: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	snap := api.NewStore()
	hub := api.NewHub(log)
	handler := api.NewHandler(snap, log)
	server := api.New(cfg, log, api.NewRouter(handler, hub, log))

	sched := scheduler.New(log)
	scanJob := scheduler.NewSignalScanJob(
		store.NewScoreRepository(db.Pool),
		store.NewBarRepository(db.Pool),
		engine, snap, hub, log,
	)
	if err := sched.AddJob(scanJob); err != nil {
		return fmt.Errorf("add scan job: %w", err)
	}
	sched.Start()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		sched.Stop()
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
