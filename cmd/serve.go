package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"standbill_backend/internals/configs"
	database "standbill_backend/internals/databases"
	"standbill_backend/internals/helpers/logger"
	routes "standbill_backend/internals/route"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Example: `  # listen on $PORT (default 3000)
  standbill serve

  # run pending migrations first
  standbill serve --migrate`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", false, "Run AutoMigrate and seed default sequences before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	// 🔌 DB connect + pool + warm-up
	if err := database.ConnectDB(); err != nil {
		return err
	}
	defer database.Close()
	database.TunePool()
	database.WarmUpQueries()

	if m, _ := cmd.Flags().GetBool("migrate"); m {
		if err := database.Migrate(database.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Msg("✅ migrations applied")
	}

	app := routes.NewApp(database.DB, routes.Options{
		JWTSecret: configs.JWTSecret,
		Ledger:    configs.Ledger,
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", port).Msg("✅ Listening")
		errCh <- app.Listen("0.0.0.0:" + port)
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.ShutdownWithContext(ctx)
}
