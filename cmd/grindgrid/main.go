package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grindgrid/grindgrid-backend/internal/app"
	"github.com/grindgrid/grindgrid-backend/internal/data/db"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

var (
	cfg app.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:          "grindgrid",
	Short:        "GrindGrid skill tracker backend",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = app.LoadConfig()
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
	// No subcommand runs the server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		pg, err := db.NewPostgresService(cfg.Postgres, log)
		if err != nil {
			return fmt.Errorf("init postgres: %w", err)
		}
		defer pg.Close()
		if err := db.AutoMigrateAll(pg.DB()); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
		log.Info("Schema is up to date")
		return nil
	},
}

func serve(ctx context.Context) error {
	a, err := app.New(ctx, log, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	return a.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
