package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/citycal/citycal/internal/app"
	"github.com/citycal/citycal/internal/config"
	"github.com/citycal/citycal/pkg/storage"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "citycal",
	Short: "Curated San Francisco events listing",
	RunE:  serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy events from the local file into the configured remote backend",
	RunE:  migrate,
}

func init() {
	// .env is optional
	_ = godotenv.Load()

	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config/application.yaml", "path to the YAML configuration file")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	application, err := app.NewApplication(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return application.Run(cmd.Context())
}

func migrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	remote, err := storage.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer remote.Close()

	migrated, err := storage.NewMigrator(storage.NewFileStore(cfg.Storage.File.Path), remote, nil).Migrate(cmd.Context())
	if err != nil {
		return err
	}
	log.Infof("Migration finished, %d event(s) copied", migrated)
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
