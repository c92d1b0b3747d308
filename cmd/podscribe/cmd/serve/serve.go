package serve

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"podscribe/internal/api/server"
	"podscribe/internal/app"
	"podscribe/internal/config"
	"podscribe/internal/logger"
)

var configPath string

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcription HTTP API",
	Long: `Run the transcription HTTP API.

Jobs are submitted over POST /api/v1/jobs and observed through the
progress and result endpoints until they are evicted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		zl := logger.MustNew(cfg.Server.Environment != "production")
		defer zl.Sync()

		controller := app.InitializeController(cfg, zl)
		controller.Start()
		defer controller.Stop()

		srv := server.NewServer(server.Config{
			Host:        cfg.Server.Host,
			Port:        cfg.Server.Port,
			ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
			IdleTimeout: time.Duration(cfg.Server.IdleTimeout) * time.Second,
			Environment: cfg.Server.Environment,
		}, controller, zl)

		if err := srv.Start(); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		return nil
	},
}
