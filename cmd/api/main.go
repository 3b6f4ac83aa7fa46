package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/cache"
	"github.com/pilotify/pilotify-api/internal/config"
	"github.com/pilotify/pilotify-api/internal/db"
	"github.com/pilotify/pilotify-api/internal/logger"
	"github.com/pilotify/pilotify-api/internal/realtime"
	"github.com/pilotify/pilotify-api/internal/server"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "pilotify",
	Short:         "Pilotify API server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and serve the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo innovator, corporate and admin accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		n, err := db.Seed(cmd.Context(), gdb)
		if err != nil {
			return err
		}
		log.Info("seed complete", zap.Int("created", n))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log)
	gdb, err := db.Connect(cfg.Database, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, gdb, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := db.Migrate(gdb); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(log)
	go hub.Run(ctx)

	deps := server.Deps{
		Config:   cfg,
		DB:       gdb,
		Log:      log,
		Hub:      hub,
		Notifier: realtime.HubNotifier{Hub: hub},
		Cache:    cache.Nop{},
	}
	if cfg.Redis.Enabled() {
		rdb, err := realtime.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		go realtime.Subscribe(ctx, rdb, hub, log.Named("notify"))
		deps.Notifier = realtime.RedisNotifier{RDB: rdb, Log: log.Named("notify")}
		deps.Cache = cache.NewRedisCache(rdb)
		log.Info("redis enabled", zap.String("addr", cfg.Redis.Addr))
	}

	app := server.New(deps)

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr()))
		errc <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
