// Command peoadmin runs the engineering office admin API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"peo_admin/internal/cache"
	"peo_admin/internal/config"
	"peo_admin/internal/logx"
	"peo_admin/internal/ws"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "peoadmin",
	Short:         "Provincial engineering office admin API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "INI config file (environment variables still win)")
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the INI file when --config is given, env only otherwise
func loadConfig() (*config.Config, *logrus.Entry, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromINI(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	logger := logx.New(cfg.Log.Level, cfg.Log.Format)
	return cfg, logrus.NewEntry(logger), nil
}

// newQueries returns the Redis query cache when enabled, a pass-through otherwise.
// The returned close func is always safe to call.
func newQueries(cfg *config.Config, publisher *ws.Publisher, logger *logrus.Entry) (cache.Queries, func() error, error) {
	var broadcaster cache.Broadcaster
	if publisher != nil {
		broadcaster = publisher
	}
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, query cache is pass-through")
		return cache.Nop{Broadcaster: broadcaster}, func() error { return nil }, nil
	}

	rdb, err := cache.Dial(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("✓ Redis connected (%s)", cfg.Redis.Addr)
	ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
	return cache.NewRedisQueries(rdb, ttl, broadcaster, logger), rdb.Close, nil
}
