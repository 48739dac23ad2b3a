package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	v1 "peo_admin/api/v1"
	"peo_admin/internal/auth"
	"peo_admin/internal/db"
	"peo_admin/internal/httpx"
	"peo_admin/internal/session"
	"peo_admin/internal/storage"
	"peo_admin/internal/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load configuration
	cfg, logger, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Info("✓ Configuration loaded")
	auth.InitJWT(cfg.JWT.Secret)

	// 2. Initialize MySQL
	gdb, err := db.InitMySQL(cfg.MySQL.DSN, logger.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		logger.Info("✓ Database migrated")
	}

	// 3. Push events and query cache
	publisher := ws.NewPublisher(gdb, logger)
	queries, closeQueries, err := newQueries(cfg, publisher, logger)
	if err != nil {
		return err
	}
	defer closeQueries()

	files, err := storage.NewLocal(cfg.Upload.Dir, int64(cfg.Upload.MaxMB)<<20)
	if err != nil {
		return err
	}

	// 4. Background workers
	sessions := session.NewService(gdb)
	if cfg.SessionSweeper.Enabled {
		sweeper := session.NewSweeper(&session.SweeperConfig{
			Service:     sessions,
			Logger:      logger,
			IntervalSec: cfg.SessionSweeper.IntervalSec,
		})
		sweeper.Start()
		defer sweeper.Stop()
	}

	// 5. Router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestLogger(logger))
	r.MaxMultipartMemory = 8 << 20

	if cfg.WS.Enabled {
		hub := ws.NewHub(publisher, sessions, logger)
		hub.Serve()
		defer hub.Close()
		r.Any("/socket.io/*any", gin.WrapH(hub.Handler()))
	}

	v1.SetupRouter(r, v1.Deps{
		DB:      gdb,
		Config:  cfg,
		Queries: queries,
		Files:   files,
		Events:  publisher,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("✓ Server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
