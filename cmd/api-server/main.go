package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"characterhub/internal/auth"
	"characterhub/internal/catalog"
	"characterhub/internal/character"
	"characterhub/internal/httpx"
	synchub "characterhub/internal/sync"
	"characterhub/pkg/database"
	"characterhub/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()

	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db := database.MustOpen(cfg.DB)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(httpx.RequestID(), httpx.Logger(logger), httpx.Recovery(logger))
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub(logger)
	router.GET("/ws", synchub.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.DB.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db":          cfg.DB.Path,
			"catalog":     cfg.Catalog.BaseURL,
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Characters
	remote := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, logger)
	svc := character.NewService(character.NewRepo(db), remote, logger)
	svc.RequireImage = cfg.RequireImage

	var writeGuards []gin.HandlerFunc
	if cfg.Auth.JWTSecret != "" {
		tokens := auth.TokenService{
			Secret:   []byte(cfg.Auth.JWTSecret),
			Issuer:   cfg.Auth.JWTIssuer,
			Duration: cfg.Auth.JWTDuration,
		}
		writeGuards = append(writeGuards, auth.RequireScope(tokens, auth.ScopeWrite))
	} else {
		logger.Warn("CHARACTERHUB_JWT_SECRET not set; write routes are unauthenticated")
	}
	character.NewHandler(svc, hub, logger).RegisterRoutes(router.Group("/characters"), writeGuards...)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	var tcpSrv *synchub.Server
	if cfg.SyncAddr != "" {
		tcpSrv = synchub.NewServer(cfg.SyncAddr, hub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.Stringer("signal", sig))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", zap.Error(err))
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			logger.Warn("tcp shutdown error", zap.Error(err))
		}
	}
	hub.CloseAll()

	wg.Wait()
	logger.Info("servers stopped")
}
