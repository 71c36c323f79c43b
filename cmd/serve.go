package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/steviethebear/codex-machina-sub002/internal/ai"
	"github.com/steviethebear/codex-machina-sub002/internal/app"
	"github.com/steviethebear/codex-machina-sub002/internal/database"
	"github.com/steviethebear/codex-machina-sub002/internal/handler"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reward scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required to serve")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		client, err := ai.NewClient(ctx, cfg.AI, models.EmbeddingDimensions)
		if err != nil {
			return err
		}
		if !cfg.AI.Enabled() {
			logger.Warn("AI api key not set: embeddings disabled, quality scores degraded")
		}

		application := app.New(db, cfg, client)

		if cfg.Scheduler.Enabled {
			if err := application.Scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer application.Scheduler.Stop()
		}

		gin.SetMode(cfg.Server.Mode)
		router := handler.NewRouter(application.Services, cfg.Auth.JWTSecret)

		server := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		}

		go func() {
			logger.Info("Server starting on port ", cfg.Server.Port)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Server failed:", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error:", err)
		}

		logger.Info("Server stopped")
		return nil
	},
}
