package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cardio/cardio/internal/config"
	"github.com/cardio/cardio/internal/domain/history"
	"github.com/cardio/cardio/internal/domain/prediction"
	"github.com/cardio/cardio/internal/ml"
	"github.com/cardio/cardio/internal/platform/db"
	"github.com/cardio/cardio/internal/platform/middleware"
	"github.com/cardio/cardio/internal/platform/telemetry"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "cardio-server",
		Short: "Cardiac risk prediction API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the prediction API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the prediction history store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Destroy and recreate the durable prediction log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			conn, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open history database: %w", err)
			}
			defer conn.Close()

			repo, err := history.NewSQLiteRepo(conn)
			if err != nil {
				return err
			}
			if err := repo.Reset(context.Background()); err != nil {
				return fmt.Errorf("reset history: %w", err)
			}
			fmt.Println("Prediction history reset.")
			return nil
		},
	})

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// History database
	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open history database")
	}
	defer conn.Close()
	logger.Info().Str("path", cfg.DBPath).Msg("opened history database")

	repo, err := history.NewSQLiteRepo(conn)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize history schema")
	}

	// Model artifacts
	bundle, err := ml.Load(cfg.ModelDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load model artifacts")
	}
	scaler, err := prediction.LoadScaler(cfg.ModelDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load preprocessor artifact")
	}
	if scaler == nil {
		logger.Warn().Msg("no preprocessor artifact found, predictions will be refused until one is provided")
	}

	// Telemetry
	metrics := telemetry.New("cardio")
	metrics.ModelsLoaded.Set(float64(bundle.Registry.Len()))

	// Services
	historySvc := history.NewService(repo, cfg.HistoryCacheSize, metrics, logger)
	predictionSvc := prediction.NewService(prediction.NewPreprocessor(scaler), bundle, historySvc, metrics, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutS) * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", "X-Request-ID", prediction.SubjectHeader},
	}))

	// Routes
	prediction.NewHandler(predictionSvc).RegisterRoutes(e)
	history.NewHandler(historySvc, cfg.HistoryMaxLimit).RegisterRoutes(e)
	e.GET("/metrics", metrics.Handler())
	e.GET("/ready", func(c echo.Context) error {
		if err := db.Health(c.Request().Context(), conn); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"service": "cardio-server",
			"version": version,
			"endpoints": map[string]string{
				"predict":       "POST /predict",
				"batch_predict": "POST /batch-predict",
				"health":        "GET /health",
				"model_info":    "GET /model-info",
				"history":       "GET /history/:user_id",
				"metrics":       "GET /metrics",
			},
		})
	})

	// Start server
	addr := ":" + cfg.Port
	logger.Info().
		Str("addr", addr).
		Int("models", bundle.Registry.Len()).
		Bool("preprocessor", scaler != nil).
		Msg("starting server")
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
