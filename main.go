package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jesa-attendance/applications/notify"
	"jesa-attendance/config"
	"jesa-attendance/controllers"
	"jesa-attendance/db"
	"jesa-attendance/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("attendance service failed: %v", err)
	}
}

func run() error {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return err
	}

	closer, err := logger.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	// --- INITIAL STARTUP LOGGING ---
	logger.Log.Info("[main] program started")
	if !dotenv {
		logger.Log.Info("[main] No .env file found. Continuing with process environment.")
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Log.Error(fmt.Sprintf("[main] Store initialization failed: %v", err))
		return err
	}
	defer store.Close()

	notifier := notify.NewSMSNotifier(logger.Log, notify.Options{
		APIURL:    cfg.SMSAPIURL,
		Token:     cfg.SMSAPIToken,
		SenderID:  cfg.SMSSenderID,
		EventName: cfg.EventName,
		Timeout:   cfg.SMSTimeout,
	})

	e := newServer(cfg, logger.Log)
	controllers.NewAttendeeController(logger.Log, store, notifier, cfg.EventName).Register(e)
	logger.Log.Info("[router] Attendee routes configured under /user.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Log.Info(fmt.Sprintf("[main] Starting Echo server on http://localhost%s", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error(fmt.Sprintf("[main] Server stopped: %v", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("[main] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(cfg config.Config) (db.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverBadger:
		logger.Log.Info(fmt.Sprintf("[main] Opening Badger store at %s", cfg.BadgerDir))
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("error creating data directory: %w", err)
		}
		return db.OpenBadgerStore(cfg.BadgerDir, cfg.DataDir)
	default:
		path := cfg.AttendeesFile()
		logger.Log.Info(fmt.Sprintf("[main] Using JSON store at %s", path))
		if err := db.EnsureDocument(path); err != nil {
			return nil, err
		}
		return db.NewFileStore(path), nil
	}
}

func newServer(cfg config.Config, l *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				l.Error("[http] request failed", append(attrs, "err", v.Error)...)
				return nil
			}
			l.Info("[http] request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))
	return e
}
