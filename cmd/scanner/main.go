package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"crypto-signal-scanner/config"
	"crypto-signal-scanner/internal/cooldown"
	"crypto-signal-scanner/internal/history"
	"crypto-signal-scanner/internal/market/okx"
	"crypto-signal-scanner/internal/notify"
	"crypto-signal-scanner/internal/scanner"
	"crypto-signal-scanner/internal/schedule"
	sigengine "crypto-signal-scanner/internal/signal"
)

func init() {
	if err := godotenv.Load(); err != nil {
		zlog.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Invalid configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
	zlog.Logger = logger

	market := okx.NewClient(okx.ClientOptions{
		BaseURL:        cfg.OKXBaseURL,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})

	hours := schedule.Policy{
		DangerWindow:  schedule.Window{Start: cfg.DangerStartHour, End: cfg.DangerEndHour},
		SpotWindow:    schedule.Window{Start: cfg.SpotStartHour, End: cfg.SpotEndHour},
		FuturesWindow: schedule.Window{Start: cfg.FuturesStartHour, End: cfg.FuturesEndHour},
	}
	engine := sigengine.New(cfg, market, hours)

	var store scanner.SignalStore
	if cfg.DatabaseURL != "" {
		s, err := history.New(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize signal history")
		}
		defer s.Close()
		store = s
	} else {
		logger.Warn().Msg("DATABASE_URL not set, signal history disabled")
	}

	var alerts scanner.Alerter
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		n, err := notify.New(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Telegram notifier")
		}
		alerts = n
	} else {
		logger.Warn().Msg("Telegram credentials not set, alerts disabled")
	}

	scan := scanner.New(cfg, engine, hours, market, store, alerts, cooldown.New(cfg.CooldownFile))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := scan.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Msg("Scanner failed")
	}
}
