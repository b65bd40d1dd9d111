// Command analyzer runs a single-symbol diagnostic evaluation and prints
// every computed field plus the reasons for each failed gate.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"crypto-signal-scanner/config"
	"crypto-signal-scanner/internal/market/okx"
	"crypto-signal-scanner/internal/schedule"
	sigengine "crypto-signal-scanner/internal/signal"
	"crypto-signal-scanner/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		zlog.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s SYMBOL SPOT|FUTURES [balance]\n", os.Args[0])
		os.Exit(2)
	}
	symbol := os.Args[1]
	mode := models.Mode(strings.ToUpper(os.Args[2]))

	balance := 10000.0
	if len(os.Args) > 3 {
		v, err := strconv.ParseFloat(os.Args[3], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid balance %q\n", os.Args[3])
			os.Exit(2)
		}
		balance = v
	}

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Invalid configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zlog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	eval, err := engine.Evaluate(ctx, symbol, mode, balance, sigengine.CollectAll)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Evaluation failed")
	}

	out, err := json.MarshalIndent(eval, "", "  ")
	if err != nil {
		zlog.Fatal().Err(err).Msg("Encoding result failed")
	}
	fmt.Println(string(out))
}
