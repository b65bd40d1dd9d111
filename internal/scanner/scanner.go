// Package scanner drives the cron-like bulk scan: every interval it sweeps
// open signals against fresh prices, then evaluates the futures and spot
// universes. One symbol failing never aborts the rest of the batch.
package scanner

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"crypto-signal-scanner/config"
	"crypto-signal-scanner/internal/cooldown"
	"crypto-signal-scanner/internal/history"
	"crypto-signal-scanner/internal/schedule"
	"crypto-signal-scanner/internal/signal"
	"crypto-signal-scanner/models"
)

// PriceSource supplies the latest traded price for the auto-close sweep.
type PriceSource interface {
	LastPrice(ctx context.Context, instID string) (float64, error)
}

// SignalStore persists emitted plans and tracks their lifecycle.
type SignalStore interface {
	Save(plan *models.TradePlan) (bool, error)
	Open() ([]history.OpenSignal, error)
	SetStatus(id int64, status string) error
}

// Alerter delivers evaluation outcomes.
type Alerter interface {
	SendPlan(plan *models.TradePlan) error
	SendAdvisory(a *models.Advisory) error
	SendStatus(symbol string, mode models.Mode, status string, price float64) error
}

// Scanner runs the scan loop. Store and Alerts may be nil, in which case
// persistence and delivery are skipped.
type Scanner struct {
	cfg      *config.Config
	engine   *signal.Engine
	hours    schedule.Policy
	prices   PriceSource
	store    SignalStore
	alerts   Alerter
	cooldown *cooldown.Tracker
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// New assembles a scanner over the shared engine and collaborators.
func New(cfg *config.Config, engine *signal.Engine, hours schedule.Policy, prices PriceSource, store SignalStore, alerts Alerter, cd *cooldown.Tracker) *Scanner {
	perSec := cfg.ScanRatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	return &Scanner{
		cfg:      cfg,
		engine:   engine,
		hours:    hours,
		prices:   prices,
		store:    store,
		alerts:   alerts,
		cooldown: cd,
		limiter:  rate.NewLimiter(rate.Every(time.Second/time.Duration(perSec)), 1),
		logger:   log.With().Str("component", "scanner").Logger(),
	}
}

// Run executes scan cycles until the context is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.ScanIntervalSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("Scanner started")
	s.Cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scanner stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Cycle(ctx)
		}
	}
}

// Cycle runs one maintenance sweep followed by both market scans.
func (s *Scanner) Cycle(ctx context.Context) {
	if err := s.Sweep(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Auto-close sweep failed")
	}
	s.Scan(ctx, models.ModeFutures)
	s.Scan(ctx, models.ModeSpot)
	s.logger.Info().Msg("Cycle complete")
}

// Scan evaluates every symbol of the mode's universe inside its optimal
// hours window.
func (s *Scanner) Scan(ctx context.Context, mode models.Mode) {
	if mode == models.ModeFutures && !s.hours.OptimalFutures() {
		s.logger.Debug().Msg("FUTURES outside optimal hours, skipping")
		return
	}
	if mode == models.ModeSpot && !s.hours.OptimalSpot() {
		s.logger.Debug().Msg("SPOT outside optimal hours, skipping")
		return
	}

	symbols := s.cfg.SpotSymbols
	if mode == models.ModeFutures {
		symbols = s.cfg.FuturesSymbols
	}
	if len(symbols) > s.cfg.MaxScanSymbols {
		symbols = symbols[:s.cfg.MaxScanSymbols]
	}

	s.logger.Info().Str("mode", string(mode)).Int("symbols", len(symbols)).Msg("Scanning")

	window := time.Duration(s.cfg.SpotCooldownMin) * time.Minute
	if mode == models.ModeFutures {
		window = time.Duration(s.cfg.FuturesCooldownMin) * time.Minute
	}

	for _, symbol := range symbols {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		if s.cooldown.Active(symbol, mode, window) {
			continue
		}

		eval, err := s.engine.Evaluate(ctx, symbol, mode, s.cfg.ScanBalance, signal.FailFast)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Evaluation error")
			continue
		}

		switch {
		case eval.Plan != nil:
			s.emit(eval.Plan)
		case eval.Advisory != nil && eval.Advisory.Type == models.AdvisoryRegimeShift:
			s.advise(eval.Advisory)
		}
	}
}

func (s *Scanner) emit(plan *models.TradePlan) {
	if s.store != nil {
		saved, err := s.store.Save(plan)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", plan.Symbol).Msg("Failed to persist signal")
			return
		}
		if !saved {
			// An open signal for this setup already exists.
			return
		}
	}

	s.logger.Info().
		Str("symbol", plan.Symbol).
		Str("direction", string(plan.Direction)).
		Int("score", plan.Score.Total).
		Str("regime", string(plan.Regime)).
		Msg("Signal emitted")

	if s.alerts != nil {
		if err := s.alerts.SendPlan(plan); err != nil {
			s.logger.Error().Err(err).Str("symbol", plan.Symbol).Msg("Telegram delivery failed")
		}
	}
	if err := s.cooldown.Set(plan.Symbol, plan.Mode); err != nil {
		s.logger.Warn().Err(err).Str("symbol", plan.Symbol).Msg("Failed to record cooldown")
	}
}

func (s *Scanner) advise(a *models.Advisory) {
	s.logger.Info().
		Str("symbol", a.Symbol).
		Str("type", string(a.Type)).
		Str("regime", string(a.Regime)).
		Msg("Advisory")

	if s.alerts != nil {
		if err := s.alerts.SendAdvisory(a); err != nil {
			s.logger.Error().Err(err).Str("symbol", a.Symbol).Msg("Telegram delivery failed")
		}
	}
}

// Sweep advances open signals whose TP or SL traded through.
func (s *Scanner) Sweep(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	open, err := s.store.Open()
	if err != nil {
		return err
	}

	for _, sig := range open {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		price, err := s.prices.LastPrice(ctx, sig.Symbol)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", sig.Symbol).Msg("Price fetch failed, skipping")
			continue
		}

		status := history.Resolve(sig, price)
		if status == "" {
			continue
		}
		if err := s.store.SetStatus(sig.ID, status); err != nil {
			s.logger.Error().Err(err).Int64("id", sig.ID).Msg("Failed to update signal status")
			continue
		}

		s.logger.Info().
			Str("symbol", sig.Symbol).
			Str("status", status).
			Float64("price", price).
			Msg("Signal closed")

		if s.alerts != nil {
			if err := s.alerts.SendStatus(sig.Symbol, sig.Mode, status, price); err != nil {
				s.logger.Error().Err(err).Str("symbol", sig.Symbol).Msg("Telegram delivery failed")
			}
		}
	}
	return nil
}
