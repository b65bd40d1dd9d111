// Package signal implements the evaluation pipeline: a sequential gate
// cascade that either rejects a symbol or emits a fully specified trade
// plan. Each evaluation works on freshly fetched, immutable candle series;
// the engine holds no mutable state between calls.
package signal

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"crypto-signal-scanner/config"
	"crypto-signal-scanner/internal/indicator"
	"crypto-signal-scanner/internal/regime"
	"crypto-signal-scanner/internal/risk"
	"crypto-signal-scanner/internal/scoring"
	"crypto-signal-scanner/models"
)

// MarketData is the fetch contract the pipeline requires from a market-data
// collaborator. Any failure is treated as an immediate evaluation halt;
// retry policy belongs behind this interface, not in the pipeline.
type MarketData interface {
	Candles(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)
}

// HoursPolicy supplies the time-of-day booleans consumed by the pipeline.
type HoursPolicy interface {
	Danger() bool
}

// EvalMode selects the gate-cascade policy: FailFast halts on the first
// failed gate (bulk scanning), CollectAll keeps walking independent gates
// and accumulates every reason (single-symbol diagnostics). Both traverse
// identical gate logic and thresholds.
type EvalMode int

const (
	FailFast EvalMode = iota
	CollectAll
)

// Engine evaluates one symbol/mode pair per call.
type Engine struct {
	cfg    *config.Config
	data   MarketData
	hours  HoursPolicy
	logger zerolog.Logger
}

// New creates an evaluation engine over the given market-data source and
// trading-hours policy.
func New(cfg *config.Config, data MarketData, hours HoursPolicy) *Engine {
	return &Engine{
		cfg:    cfg,
		data:   data,
		hours:  hours,
		logger: log.With().Str("component", "signal_engine").Logger(),
	}
}

// Evaluate runs the full gate cascade for a symbol. The returned Evaluation
// holds exactly one of a trade plan, an advisory, or a rejection with the
// ordered reasons that halted it. An error is returned only for invalid
// call parameters, never for a failed gate.
func (e *Engine) Evaluate(ctx context.Context, symbol string, mode models.Mode, balance float64, evalMode EvalMode) (*models.Evaluation, error) {
	if symbol == "" {
		return nil, fmt.Errorf("evaluate: empty symbol")
	}
	if mode != models.ModeSpot && mode != models.ModeFutures {
		return nil, fmt.Errorf("evaluate: unknown mode %q", mode)
	}
	if balance <= 0 {
		return nil, fmt.Errorf("evaluate: balance must be positive, got %v", balance)
	}

	rej := &models.Rejection{Symbol: symbol, Mode: mode}
	rejected := &models.Evaluation{Rejection: rej}

	// fail records a gate failure; the returned flag tells the caller to
	// halt (always in FailFast mode).
	fail := func(reason string) bool {
		rej.Reasons = append(rej.Reasons, reason)
		return evalMode == FailFast
	}

	// Gate 1: futures kill-switch. Checked before any data is fetched.
	if mode == models.ModeFutures && e.hours.Danger() {
		fail("futures blocked: danger hours")
		return rejected, nil
	}

	// Gate 2: data sufficiency. Fetch failures and short series are
	// terminal for the whole evaluation.
	htf, err := e.data.Candles(ctx, symbol, e.cfg.EntryTF, e.cfg.EntryLimit)
	if err != nil {
		fail(fmt.Sprintf("market data unavailable (%s): %v", e.cfg.EntryTF, err))
		return rejected, nil
	}
	daily, err := e.data.Candles(ctx, symbol, e.cfg.DailyTF, e.cfg.DailyLimit)
	if err != nil {
		fail(fmt.Sprintf("market data unavailable (%s): %v", e.cfg.DailyTF, err))
		return rejected, nil
	}
	var exec []models.Candle
	if mode == models.ModeFutures {
		exec, err = e.data.Candles(ctx, symbol, e.cfg.ExecTF, e.cfg.ExecLimit)
		if err != nil {
			fail(fmt.Sprintf("market data unavailable (%s): %v", e.cfg.ExecTF, err))
			return rejected, nil
		}
	}
	if len(htf) < e.cfg.MinBars || len(daily) < e.cfg.MinBars ||
		(mode == models.ModeFutures && len(exec) < e.cfg.MinBars) {
		fail(fmt.Sprintf("insufficient history: need at least %d bars", e.cfg.MinBars))
		return rejected, nil
	}

	// Gate 3: direction from the final supertrend state.
	_, trend := indicator.Supertrend(htf, e.cfg.SupertrendPeriod, e.cfg.SupertrendMult)
	direction := models.DirectionShort
	if trend[len(trend)-1] == 1 {
		direction = models.DirectionLong
	}
	rej.Trend = direction
	entry := htf[len(htf)-1].Close

	// Gate 4: composite score against the mode threshold.
	score := scoring.Institutional(htf, daily, direction, e.cfg.VOFast, e.cfg.VOSlow)
	rej.Score = score
	minScore := e.cfg.SpotMinScore
	if mode == models.ModeFutures {
		minScore = e.cfg.FuturesMinScore
	}
	if score.Total < minScore {
		if fail(fmt.Sprintf("institutional score %d below %s minimum %d", score.Total, mode, minScore)) {
			return rejected, nil
		}
	}

	// Gate 5: regime tag plus transition advisory. A transition in
	// progress short-circuits the cycle without a trade plan.
	tag := regime.Detect(htf, daily, score)
	if shift := regime.DetectShift(htf, daily); shift != nil {
		if evalMode == FailFast {
			return &models.Evaluation{Advisory: &models.Advisory{
				Type:    models.AdvisoryRegimeShift,
				Symbol:  symbol,
				Mode:    mode,
				Regime:  tag,
				Message: shift.Message,
			}}, nil
		}
		fail(fmt.Sprintf("regime transition in progress: %s", shift.Type))
	}

	// Gate 6: mode/direction permission against the regime.
	if mode == models.ModeSpot {
		if direction == models.DirectionShort {
			if evalMode == FailFast {
				return &models.Evaluation{Advisory: &models.Advisory{
					Type:    models.AdvisoryMarketWarning,
					Symbol:  symbol,
					Mode:    mode,
					Regime:  tag,
					Message: "spot short pressure = distribution, no buy",
				}}, nil
			}
			fail("SPOT does not permit SHORT")
		} else if tag != models.RegimeAccumulation && tag != models.RegimeMarkup {
			if evalMode == FailFast {
				return &models.Evaluation{Advisory: &models.Advisory{
					Type:    models.AdvisoryMarketWarning,
					Symbol:  symbol,
					Mode:    mode,
					Regime:  tag,
					Message: fmt.Sprintf("no buy zone: %s", tag),
				}}, nil
			}
			fail(fmt.Sprintf("regime %s not valid for SPOT", tag))
		}
	} else {
		if direction == models.DirectionLong && tag != models.RegimeAccumulation && tag != models.RegimeMarkup {
			if fail(fmt.Sprintf("LONG not valid in regime %s", tag)) {
				return rejected, nil
			}
		}
		if direction == models.DirectionShort && tag != models.RegimeDistribution && tag != models.RegimeMarkdown {
			if fail(fmt.Sprintf("SHORT not valid in regime %s", tag)) {
				return rejected, nil
			}
		}
	}

	// Gate 7: flow confirmation over the configured lookback. A lookback
	// the series cannot cover never confirms.
	adl := indicator.AccumulationDistribution(htf)
	latest := adl[len(adl)-1]
	prior := latest
	if lb := e.cfg.ADLConfirmLookback; lb < len(adl) {
		prior = adl[len(adl)-1-lb]
	}
	if direction == models.DirectionLong && latest <= prior {
		if fail("flow not confirming accumulation") {
			return rejected, nil
		}
	}
	if direction == models.DirectionShort && latest >= prior {
		if fail("flow not confirming distribution") {
			return rejected, nil
		}
	}

	// Gate 8: structural stop from daily swing levels on the trade side.
	var slLevel, sl float64
	haveLevel := false
	if direction == models.DirectionLong {
		for _, s := range indicator.FindSupport(daily, e.cfg.SRLookback) {
			if s < entry && (!haveLevel || s > slLevel) {
				slLevel, haveLevel = s, true
			}
		}
		if !haveLevel {
			if fail("no valid support structure for stop") {
				return rejected, nil
			}
		} else {
			sl = slLevel * (1 - e.cfg.ZoneBuffer)
		}
	} else {
		for _, r := range indicator.FindResistance(daily, e.cfg.SRLookback) {
			if r > entry && (!haveLevel || r < slLevel) {
				slLevel, haveLevel = r, true
			}
		}
		if !haveLevel {
			if fail("no valid resistance structure for stop") {
				return rejected, nil
			}
		} else {
			sl = slLevel * (1 + e.cfg.ZoneBuffer)
		}
	}

	// Diagnostic mode stops here once anything failed: the remaining
	// stages derive values from state a failed gate invalidated.
	if len(rej.Reasons) > 0 {
		return rejected, nil
	}

	// Gate 9: execution-timeframe confirmation and entry refinement
	// (futures only).
	if mode == models.ModeFutures {
		closes := indicator.Closes(exec)
		ema20 := indicator.EMA(closes, 20)
		ltfClose := closes[len(closes)-1]
		ltfEMA := ema20[len(ema20)-1]
		ref := closes[len(closes)-3]

		if direction == models.DirectionLong && (ltfClose < ltfEMA || ltfClose < ref) {
			if fail("execution timeframe momentum not confirming LONG") {
				return rejected, nil
			}
		}
		if direction == models.DirectionShort && (ltfClose > ltfEMA || ltfClose > ref) {
			if fail("execution timeframe momentum not confirming SHORT") {
				return rejected, nil
			}
		}

		// Anti-chase: the refined entry must stay near the signal price.
		if math.Abs(ltfClose-entry)/entry > e.cfg.MaxEntryDeviation {
			if fail(fmt.Sprintf("execution price deviates more than %.2f%% from signal price",
				e.cfg.MaxEntryDeviation*100)) {
				return rejected, nil
			}
		} else {
			entry = ltfClose
		}

		if (direction == models.DirectionLong && sl >= entry) ||
			(direction == models.DirectionShort && sl <= entry) {
			if fail("refined entry leaves no stop room") {
				return rejected, nil
			}
		}

		if len(rej.Reasons) > 0 {
			return rejected, nil
		}
	}

	// Gate 10: risk-multiple targets.
	var tp1, tp2 float64
	if direction == models.DirectionLong {
		dist := entry - sl
		tp1 = entry + dist*e.cfg.TP1R
		tp2 = entry + dist*e.cfg.TP2R
	} else {
		dist := sl - entry
		tp1 = entry - dist*e.cfg.TP1R
		tp2 = entry - dist*e.cfg.TP2R
	}

	// Gate 11: position sizing (futures only). Zero means risk invalid.
	positionSize := 0.0
	if mode == models.ModeFutures {
		positionSize = risk.PositionSize(risk.Params{
			RiskPct:       e.cfg.FuturesRiskPct,
			MaxStopPct:    e.cfg.FuturesMaxSL,
			Leverage:      e.cfg.FuturesLeverage,
			NotionalUsage: e.cfg.FuturesNotionalUsage,
		}, balance, entry, sl)
		if positionSize <= 0 {
			fail("position size = 0 (risk invalid)")
			return rejected, nil
		}
	}

	phase := models.PhaseAccumulation
	if direction == models.DirectionShort {
		phase = models.PhaseDistribution
	}

	plan := &models.TradePlan{
		CreatedAt:    time.Now().UTC(),
		Symbol:       symbol,
		Mode:         mode,
		Direction:    direction,
		Phase:        phase,
		Regime:       tag,
		Score:        score,
		Entry:        round6(entry),
		SL:           round6(sl),
		TP1:          round6(tp1),
		TP2:          round6(tp2),
		PositionSize: positionSize,
	}
	if mode == models.ModeFutures {
		plan.SLInvalidation = round6(slLevel)
	}

	e.logger.Info().
		Str("symbol", symbol).
		Str("mode", string(mode)).
		Str("direction", string(direction)).
		Int("score", score.Total).
		Str("regime", string(tag)).
		Msg("trade plan emitted")

	return &models.Evaluation{Plan: plan}, nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
