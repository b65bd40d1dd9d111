package models

import (
	"time"
)

// Candle represents a single OHLCV bar. Timestamp is the bar open time in
// unix milliseconds; every series handed around is ordered oldest first.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Mode selects between spot and leveraged evaluation rules.
type Mode string

const (
	ModeSpot    Mode = "SPOT"
	ModeFutures Mode = "FUTURES"
)

// Direction of a proposed trade.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Regime is a discrete market-phase classification.
type Regime string

const (
	RegimeChop         Regime = "REGIME_CHOP"
	RegimeMarkdown     Regime = "REGIME_MARKDOWN"
	RegimeDistribution Regime = "REGIME_DISTRIBUTION"
	RegimeMarkup       Regime = "REGIME_MARKUP"
	RegimeAccumulation Regime = "REGIME_ACCUMULATION"
)

// ScoreBreakdown holds the components of the institutional quality score.
// Structure is capped at 40, Volume and ADL at 30; Total is their sum.
type ScoreBreakdown struct {
	Structure int `json:"structure_score"`
	Volume    int `json:"volume_score"`
	ADL       int `json:"adl_score"`
	Total     int `json:"total_score"`
}

// RegimeShift is an advisory event flagged by the shift detector,
// independent of the regime tag itself.
type RegimeShift struct {
	Type    string `json:"type"` // SHIFT_TO_MARKDOWN or SHIFT_TO_MARKUP
	Message string `json:"message"`
}

const (
	ShiftToMarkdown = "SHIFT_TO_MARKDOWN"
	ShiftToMarkup   = "SHIFT_TO_MARKUP"
)

// Phase labels carried on emitted trade plans.
const (
	PhaseAccumulation = "INSTITUTIONAL_ACCUMULATION"
	PhaseDistribution = "INSTITUTIONAL_DISTRIBUTION"
)

// TradePlan is the terminal success value of an evaluation. It is immutable
// once emitted; consumers persist or format it but never mutate it.
// SLInvalidation (the raw structural level, before the zone buffer) and
// PositionSize are only set for futures plans.
type TradePlan struct {
	CreatedAt      time.Time      `json:"created_at"`
	Symbol         string         `json:"symbol"`
	Mode           Mode           `json:"mode"`
	Direction      Direction      `json:"direction"`
	Phase          string         `json:"phase"`
	Regime         Regime         `json:"regime"`
	Score          ScoreBreakdown `json:"score"`
	Entry          float64        `json:"entry"`
	SL             float64        `json:"sl"`
	SLInvalidation float64        `json:"sl_invalidation,omitempty"`
	TP1            float64        `json:"tp1"`
	TP2            float64        `json:"tp2"`
	PositionSize   float64        `json:"position_size,omitempty"`
}

// AdvisoryType distinguishes advisory-only evaluation outcomes.
type AdvisoryType string

const (
	AdvisoryRegimeShift   AdvisoryType = "REGIME_SHIFT"
	AdvisoryMarketWarning AdvisoryType = "MARKET_WARNING"
)

// Advisory is an informational evaluation outcome: no trade plan this
// cycle, but something worth surfacing (regime transition, spot warning).
type Advisory struct {
	Type    AdvisoryType `json:"type"`
	Symbol  string       `json:"symbol"`
	Mode    Mode         `json:"mode"`
	Regime  Regime       `json:"regime"`
	Message string       `json:"message"`
}

// Rejection carries the partial state of a halted evaluation. Trend and
// Score are zero values when the halt happened before they were computed.
// Reasons is ordered by gate position.
type Rejection struct {
	Symbol  string         `json:"symbol"`
	Mode    Mode           `json:"mode"`
	Trend   Direction      `json:"trend,omitempty"`
	Score   ScoreBreakdown `json:"score"`
	Reasons []string       `json:"reasons"`
}

// Evaluation is the tagged result of one pipeline run: exactly one of
// Plan, Advisory or Rejection is non-nil.
type Evaluation struct {
	Plan      *TradePlan `json:"plan,omitempty"`
	Advisory  *Advisory  `json:"advisory,omitempty"`
	Rejection *Rejection `json:"rejection,omitempty"`
}

// Signal lifecycle statuses used by the history store.
const (
	StatusOpen   = "OPEN"
	StatusTP1Hit = "TP1 HIT"
	StatusTP2Hit = "TP2 HIT"
	StatusSLHit  = "SL HIT"
)
