package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration. It is populated once at
// startup and treated as immutable afterwards.
type Config struct {
	// Timeframes and bar limits
	EntryTF    string `env:"ENTRY_TF" envDefault:"4H"`
	DailyTF    string `env:"DAILY_TF" envDefault:"1D"`
	ExecTF     string `env:"EXEC_TF" envDefault:"15m"`
	EntryLimit int    `env:"ENTRY_LIMIT" envDefault:"200"`
	DailyLimit int    `env:"DAILY_LIMIT" envDefault:"200"`
	ExecLimit  int    `env:"EXEC_LIMIT" envDefault:"200"`
	MinBars    int    `env:"MIN_BARS" envDefault:"50"`

	// Indicators
	SupertrendPeriod int     `env:"SUPERTREND_PERIOD" envDefault:"10"`
	SupertrendMult   float64 `env:"SUPERTREND_MULT" envDefault:"3.0"`
	VOFast           int     `env:"VO_FAST" envDefault:"14"`
	VOSlow           int     `env:"VO_SLOW" envDefault:"28"`

	// Support / resistance
	SRLookback int     `env:"SR_LOOKBACK" envDefault:"5"`
	ZoneBuffer float64 `env:"ZONE_BUFFER" envDefault:"0.01"`

	// Targets (R-multiples of the entry-to-stop distance)
	TP1R float64 `env:"TP1_R" envDefault:"0.8"`
	TP2R float64 `env:"TP2_R" envDefault:"2.0"`

	// Score thresholds and flow confirmation
	SpotMinScore       int `env:"SPOT_MIN_SCORE" envDefault:"70"`
	FuturesMinScore    int `env:"FUTURES_MIN_SCORE" envDefault:"80"`
	ADLConfirmLookback int `env:"ADL_CONFIRM_LOOKBACK" envDefault:"10"`

	// Futures safe mode
	FuturesRiskPct       float64 `env:"FUTURES_RISK_PCT" envDefault:"0.005"`
	FuturesLeverage      float64 `env:"FUTURES_LEVERAGE" envDefault:"50"`
	FuturesMaxSL         float64 `env:"FUTURES_MAX_SL" envDefault:"0.015"`
	FuturesNotionalUsage float64 `env:"FUTURES_MAX_NOTIONAL" envDefault:"0.25"`
	MaxEntryDeviation    float64 `env:"MAX_ENTRY_DEVIATION" envDefault:"0.01"`

	// Scanner
	ScanIntervalSec    int      `env:"SCAN_INTERVAL_SEC" envDefault:"300"`
	ScanRatePerSec     int      `env:"SCAN_RATE_PER_SEC" envDefault:"5"`
	MaxScanSymbols     int      `env:"MAX_SCAN_SYMBOLS" envDefault:"120"`
	SpotSymbols        []string `env:"SPOT_SYMBOLS"`
	FuturesSymbols     []string `env:"FUTURES_SYMBOLS"`
	ScanBalance        float64  `env:"SCAN_BALANCE" envDefault:"10000"`
	SpotCooldownMin    int      `env:"SPOT_COOLDOWN_MIN" envDefault:"240"`
	FuturesCooldownMin int      `env:"FUTURES_COOLDOWN_MIN" envDefault:"120"`
	CooldownFile       string   `env:"COOLDOWN_FILE" envDefault:"cooldown.json"`

	// Trading-hour windows, WIB hours, half-open [start, end)
	DangerStartHour  int `env:"DANGER_START_HOUR" envDefault:"0"`
	DangerEndHour    int `env:"DANGER_END_HOUR" envDefault:"5"`
	SpotStartHour    int `env:"SPOT_START_HOUR" envDefault:"8"`
	SpotEndHour      int `env:"SPOT_END_HOUR" envDefault:"23"`
	FuturesStartHour int `env:"FUTURES_START_HOUR" envDefault:"19"`
	FuturesEndHour   int `env:"FUTURES_END_HOUR" envDefault:"24"`

	// External services
	OKXBaseURL       string `env:"OKX_BASE_URL" envDefault:"https://www.okx.com"`
	RequestTimeout   int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec   int    `env:"REQUESTS_PER_SEC" envDefault:"5"`
	DatabaseURL      string `env:"DATABASE_URL"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load initializes configuration from environment variables.
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Config{
		EntryTF:    getEnvWithDefault("ENTRY_TF", "4H"),
		DailyTF:    getEnvWithDefault("DAILY_TF", "1D"),
		ExecTF:     getEnvWithDefault("EXEC_TF", "15m"),
		EntryLimit: getEnvIntWithDefault("ENTRY_LIMIT", 200),
		DailyLimit: getEnvIntWithDefault("DAILY_LIMIT", 200),
		ExecLimit:  getEnvIntWithDefault("EXEC_LIMIT", 200),
		MinBars:    getEnvIntWithDefault("MIN_BARS", 50),

		SupertrendPeriod: getEnvIntWithDefault("SUPERTREND_PERIOD", 10),
		SupertrendMult:   getEnvFloatWithDefault("SUPERTREND_MULT", 3.0),
		VOFast:           getEnvIntWithDefault("VO_FAST", 14),
		VOSlow:           getEnvIntWithDefault("VO_SLOW", 28),

		SRLookback: getEnvIntWithDefault("SR_LOOKBACK", 5),
		ZoneBuffer: getEnvFloatWithDefault("ZONE_BUFFER", 0.01),

		TP1R: getEnvFloatWithDefault("TP1_R", 0.8),
		TP2R: getEnvFloatWithDefault("TP2_R", 2.0),

		SpotMinScore:       getEnvIntWithDefault("SPOT_MIN_SCORE", 70),
		FuturesMinScore:    getEnvIntWithDefault("FUTURES_MIN_SCORE", 80),
		ADLConfirmLookback: getEnvIntWithDefault("ADL_CONFIRM_LOOKBACK", 10),

		FuturesRiskPct:       getEnvFloatWithDefault("FUTURES_RISK_PCT", 0.005),
		FuturesLeverage:      getEnvFloatWithDefault("FUTURES_LEVERAGE", 50),
		FuturesMaxSL:         getEnvFloatWithDefault("FUTURES_MAX_SL", 0.015),
		FuturesNotionalUsage: getEnvFloatWithDefault("FUTURES_MAX_NOTIONAL", 0.25),
		MaxEntryDeviation:    getEnvFloatWithDefault("MAX_ENTRY_DEVIATION", 0.01),

		ScanIntervalSec:    getEnvIntWithDefault("SCAN_INTERVAL_SEC", 300),
		ScanRatePerSec:     getEnvIntWithDefault("SCAN_RATE_PER_SEC", 5),
		MaxScanSymbols:     getEnvIntWithDefault("MAX_SCAN_SYMBOLS", 120),
		SpotSymbols:        getEnvListWithDefault("SPOT_SYMBOLS", defaultSpotSymbols),
		FuturesSymbols:     getEnvListWithDefault("FUTURES_SYMBOLS", defaultFuturesSymbols),
		ScanBalance:        getEnvFloatWithDefault("SCAN_BALANCE", 10000),
		SpotCooldownMin:    getEnvIntWithDefault("SPOT_COOLDOWN_MIN", 240),
		FuturesCooldownMin: getEnvIntWithDefault("FUTURES_COOLDOWN_MIN", 120),
		CooldownFile:       getEnvWithDefault("COOLDOWN_FILE", "cooldown.json"),

		DangerStartHour:  getEnvIntWithDefault("DANGER_START_HOUR", 0),
		DangerEndHour:    getEnvIntWithDefault("DANGER_END_HOUR", 5),
		SpotStartHour:    getEnvIntWithDefault("SPOT_START_HOUR", 8),
		SpotEndHour:      getEnvIntWithDefault("SPOT_END_HOUR", 23),
		FuturesStartHour: getEnvIntWithDefault("FUTURES_START_HOUR", 19),
		FuturesEndHour:   getEnvIntWithDefault("FUTURES_END_HOUR", 24),

		OKXBaseURL:       getEnvWithDefault("OKX_BASE_URL", "https://www.okx.com"),
		RequestTimeout:   getEnvIntWithDefault("REQUEST_TIMEOUT", 30),
		RequestsPerSec:   getEnvIntWithDefault("REQUESTS_PER_SEC", 5),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on parameters no evaluation could run with.
func (c *Config) Validate() error {
	if c.EntryLimit <= 0 || c.DailyLimit <= 0 || c.ExecLimit <= 0 {
		return fmt.Errorf("config: bar limits must be positive")
	}
	// The execution-confirmation gate reads three bars back.
	if c.MinBars < 3 {
		return fmt.Errorf("config: MIN_BARS must be at least 3")
	}
	if c.SupertrendPeriod <= 0 || c.VOFast <= 0 || c.VOSlow <= 0 {
		return fmt.Errorf("config: indicator periods must be positive")
	}
	if c.SRLookback <= 0 {
		return fmt.Errorf("config: SR_LOOKBACK must be positive")
	}
	if c.ADLConfirmLookback <= 0 {
		return fmt.Errorf("config: ADL_CONFIRM_LOOKBACK must be positive")
	}
	// Any series the data gate accepts must cover the flow lookback.
	if c.ADLConfirmLookback >= c.MinBars {
		return fmt.Errorf("config: ADL_CONFIRM_LOOKBACK must be below MIN_BARS")
	}
	if c.FuturesRiskPct <= 0 || c.FuturesMaxSL <= 0 || c.FuturesLeverage <= 0 || c.FuturesNotionalUsage <= 0 {
		return fmt.Errorf("config: futures risk parameters must be positive")
	}
	windows := [][2]int{
		{c.DangerStartHour, c.DangerEndHour},
		{c.SpotStartHour, c.SpotEndHour},
		{c.FuturesStartHour, c.FuturesEndHour},
	}
	for _, w := range windows {
		if w[0] < 0 || w[1] > 24 || w[0] >= w[1] {
			return fmt.Errorf("config: hour windows must satisfy 0 <= start < end <= 24")
		}
	}
	return nil
}

// Default scan universes (OKX instrument IDs).
var (
	defaultSpotSymbols = []string{
		"BTC-USDT", "ETH-USDT", "SOL-USDT", "BNB-USDT",
		"XRP-USDT", "ADA-USDT", "DOGE-USDT", "AVAX-USDT",
	}
	defaultFuturesSymbols = []string{
		"BTC-USDT-SWAP", "ETH-USDT-SWAP", "SOL-USDT-SWAP",
	}
)

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
