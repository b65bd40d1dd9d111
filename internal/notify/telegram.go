// Package notify formats evaluation outcomes and delivers them to a
// Telegram chat.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"crypto-signal-scanner/models"
)

// Notifier sends alerts to a fixed chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// New creates a notifier for the given bot token and chat.
func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}

	logger := log.With().Str("component", "notifier").Logger()
	logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")

	return &Notifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// SendPlan delivers a formatted trade plan.
func (n *Notifier) SendPlan(plan *models.TradePlan) error {
	return n.send(FormatPlan(plan))
}

// SendAdvisory delivers a regime-shift or market-warning advisory.
func (n *Notifier) SendAdvisory(a *models.Advisory) error {
	return n.send(FormatAdvisory(a))
}

// SendStatus delivers a signal lifecycle update (TP/SL hit).
func (n *Notifier) SendStatus(symbol string, mode models.Mode, status string, price float64) error {
	return n.send(fmt.Sprintf("%s %s\n%s @ %g", symbol, mode, status, price))
}

func (n *Notifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("Failed to send telegram message")
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}

// FormatPlan renders a trade plan as a Telegram message.
func FormatPlan(plan *models.TradePlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "TRADE SIGNAL — %s %s\n", plan.Symbol, plan.Mode)
	fmt.Fprintf(&b, "Direction: %s\n", plan.Direction)
	fmt.Fprintf(&b, "Phase: %s\n", plan.Phase)
	fmt.Fprintf(&b, "Regime: %s\n", plan.Regime)
	fmt.Fprintf(&b, "Score: %d (S%d/V%d/A%d)\n",
		plan.Score.Total, plan.Score.Structure, plan.Score.Volume, plan.Score.ADL)
	fmt.Fprintf(&b, "Entry: %g\n", plan.Entry)
	fmt.Fprintf(&b, "SL: %g\n", plan.SL)
	if plan.SLInvalidation != 0 {
		fmt.Fprintf(&b, "Invalidation: %g\n", plan.SLInvalidation)
	}
	fmt.Fprintf(&b, "TP1: %g\n", plan.TP1)
	fmt.Fprintf(&b, "TP2: %g", plan.TP2)
	if plan.PositionSize > 0 {
		fmt.Fprintf(&b, "\nPosition: %.2f USDT", plan.PositionSize)
	}

	return b.String()
}

// FormatAdvisory renders an advisory as a Telegram message.
func FormatAdvisory(a *models.Advisory) string {
	return fmt.Sprintf("%s — %s %s\nRegime: %s\n%s",
		a.Type, a.Symbol, a.Mode, a.Regime, a.Message)
}
