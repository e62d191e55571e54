package telegram

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/capitalmind/bot/core/logger"
	tghelpers "github.com/capitalmind/bot/core/telegram/helpers"
	"github.com/capitalmind/bot/internal/domain"
)

const cbBuyPro = "buy_pro"

// PaymentsConfig describes the single PRO invoice the bot sells.
// Payments use Telegram's in-app currency (Stars), so no provider token is
// required.
type PaymentsConfig struct {
	Currency     string `yaml:"currency" envconfig:"PAY_CURRENCY"`
	PriceStars   int    `yaml:"price_stars" envconfig:"PAY_PRICE_STARS"`
	PayloadID    string `yaml:"payload_id" envconfig:"PAY_PAYLOAD_ID"`
	DurationDays int    `yaml:"duration_days" envconfig:"PAY_DURATION_DAYS"`
}

// Normalize applies defaults for unset payment fields.
func (c *PaymentsConfig) Normalize() {
	if c.Currency == "" {
		c.Currency = "XTR"
	}
	if c.PriceStars <= 0 {
		c.PriceStars = 250
	}
	if c.PayloadID == "" {
		c.PayloadID = "capitalmind-pro"
	}
	if c.DurationDays <= 0 {
		c.DurationDays = 30
	}
}

// onBuyPro answers the inline PRO button with an invoice.
func (h *Handlers) onBuyPro(c tele.Context) error {
	inv := &tele.Invoice{
		Title:       "CapitalMind PRO",
		Description: fmt.Sprintf("Unlimited answers for %d days", h.payments.DurationDays),
		Payload:     h.payments.PayloadID,
		Currency:    h.payments.Currency,
		Prices: []tele.Price{
			{Label: fmt.Sprintf("PRO, %d days", h.payments.DurationDays), Amount: h.payments.PriceStars},
		},
	}
	return c.Send(inv)
}

// onCheckout validates the pre-checkout query against the expected invoice.
// Mismatches are rejected before any money moves.
func (h *Handlers) onCheckout(c tele.Context) error {
	q := c.PreCheckoutQuery()
	if q == nil {
		return nil
	}
	if err := h.validatePayment(q.Payload, q.Currency, q.Total); err != nil {
		logger.SVCBilling.Warn("pre-checkout rejected",
			slog.String("event", "payment.precheckout"),
			slog.Int64("user_id", q.Sender.ID),
			slog.String("err", err.Error()),
		)
		return c.Accept("This invoice is no longer valid. Please request a new one.")
	}
	return c.Accept()
}

// onPayment handles the successful-payment event: it re-validates the
// callback fields and only then extends the entitlement.
func (h *Handlers) onPayment(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Payment.Payload == "" {
		return nil
	}
	pay := msg.Payment
	ctx := tghelpers.BuildContext(c)

	if err := h.validatePayment(pay.Payload, pay.Currency, pay.Total); err != nil {
		// Silent to the payer-facing flow, loud for operators.
		logger.SVCBilling.Error("payment rejected",
			slog.String("event", "payment.confirm"),
			slog.Int64("user_id", c.Sender().ID),
			slog.String("currency", pay.Currency),
			slog.Int("amount", pay.Total),
			slog.String("err", err.Error()),
		)
		return nil
	}

	until, err := h.quota.Grant(ctx, c.Sender().ID, h.payments.DurationDays, time.Now())
	if err != nil {
		return h.reportFailure(c, err)
	}
	logger.SVCBilling.Info("payment confirmed",
		slog.String("event", "payment.confirm"),
		slog.Int64("user_id", c.Sender().ID),
		slog.String("currency", pay.Currency),
		slog.Int("amount", pay.Total),
		slog.String("pro_until", until.UTC().Format(time.RFC3339)),
	)
	return tghelpers.SendText(c,
		"🎉 <b>PRO activated!</b>\nUnlimited answers until "+until.UTC().Format("2006-01-02")+" 🚀",
		&tele.SendOptions{ParseMode: tele.ModeHTML},
	)
}

func (h *Handlers) validatePayment(payload, currency string, total int) error {
	if payload != h.payments.PayloadID {
		return &domain.PaymentMismatchError{Field: "payload", Got: payload, Want: h.payments.PayloadID}
	}
	if currency != h.payments.Currency {
		return &domain.PaymentMismatchError{Field: "currency", Got: currency, Want: h.payments.Currency}
	}
	if total != h.payments.PriceStars {
		return &domain.PaymentMismatchError{Field: "amount", Got: strconv.Itoa(total), Want: strconv.Itoa(h.payments.PriceStars)}
	}
	return nil
}
