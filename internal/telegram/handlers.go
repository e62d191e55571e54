package telegram

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/capitalmind/bot/core/logger"
	tg "github.com/capitalmind/bot/core/telegram"
	"github.com/capitalmind/bot/core/telegram/commands"
	tghelpers "github.com/capitalmind/bot/core/telegram/helpers"
	"github.com/capitalmind/bot/core/telegram/keyboard"
	"github.com/capitalmind/bot/core/telegram/state"
	"github.com/capitalmind/bot/internal/domain"
	"github.com/capitalmind/bot/internal/service/dialog"
	"github.com/capitalmind/bot/internal/service/entitlement"
)

// AccountDirectory is the read-only account lookup used by payment and
// admin flows. It never creates accounts.
type AccountDirectory interface {
	GetUserByTelegramID(ctx context.Context, userID int64) (*domain.UserAccount, error)
}

// Options wires the Telegram handler set.
type Options struct {
	Accounts AccountDirectory
	Dialog   *dialog.Service
	Quota    *entitlement.Engine
	FSM      state.Manager
	AdminID  int64
	Payments PaymentsConfig
}

// Handlers owns every Telegram-facing handler of the bot: commands, menu
// buttons routed through the dialog service, the PRO purchase flow, and the
// admin grant conversation.
type Handlers struct {
	accounts AccountDirectory
	dialog   *dialog.Service
	quota    *entitlement.Engine
	fsm      state.Manager
	adminID  int64
	payments PaymentsConfig
}

// New builds the handler set.
func New(opts Options) *Handlers {
	return &Handlers{
		accounts: opts.Accounts,
		dialog:   opts.Dialog,
		quota:    opts.Quota,
		fsm:      opts.FSM,
		adminID:  opts.AdminID,
		payments: opts.Payments,
	}
}

// Register wires commands, callbacks, and the text fallback into the registry.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.onStart,
		Description: "Start the bot and show the menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.onHelp,
		Description: "How the bot works",
	})
	reg.RegisterCommand("/grant", commands.Command{
		Handler:     h.onGrantCommand,
		Description: "Grant a PRO entitlement",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(cbBuyPro, h.onBuyPro)
	_ = reg.RegisterCallback(cbGrantConfirm, h.onGrantConfirm)
	_ = reg.RegisterCallback(cbGrantCancel, h.onGrantCancel)

	reg.SetTextFallback(h.onText)

	h.registerGrantFlow()
}

func (h *Handlers) onStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := h.dialog.Welcome(ctx, profileFrom(c))
	if err != nil {
		return h.reportFailure(c, err)
	}
	return h.send(c, replies)
}

func (h *Handlers) onHelp(c tele.Context) error {
	replies, err := h.dialog.HandleText(tghelpers.BuildContext(c), profileFrom(c), dialog.LabelHelp)
	if err != nil {
		return h.reportFailure(c, err)
	}
	return h.send(c, replies)
}

// onText is the registry text fallback: every non-command text event,
// including menu button presses, enters the mode machine here.
func (h *Handlers) onText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text := c.Text()

	if dialog.Resolve(text) == dialog.TokenNone {
		// Free text may reach the generator; show the typing indicator.
		_ = c.Notify(tele.Typing)
	}

	replies, err := h.dialog.HandleText(ctx, profileFrom(c), text)
	if err != nil {
		return h.reportFailure(c, err)
	}
	return h.send(c, replies)
}

func (h *Handlers) send(c tele.Context, replies []dialog.Reply) error {
	for _, r := range replies {
		opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
		switch {
		case r.ProOffer:
			opts.ReplyMarkup = buyProMarkup()
		case r.Rows != nil:
			opts.ReplyMarkup = keyboard.ReplyButtons(r.Rows...)
		}
		if err := tghelpers.SendText(c, r.Text, opts); err != nil {
			return err
		}
	}
	return nil
}

// reportFailure tells the triggering user once and propagates the error so
// the handler summary records the failure. Other users are unaffected.
func (h *Handlers) reportFailure(c tele.Context, err error) error {
	logger.SVCDialog.Error("event failed",
		slog.String("event", "handler.failed"),
		slog.Int64("user_id", c.Sender().ID),
		slog.String("err", err.Error()),
	)
	_ = tghelpers.SendText(c, "⚠️ Something went wrong. Please try again.")
	return err
}

func buyProMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "💎 Buy PRO", Unique: cbBuyPro},
	})
}

func profileFrom(c tele.Context) domain.Profile {
	sender := c.Sender()
	if sender == nil {
		return domain.Profile{}
	}
	name := sender.FirstName
	if sender.LastName != "" {
		name += " " + sender.LastName
	}
	return domain.Profile{
		UserID:      sender.ID,
		DisplayName: name,
		Handle:      sender.Username,
	}
}
