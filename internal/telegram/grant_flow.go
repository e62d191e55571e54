package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/capitalmind/bot/core/logger"
	"github.com/capitalmind/bot/core/telegram/callbacks"
	tghelpers "github.com/capitalmind/bot/core/telegram/helpers"
	"github.com/capitalmind/bot/core/telegram/keyboard"
	"github.com/capitalmind/bot/core/telegram/state"
	"github.com/capitalmind/bot/internal/domain"
)

// Admin grant conversation. The persisted account mode is untouched here:
// this is an ephemeral admin dialog, so it lives in the in-memory FSM.
const (
	stateGrantUser state.State = "grant_user"
	stateGrantDays state.State = "grant_days"

	tempGrantUserID = "grant_user_id"

	cbGrantConfirm = "grant_confirm"
	cbGrantCancel  = "grant_cancel"
)

func (h *Handlers) registerGrantFlow() {
	state.RegisterHandler(stateGrantUser, h.grantAwaitUser)
	state.RegisterHandler(stateGrantDays, h.grantAwaitDuration)
}

// onGrantCommand starts the conversation. Reached only through the
// admin-only command middleware.
func (h *Handlers) onGrantCommand(c tele.Context) error {
	h.fsm.Set(c.Sender().ID, stateGrantUser)
	return tghelpers.SendText(c,
		"Send the Telegram user ID to grant PRO to.",
		&tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(cbGrantCancel)},
	)
}

func (h *Handlers) grantAwaitUser(c tele.Context) error {
	adminID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)

	userID, err := strconv.ParseInt(strings.TrimSpace(c.Text()), 10, 64)
	if err != nil {
		return tghelpers.SendText(c, "That doesn't look like a user ID. Send a number, e.g. 1215610657.")
	}

	if _, err := tghelpers.CurrentUser[*domain.UserAccount](ctx, h.accounts, userID); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			h.fsm.Clear(adminID)
			return tghelpers.SendText(c, "No account with that ID. The user has to /start the bot first.")
		}
		return h.reportFailure(c, err)
	}

	h.fsm.SetTemp(adminID, tempGrantUserID, userID)
	h.fsm.Set(adminID, stateGrantDays)
	return tghelpers.SendText(c,
		"For how long? Send a number of days (e.g. 30) or an end date (e.g. 31.12.2026).",
		&tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(cbGrantCancel)},
	)
}

func (h *Handlers) grantAwaitDuration(c tele.Context) error {
	adminID := c.Sender().ID

	userID, ok := h.fsm.GetTempInt64(adminID, tempGrantUserID)
	if !ok {
		h.fsm.Clear(adminID)
		return tghelpers.SendText(c, "The grant dialog expired. Start again with /grant.")
	}

	days, ok := parseDuration(c.Text(), time.Now())
	if !ok {
		return tghelpers.SendText(c, "Send a positive number of days or a future date.")
	}

	h.fsm.Clear(adminID)

	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✅ Confirm", Unique: cbGrantConfirm, Data: fmt.Sprintf("%d|%d", userID, days)},
		{Text: "❌ Cancel", Unique: cbGrantCancel},
	})
	return tghelpers.SendText(c,
		fmt.Sprintf("Grant PRO for %d days to user %d?", days, userID),
		&tele.SendOptions{ReplyMarkup: markup},
	)
}

func (h *Handlers) onGrantConfirm(c tele.Context) error {
	if c.Sender().ID != h.adminID {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	userID, days, err := callbacks.PayloadTwoInt64(c, "|")
	if err != nil {
		return c.Edit("Malformed grant request.")
	}

	until, err := h.quota.Grant(ctx, userID, int(days), time.Now())
	if err != nil {
		return h.reportFailure(c, err)
	}

	if _, err := c.Bot().Send(&tele.User{ID: userID},
		"🎉 <b>PRO activated!</b>\nUnlimited answers until "+until.UTC().Format("2006-01-02")+" 🚀",
		&tele.SendOptions{ParseMode: tele.ModeHTML},
	); err != nil {
		logger.SVCBilling.Warn("grant notification failed",
			slog.String("event", "entitlement.grant"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}

	return c.Edit(fmt.Sprintf("✅ PRO for user %d until %s.", userID, until.UTC().Format("2006-01-02")))
}

func (h *Handlers) onGrantCancel(c tele.Context) error {
	h.fsm.Clear(c.Sender().ID)
	return c.Edit("✖️ Cancelled.")
}

// parseDuration accepts either a whole number of days or an absolute end
// date in one of the flexible formats; dates convert to the remaining whole
// days, rounded up.
func parseDuration(input string, now time.Time) (int, bool) {
	text := strings.TrimSpace(input)
	if days, err := strconv.Atoi(text); err == nil {
		return days, days > 0
	}
	if until, ok := tghelpers.ParseFlexibleDate(text); ok {
		delta := until.Sub(now)
		if delta <= 0 {
			return 0, false
		}
		return int(math.Ceil(delta.Hours() / 24)), true
	}
	return 0, false
}
