package entitlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/capitalmind/bot/core/logger"
	"github.com/capitalmind/bot/internal/domain"
)

// DefaultFreeLimit is the per-day generator call allowance for non-PRO users.
const DefaultFreeLimit = 5

// Decision is the outcome of an authorization check.
type Decision string

const (
	DecisionAllowed Decision = "allowed"
	DecisionDenied  Decision = "denied"
)

// Store is the subset of the account store the engine depends on.
type Store interface {
	Get(ctx context.Context, p domain.Profile) (*domain.UserAccount, error)
	GetUserByTelegramID(ctx context.Context, userID int64) (*domain.UserAccount, error)
	Save(ctx context.Context, acc *domain.UserAccount) error
}

// Engine decides whether a request may reach the answer generator and
// mutates the free-quota counter accordingly. The check-and-increment is one
// logical unit per request; two concurrent runs for the same user can
// over-grant by the race window. That window is accepted, not fixed here.
type Engine struct {
	store     Store
	freeLimit int
}

// New builds an Engine. A non-positive limit falls back to DefaultFreeLimit.
func New(store Store, freeLimit int) *Engine {
	if freeLimit <= 0 {
		freeLimit = DefaultFreeLimit
	}
	return &Engine{store: store, freeLimit: freeLimit}
}

// FreeLimit reports the configured daily allowance.
func (e *Engine) FreeLimit() int { return e.freeLimit }

// Authorize applies the quota decision to an already-loaded account and
// persists counter mutations. PRO users are allowed without touching the
// counter. The day boundary is the UTC calendar date, applied lazily.
func (e *Engine) Authorize(ctx context.Context, acc *domain.UserAccount, now time.Time) (Decision, error) {
	if acc.ProActive(now) {
		logger.SVCQuota.Debug("pro bypass",
			slog.String("event", "quota.authorize"),
			slog.Int64("user_id", acc.UserID),
			slog.String("decision", string(DecisionAllowed)),
		)
		return DecisionAllowed, nil
	}

	today := utcDate(now)
	if !utcDate(acc.LastReset).Equal(today) {
		acc.FreeUsed = 0
		acc.LastReset = today
	}

	if acc.FreeUsed >= e.freeLimit {
		logger.SVCQuota.Info("quota exhausted",
			slog.String("event", "quota.authorize"),
			slog.Int64("user_id", acc.UserID),
			slog.String("decision", string(DecisionDenied)),
			slog.Int("free_used", acc.FreeUsed),
			slog.Int("free_limit", e.freeLimit),
		)
		return DecisionDenied, nil
	}

	acc.FreeUsed++
	if err := e.store.Save(ctx, acc); err != nil {
		return DecisionDenied, err
	}
	logger.SVCQuota.Debug("quota consumed",
		slog.String("event", "quota.authorize"),
		slog.Int64("user_id", acc.UserID),
		slog.String("decision", string(DecisionAllowed)),
		slog.Int("free_used", acc.FreeUsed),
		slog.Int("free_limit", e.freeLimit),
	)
	return DecisionAllowed, nil
}

// AuthorizeUser loads the account for the profile and runs Authorize.
func (e *Engine) AuthorizeUser(ctx context.Context, p domain.Profile, now time.Time) (Decision, *domain.UserAccount, error) {
	acc, err := e.store.Get(ctx, p)
	if err != nil {
		return DecisionDenied, nil, err
	}
	decision, err := e.Authorize(ctx, acc, now)
	return decision, acc, err
}

// Grant extends the PRO entitlement by the given number of days. The new
// expiry is computed from max(now, current expiry), so re-subscription always
// extends and never shortens an existing grant.
func (e *Engine) Grant(ctx context.Context, userID int64, days int, now time.Time) (time.Time, error) {
	acc, err := e.store.GetUserByTelegramID(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}

	base := now
	if acc.ProUntil != nil && acc.ProUntil.After(base) {
		base = *acc.ProUntil
	}
	until := base.Add(time.Duration(days) * 24 * time.Hour)
	acc.ProUntil = &until

	if err := e.store.Save(ctx, acc); err != nil {
		return time.Time{}, err
	}
	logger.SVCBilling.Info("entitlement granted",
		slog.String("event", "entitlement.grant"),
		slog.Int64("user_id", userID),
		slog.Int("days", days),
		slog.String("pro_until", until.UTC().Format(time.RFC3339)),
	)
	return until, nil
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
