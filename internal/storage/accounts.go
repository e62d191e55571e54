package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/capitalmind/bot/core/logger"
	"github.com/capitalmind/bot/internal/domain"
)

const accountColumns = `user_id, display_name, handle, mode, free_used, last_reset,
	pro_until, quiz_step, quiz_scores, created_at, updated_at`

// Accounts persists UserAccount records in the accounts table.
// Save is a whole-record replace keyed by user_id: concurrent saves for
// different users never interfere; same-user races are last-write-wins.
type Accounts struct {
	db *sqlx.DB
}

// NewAccounts wraps the shared connection pool.
func NewAccounts(db *sqlx.DB) *Accounts {
	return &Accounts{db: db}
}

// Get loads the account for the given profile, creating it with defaults on
// first contact. Creation is idempotent: repeated calls only refresh the
// denormalized display_name and handle.
func (r *Accounts) Get(ctx context.Context, p domain.Profile) (*domain.UserAccount, error) {
	const q = `
		INSERT INTO accounts (user_id, display_name, handle, mode, free_used, last_reset, quiz_step, created_at, updated_at)
		VALUES ($1, $2, $3, 'menu', 0, (now() AT TIME ZONE 'utc')::date, 0, now(), now())
		ON CONFLICT (user_id) DO UPDATE
			SET display_name = EXCLUDED.display_name,
			    handle       = EXCLUDED.handle,
			    updated_at   = now()
		RETURNING ` + accountColumns

	start := time.Now()
	var acc domain.UserAccount
	if err := r.db.GetContext(ctx, &acc, q, p.UserID, p.DisplayName, p.Handle); err != nil {
		logger.SVCAccounts.Error("account upsert failed",
			slog.String("event", "accounts.get"),
			slog.Int64("user_id", p.UserID),
			slog.String("err", err.Error()),
		)
		return nil, &domain.StoreError{Op: "get", Err: err}
	}
	logger.SVCAccounts.Debug("account loaded",
		slog.String("event", "accounts.get"),
		slog.Int64("user_id", acc.UserID),
		slog.String("mode", string(acc.Mode)),
		slog.Duration("duration", logger.Took(start)),
	)
	return &acc, nil
}

// GetUserByTelegramID is a read-only lookup that does not create missing
// accounts. Used by payment and admin flows that must not register users.
func (r *Accounts) GetUserByTelegramID(ctx context.Context, userID int64) (*domain.UserAccount, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`

	var acc domain.UserAccount
	err := r.db.GetContext(ctx, &acc, q, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "lookup", Err: err}
	}
	return &acc, nil
}

// Save replaces the whole record for the account's user id.
func (r *Accounts) Save(ctx context.Context, acc *domain.UserAccount) error {
	const q = `
		UPDATE accounts SET
			display_name = :display_name,
			handle       = :handle,
			mode         = :mode,
			free_used    = :free_used,
			last_reset   = :last_reset,
			pro_until    = :pro_until,
			quiz_step    = :quiz_step,
			quiz_scores  = :quiz_scores,
			updated_at   = now()
		WHERE user_id = :user_id`

	start := time.Now()
	res, err := r.db.NamedExecContext(ctx, q, acc)
	if err != nil {
		logger.SVCAccounts.Error("account save failed",
			slog.String("event", "accounts.save"),
			slog.Int64("user_id", acc.UserID),
			slog.String("err", err.Error()),
		)
		return &domain.StoreError{Op: "save", Err: err}
	}
	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		return &domain.StoreError{Op: "save", Err: domain.ErrAccountNotFound}
	}
	logger.SVCAccounts.Debug("account saved",
		slog.String("event", "accounts.save"),
		slog.Int64("user_id", acc.UserID),
		slog.String("mode", string(acc.Mode)),
		slog.Int("free_used", acc.FreeUsed),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
