package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/capitalmind/bot/internal/domain"
)

type memStore struct {
	accounts map[int64]*domain.UserAccount
	saves    int
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[int64]*domain.UserAccount)}
}

func (m *memStore) Get(_ context.Context, p domain.Profile) (*domain.UserAccount, error) {
	if acc, ok := m.accounts[p.UserID]; ok {
		return acc, nil
	}
	acc := &domain.UserAccount{UserID: p.UserID, Mode: domain.ModeMenu}
	m.accounts[p.UserID] = acc
	return acc, nil
}

func (m *memStore) GetUserByTelegramID(_ context.Context, userID int64) (*domain.UserAccount, error) {
	if acc, ok := m.accounts[userID]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memStore) Save(_ context.Context, acc *domain.UserAccount) error {
	m.accounts[acc.UserID] = acc
	m.saves++
	return nil
}

var testNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func TestAuthorizeFreeLimit(t *testing.T) {
	store := newMemStore()
	engine := New(store, 5)
	profile := domain.Profile{UserID: 42}

	for i := 0; i < 5; i++ {
		decision, _, err := engine.AuthorizeUser(context.Background(), profile, testNow)
		if err != nil {
			t.Fatalf("authorize %d: %v", i+1, err)
		}
		if decision != DecisionAllowed {
			t.Fatalf("call %d: decision = %s, want allowed", i+1, decision)
		}
	}

	decision, acc, err := engine.AuthorizeUser(context.Background(), profile, testNow)
	if err != nil {
		t.Fatalf("authorize over limit: %v", err)
	}
	if decision != DecisionDenied {
		t.Fatalf("decision = %s, want denied", decision)
	}
	if acc.FreeUsed != 5 {
		t.Fatalf("free_used = %d, want 5 (denied call must not increment)", acc.FreeUsed)
	}
}

func TestAuthorizeDayRollover(t *testing.T) {
	store := newMemStore()
	engine := New(store, 5)
	profile := domain.Profile{UserID: 7}

	acc, _ := store.Get(context.Background(), profile)
	acc.FreeUsed = 5
	acc.LastReset = testNow.AddDate(0, 0, -1)

	decision, acc, err := engine.AuthorizeUser(context.Background(), profile, testNow)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if decision != DecisionAllowed {
		t.Fatalf("decision = %s, want allowed after rollover", decision)
	}
	if acc.FreeUsed != 1 {
		t.Fatalf("free_used = %d, want 1", acc.FreeUsed)
	}
	if !acc.LastReset.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("last_reset = %v, want today's UTC date", acc.LastReset)
	}
}

func TestAuthorizeProBypassesCounter(t *testing.T) {
	store := newMemStore()
	engine := New(store, 5)
	profile := domain.Profile{UserID: 9}

	acc, _ := store.Get(context.Background(), profile)
	until := testNow.AddDate(0, 0, 10)
	acc.ProUntil = &until

	for i := 0; i < 20; i++ {
		decision, _, err := engine.AuthorizeUser(context.Background(), profile, testNow)
		if err != nil {
			t.Fatalf("authorize %d: %v", i+1, err)
		}
		if decision != DecisionAllowed {
			t.Fatalf("call %d: decision = %s, want allowed", i+1, decision)
		}
	}
	if acc.FreeUsed != 0 {
		t.Fatalf("free_used = %d, want 0 for PRO user", acc.FreeUsed)
	}
	if store.saves != 0 {
		t.Fatalf("saves = %d, want 0 (PRO path must not persist)", store.saves)
	}
}

func TestAuthorizeExpiredProFallsBackToQuota(t *testing.T) {
	store := newMemStore()
	engine := New(store, 1)
	profile := domain.Profile{UserID: 11}

	acc, _ := store.Get(context.Background(), profile)
	until := testNow.Add(-time.Hour)
	acc.ProUntil = &until

	if d, _, _ := engine.AuthorizeUser(context.Background(), profile, testNow); d != DecisionAllowed {
		t.Fatalf("first call after expiry: %s, want allowed", d)
	}
	if d, _, _ := engine.AuthorizeUser(context.Background(), profile, testNow); d != DecisionDenied {
		t.Fatalf("second call after expiry: %s, want denied", d)
	}
}

func TestGrantExtendsFromPriorExpiry(t *testing.T) {
	store := newMemStore()
	engine := New(store, 5)
	profile := domain.Profile{UserID: 21}
	store.accounts[profile.UserID] = &domain.UserAccount{UserID: profile.UserID, Mode: domain.ModeMenu}

	first, err := engine.Grant(context.Background(), profile.UserID, 30, testNow)
	if err != nil {
		t.Fatalf("first grant: %v", err)
	}
	if want := testNow.AddDate(0, 0, 30); !first.Equal(want) {
		t.Fatalf("first grant until = %v, want %v", first, want)
	}

	// Re-granting before expiry extends from the prior expiry, not from now.
	later := testNow.AddDate(0, 0, 10)
	second, err := engine.Grant(context.Background(), profile.UserID, 30, later)
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if want := first.AddDate(0, 0, 30); !second.Equal(want) {
		t.Fatalf("second grant until = %v, want %v", second, want)
	}
}

func TestGrantAfterExpiryStartsFromNow(t *testing.T) {
	store := newMemStore()
	engine := New(store, 5)
	expired := testNow.Add(-48 * time.Hour)
	store.accounts[5] = &domain.UserAccount{UserID: 5, Mode: domain.ModeMenu, ProUntil: &expired}

	until, err := engine.Grant(context.Background(), 5, 7, testNow)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if want := testNow.AddDate(0, 0, 7); !until.Equal(want) {
		t.Fatalf("until = %v, want %v", until, want)
	}
}

func TestGrantUnknownUser(t *testing.T) {
	engine := New(newMemStore(), 5)
	if _, err := engine.Grant(context.Background(), 404, 30, testNow); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}
