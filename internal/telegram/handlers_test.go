package telegram

import (
	"errors"
	"testing"
	"time"

	"github.com/capitalmind/bot/internal/domain"
)

func TestParseDuration(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)

	cases := []struct {
		input string
		days  int
		ok    bool
	}{
		{"30", 30, true},
		{" 7 ", 7, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"soon", 0, false},
		{"", 0, false},
		// End dates convert to remaining whole days, rounded up.
		{"11.03.2026", 10, true},
		{"2026-03-02", 1, true},
		{"28.02.2026", 0, false}, // already past
	}
	for _, tc := range cases {
		days, ok := parseDuration(tc.input, now)
		if ok != tc.ok {
			t.Errorf("parseDuration(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			continue
		}
		if ok && days != tc.days {
			t.Errorf("parseDuration(%q) = %d days, want %d", tc.input, days, tc.days)
		}
	}
}

func TestValidatePayment(t *testing.T) {
	h := &Handlers{payments: PaymentsConfig{
		Currency:     "XTR",
		PriceStars:   250,
		PayloadID:    "capitalmind-pro",
		DurationDays: 30,
	}}

	if err := h.validatePayment("capitalmind-pro", "XTR", 250); err != nil {
		t.Fatalf("matching payment rejected: %v", err)
	}

	cases := []struct {
		name     string
		payload  string
		currency string
		total    int
		field    string
	}{
		{"wrong payload", "other-product", "XTR", 250, "payload"},
		{"wrong currency", "capitalmind-pro", "USD", 250, "currency"},
		{"wrong amount", "capitalmind-pro", "XTR", 1, "amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := h.validatePayment(tc.payload, tc.currency, tc.total)
			var mismatch *domain.PaymentMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("err = %v, want PaymentMismatchError", err)
			}
			if mismatch.Field != tc.field {
				t.Fatalf("field = %q, want %q", mismatch.Field, tc.field)
			}
		})
	}
}

func TestPaymentsConfigNormalize(t *testing.T) {
	var cfg PaymentsConfig
	cfg.Normalize()
	if cfg.Currency != "XTR" || cfg.PriceStars != 250 || cfg.PayloadID != "capitalmind-pro" || cfg.DurationDays != 30 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	cfg = PaymentsConfig{Currency: "XTR", PriceStars: 100, PayloadID: "custom", DurationDays: 7}
	cfg.Normalize()
	if cfg.PriceStars != 100 || cfg.PayloadID != "custom" || cfg.DurationDays != 7 {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
}
