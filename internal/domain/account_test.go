package domain

import (
	"testing"
	"time"
)

func TestScoresRoundTrip(t *testing.T) {
	in := Scores{CategoryTech: 5, CategoryCreative: 2}

	v, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var out Scores
	if err := out.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(out) != 2 || out[CategoryTech] != 5 || out[CategoryCreative] != 2 {
		t.Fatalf("round trip = %v, want %v", out, in)
	}
}

func TestScoresNilHandling(t *testing.T) {
	var nilScores Scores
	v, err := nilScores.Value()
	if err != nil || v != nil {
		t.Fatalf("nil scores value = %v, %v; want nil, nil", v, err)
	}

	out := Scores{CategoryTech: 1}
	if err := out.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if out != nil {
		t.Fatalf("scan nil left %v, want nil", out)
	}
}

func TestProActive(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	acc := &UserAccount{UserID: 1}

	if acc.ProActive(now) {
		t.Fatal("nil pro_until reported active")
	}

	future := now.Add(time.Hour)
	acc.ProUntil = &future
	if !acc.ProActive(now) {
		t.Fatal("future pro_until reported inactive")
	}

	// Expiry is exclusive: at the boundary the entitlement is over.
	acc.ProUntil = &now
	if acc.ProActive(now) {
		t.Fatal("pro_until at the boundary reported active")
	}
}

func TestBeginAndClearQuiz(t *testing.T) {
	acc := &UserAccount{UserID: 1, Mode: ModeMenu}

	acc.BeginQuiz()
	if acc.Mode != ModeQuiz || acc.QuizStep != 0 || acc.QuizScores == nil {
		t.Fatalf("begin left step=%d mode=%s scores=%v", acc.QuizStep, acc.Mode, acc.QuizScores)
	}

	acc.QuizStep = 3
	acc.QuizScores[CategoryTech] = 4
	acc.ClearQuiz(ModeMenu)
	if acc.Mode != ModeMenu || acc.QuizStep != 0 || acc.QuizScores != nil {
		t.Fatalf("clear left step=%d mode=%s scores=%v", acc.QuizStep, acc.Mode, acc.QuizScores)
	}
}
