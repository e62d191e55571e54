package quiz

import (
	"errors"
	"testing"

	"github.com/capitalmind/bot/internal/domain"
)

func quizAccount() *domain.UserAccount {
	acc := &domain.UserAccount{UserID: 1, Mode: domain.ModeMenu}
	acc.BeginQuiz()
	return acc
}

func runAnswers(t *testing.T, e *Engine, acc *domain.UserAccount, answers []string) *Result {
	t.Helper()
	var result *Result
	for i, answer := range answers {
		adv, err := e.Submit(acc, answer)
		if err != nil {
			t.Fatalf("answer %d (%q): %v", i+1, answer, err)
		}
		result = adv.Result
	}
	return result
}

func TestSubmitDeterministic(t *testing.T) {
	engine := New()
	answers := make([]string, engine.Len())
	for i := range answers {
		q, _ := engine.Question(i)
		answers[i] = q.Options[0].Label
	}

	first := runAnswers(t, engine, quizAccount(), answers)
	second := runAnswers(t, engine, quizAccount(), answers)

	if first == nil || second == nil {
		t.Fatal("expected a result after the final answer")
	}
	if first.Category != second.Category {
		t.Fatalf("categories differ: %s vs %s", first.Category, second.Category)
	}
	for cat, score := range first.Scores {
		if second.Scores[cat] != score {
			t.Fatalf("score for %s differs: %d vs %d", cat, score, second.Scores[cat])
		}
	}
}

func TestSubmitTechResult(t *testing.T) {
	engine := New()
	acc := quizAccount()
	answers := make([]string, engine.Len())
	for i := range answers {
		q, _ := engine.Question(i)
		answers[i] = q.Options[0].Label // every first option credits TECH
	}

	result := runAnswers(t, engine, acc, answers)
	if result.Category != domain.CategoryTech {
		t.Fatalf("category = %s, want TECH", result.Category)
	}
	if acc.Mode != domain.ModeMenu {
		t.Fatalf("mode = %s, want menu after completion", acc.Mode)
	}
	if acc.QuizScores != nil || acc.QuizStep != 0 {
		t.Fatalf("quiz state not cleared: step=%d scores=%v", acc.QuizStep, acc.QuizScores)
	}
}

func TestTieBreakCanonicalOrder(t *testing.T) {
	// Two questions, one point each to BUSINESS and TECH: a tie that the
	// canonical order must resolve in TECH's favor.
	engine := NewWithQuestions([]Question{
		{Prompt: "q1", Options: []Option{{Label: "a", Category: domain.CategoryBusiness, Weight: 1}}},
		{Prompt: "q2", Options: []Option{{Label: "b", Category: domain.CategoryTech, Weight: 1}}},
	})
	acc := quizAccount()

	result := runAnswers(t, engine, acc, []string{"a", "b"})
	if result.Category != domain.CategoryTech {
		t.Fatalf("category = %s, want TECH on tie", result.Category)
	}
}

func TestSubmitRejectsUnknownOption(t *testing.T) {
	engine := New()
	acc := quizAccount()

	_, err := engine.Submit(acc, "definitely not an option")
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if acc.QuizStep != 0 {
		t.Fatalf("step advanced to %d on invalid answer", acc.QuizStep)
	}
	if len(acc.QuizScores) != 0 {
		t.Fatalf("scores mutated on invalid answer: %v", acc.QuizScores)
	}
}

func TestSubmitRejectsOutsideQuizMode(t *testing.T) {
	engine := New()
	acc := &domain.UserAccount{UserID: 1, Mode: domain.ModeMenu}
	q, _ := engine.Question(0)

	_, err := engine.Submit(acc, q.Options[0].Label)
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError when not in quiz mode", err)
	}
	if acc.QuizStep != 0 || acc.QuizScores != nil {
		t.Fatal("state mutated outside quiz mode")
	}
}

func TestSubmitAfterCompletionHasNoEffect(t *testing.T) {
	engine := NewWithQuestions([]Question{
		{Prompt: "q1", Options: []Option{{Label: "a", Category: domain.CategoryTech, Weight: 1}}},
	})
	acc := quizAccount()

	if result := runAnswers(t, engine, acc, []string{"a"}); result == nil {
		t.Fatal("expected completion result")
	}

	_, err := engine.Submit(acc, "a")
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError after completion", err)
	}
}

func TestCatalogShape(t *testing.T) {
	engine := New()
	if engine.Len() != 8 {
		t.Fatalf("catalog has %d questions, want 8", engine.Len())
	}
	for i := 0; i < engine.Len(); i++ {
		q, ok := engine.Question(i)
		if !ok {
			t.Fatalf("question %d missing", i)
		}
		if len(q.Options) != 4 {
			t.Fatalf("question %d has %d options, want 4", i, len(q.Options))
		}
		for _, opt := range q.Options {
			if _, ok := Recommendations[opt.Category]; !ok {
				t.Fatalf("question %d option %q maps to category %s without a recommendation", i, opt.Label, opt.Category)
			}
			if opt.Weight <= 0 {
				t.Fatalf("question %d option %q has non-positive weight", i, opt.Label)
			}
		}
	}
}
