package quiz

import (
	"log/slog"
	"strings"

	"github.com/capitalmind/bot/core/logger"
	"github.com/capitalmind/bot/internal/domain"
)

// Result is the outcome of a completed quiz session.
type Result struct {
	Category domain.Category
	Scores   domain.Scores
}

// Advance describes what happened after an answer was accepted.
// Exactly one of Next (more questions ahead) or Result (quiz finished) is set.
type Advance struct {
	Next   *Question
	Result *Result
}

// Engine walks an account through the fixed question sequence. It mutates the
// account's quiz state but never persists it; callers own the save.
type Engine struct {
	questions []Question
}

// New builds an Engine over the standard catalog.
func New() *Engine {
	return &Engine{questions: Catalog()}
}

// NewWithQuestions builds an Engine over a custom sequence, used in tests.
func NewWithQuestions(qs []Question) *Engine {
	return &Engine{questions: qs}
}

// Len reports the number of questions in the sequence.
func (e *Engine) Len() int { return len(e.questions) }

// Begin resets the account into quiz mode and returns the first question.
func (e *Engine) Begin(acc *domain.UserAccount) Question {
	acc.BeginQuiz()
	logger.SVCQuiz.Debug("quiz started",
		slog.String("event", "quiz.begin"),
		slog.Int64("user_id", acc.UserID),
	)
	return e.questions[0]
}

// Question returns the question at the given step.
func (e *Engine) Question(step int) (Question, bool) {
	if step < 0 || step >= len(e.questions) {
		return Question{}, false
	}
	return e.questions[step], true
}

// Submit records an answer for the account's current step.
// A ValidationError is returned, with no state change, when the account is
// not in quiz mode or the answer does not match one of the current options.
// On the final answer the winning category is computed as the argmax over
// scores with ties broken by the canonical category order.
func (e *Engine) Submit(acc *domain.UserAccount, answer string) (Advance, error) {
	if acc.Mode != domain.ModeQuiz {
		return Advance{}, &domain.ValidationError{Reason: "no active quiz session"}
	}
	q, ok := e.Question(acc.QuizStep)
	if !ok {
		return Advance{}, &domain.ValidationError{Reason: "quiz step out of range"}
	}

	opt, ok := matchOption(q, answer)
	if !ok {
		return Advance{}, &domain.ValidationError{Reason: "answer is not one of the offered options"}
	}

	if acc.QuizScores == nil {
		acc.QuizScores = make(domain.Scores)
	}
	acc.QuizScores[opt.Category] += opt.Weight
	acc.QuizStep++

	if acc.QuizStep < len(e.questions) {
		next := e.questions[acc.QuizStep]
		return Advance{Next: &next}, nil
	}

	result := Result{
		Category: winner(acc.QuizScores),
		Scores:   acc.QuizScores,
	}
	acc.ClearQuiz(domain.ModeMenu)
	logger.SVCQuiz.Info("quiz completed",
		slog.String("event", "quiz.complete"),
		slog.Int64("user_id", acc.UserID),
		slog.String("category", string(result.Category)),
	)
	return Advance{Result: &result}, nil
}

func matchOption(q Question, answer string) (Option, bool) {
	needle := strings.TrimSpace(answer)
	for _, opt := range q.Options {
		if strings.EqualFold(opt.Label, needle) {
			return opt, true
		}
	}
	return Option{}, false
}

// winner picks the highest-scoring category; on a tie the first category in
// canonical enumeration order that reaches the maximum wins.
func winner(scores domain.Scores) domain.Category {
	best := domain.Categories()[0]
	bestScore := -1
	for _, cat := range domain.Categories() {
		if s := scores[cat]; s > bestScore {
			best = cat
			bestScore = s
		}
	}
	return best
}
