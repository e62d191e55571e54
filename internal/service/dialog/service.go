package dialog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/capitalmind/bot/core/logger"
	"github.com/capitalmind/bot/core/telegram/format"
	"github.com/capitalmind/bot/internal/domain"
	"github.com/capitalmind/bot/internal/generation"
	"github.com/capitalmind/bot/internal/service/entitlement"
	"github.com/capitalmind/bot/internal/service/quiz"
)

// Store is the subset of the account store the dialog layer depends on.
type Store interface {
	Get(ctx context.Context, p domain.Profile) (*domain.UserAccount, error)
	Save(ctx context.Context, acc *domain.UserAccount) error
}

// Reply is one outbound message. Rows is an opaque keyboard descriptor
// (rows of button labels); nil keeps the client's current keyboard.
// ProOffer asks the transport layer to attach the PRO purchase button.
type Reply struct {
	Text     string
	Rows     [][]string
	ProOffer bool
}

// Options wires the dialog service dependencies.
type Options struct {
	Store     Store
	Quota     *entitlement.Engine
	Quiz      *quiz.Engine
	Generator generation.Generator
	// ProPriceStars is the PRO price shown in upsell texts, in Telegram Stars.
	ProPriceStars int
	// Clock defaults to time.Now and is injectable for tests.
	Clock func() time.Time
}

// Service is the interaction mode state machine. It routes every inbound
// text event by the account's persisted mode and the resolved control token,
// and owns all account mutations triggered by text.
type Service struct {
	store    Store
	quota    *entitlement.Engine
	quiz     *quiz.Engine
	gen      generation.Generator
	proPrice int
	now      func() time.Time
}

// New wires the dialog service.
func New(opts Options) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:    opts.Store,
		quota:    opts.Quota,
		quiz:     opts.Quiz,
		gen:      opts.Generator,
		proPrice: opts.ProPriceStars,
		now:      clock,
	}
}

// Welcome registers the user (lazy create) and returns the greeting.
func (s *Service) Welcome(ctx context.Context, p domain.Profile) ([]Reply, error) {
	if _, err := s.store.Get(ctx, p); err != nil {
		return nil, err
	}
	return []Reply{{Text: welcomeText(s.quota.FreeLimit()), Rows: MainMenuRows()}}, nil
}

// HandleText routes one inbound text event. Recognized control tokens drive
// mode transitions; free text is dispatched by the current mode.
func (s *Service) HandleText(ctx context.Context, p domain.Profile, text string) ([]Reply, error) {
	acc, err := s.store.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	now := s.now()

	switch Resolve(text) {
	case TokenHome:
		return s.enterMenu(ctx, acc)
	case TokenCareer:
		return s.enterCareer(ctx, acc, textCareerIntro)
	case TokenAsk:
		return s.enterCareer(ctx, acc, textAskPrompt)
	case TokenQuiz:
		return s.startQuiz(ctx, acc)
	case TokenProfile:
		return []Reply{{Text: profileText(acc, s.quota.FreeLimit(), now)}}, nil
	case TokenPro:
		return []Reply{{Text: proInfoText(s.proPrice), ProOffer: true}}, nil
	case TokenHelp:
		return []Reply{{Text: textHelp}}, nil
	}

	switch acc.Mode {
	case domain.ModeCareerChat:
		return s.careerQuestion(ctx, acc, text, now)
	case domain.ModeQuiz:
		return s.quizAnswer(ctx, acc, text, now)
	default:
		return []Reply{{Text: textChooseButton, Rows: MainMenuRows()}}, nil
	}
}

func (s *Service) enterMenu(ctx context.Context, acc *domain.UserAccount) ([]Reply, error) {
	if acc.Mode != domain.ModeMenu {
		acc.ClearQuiz(domain.ModeMenu)
		if err := s.store.Save(ctx, acc); err != nil {
			return nil, err
		}
	}
	return []Reply{{Text: textBackToMenu, Rows: MainMenuRows()}}, nil
}

func (s *Service) enterCareer(ctx context.Context, acc *domain.UserAccount, intro string) ([]Reply, error) {
	// Re-entering the current mode is a no-op beyond re-sending the prompt.
	if acc.Mode != domain.ModeCareerChat {
		acc.ClearQuiz(domain.ModeCareerChat)
		if err := s.store.Save(ctx, acc); err != nil {
			return nil, err
		}
	}
	return []Reply{{Text: intro, Rows: HomeRow()}}, nil
}

func (s *Service) startQuiz(ctx context.Context, acc *domain.UserAccount) ([]Reply, error) {
	first := s.quiz.Begin(acc)
	if err := s.store.Save(ctx, acc); err != nil {
		return nil, err
	}
	return []Reply{
		{Text: quizIntroText(s.quiz.Len())},
		questionReply(first),
	}, nil
}

func (s *Service) careerQuestion(ctx context.Context, acc *domain.UserAccount, text string, now time.Time) ([]Reply, error) {
	decision, err := s.quota.Authorize(ctx, acc, now)
	if err != nil {
		return nil, err
	}
	if decision == entitlement.DecisionDenied {
		return []Reply{{Text: textQuotaExceeded, ProOffer: true}}, nil
	}

	answer, err := s.gen.Answer(ctx, text)
	if err != nil {
		// The consumed quota unit stays spent; the failure is reported once.
		logger.SVCDialog.Error("generation failed",
			slog.String("event", "dialog.career"),
			slog.Int64("user_id", acc.UserID),
			slog.String("err", err.Error()),
		)
		return []Reply{{Text: textGenerationFailed}}, nil
	}
	// Replies go out with HTML parse mode; model output is untrusted markup.
	return []Reply{{Text: format.EscapeHTML(answer), Rows: HomeRow()}}, nil
}

func (s *Service) quizAnswer(ctx context.Context, acc *domain.UserAccount, text string, now time.Time) ([]Reply, error) {
	adv, err := s.quiz.Submit(acc, text)
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		replies := []Reply{{Text: textQuizReprompt}}
		if q, ok := s.quiz.Question(acc.QuizStep); ok {
			replies = append(replies, questionReply(q))
		}
		return replies, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, acc); err != nil {
		return nil, err
	}

	if adv.Next != nil {
		return []Reply{questionReply(*adv.Next)}, nil
	}

	replies := []Reply{{Text: quiz.Recommendations[adv.Result.Category], Rows: MainMenuRows()}}
	if acc.ProActive(now) {
		// PRO perk; this call is never charged against the free quota.
		extended, genErr := s.gen.Recommend(ctx, adv.Result.Category)
		if genErr != nil {
			logger.SVCDialog.Error("extended recommendation failed",
				slog.String("event", "dialog.quiz"),
				slog.Int64("user_id", acc.UserID),
				slog.String("err", genErr.Error()),
			)
			replies = append(replies, Reply{Text: textGenerationFailed})
		} else {
			replies = append(replies, Reply{Text: textQuizExtendedIntro + format.EscapeHTML(extended)})
		}
	}
	return replies, nil
}

func questionReply(q quiz.Question) Reply {
	rows := make([][]string, 0, len(q.Options)+1)
	for _, opt := range q.Options {
		rows = append(rows, []string{opt.Label})
	}
	rows = append(rows, []string{LabelHome})
	return Reply{Text: q.Prompt, Rows: rows}
}
