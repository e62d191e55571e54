package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/capitalmind/bot/internal/domain"
	"github.com/capitalmind/bot/internal/generation"
	"github.com/capitalmind/bot/internal/service/entitlement"
	"github.com/capitalmind/bot/internal/service/quiz"
)

type fakeStore struct {
	accounts map[int64]*domain.UserAccount
	saves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[int64]*domain.UserAccount)}
}

func (f *fakeStore) Get(_ context.Context, p domain.Profile) (*domain.UserAccount, error) {
	if acc, ok := f.accounts[p.UserID]; ok {
		return acc, nil
	}
	acc := &domain.UserAccount{UserID: p.UserID, Mode: domain.ModeMenu}
	f.accounts[p.UserID] = acc
	return acc, nil
}

func (f *fakeStore) GetUserByTelegramID(_ context.Context, userID int64) (*domain.UserAccount, error) {
	if acc, ok := f.accounts[userID]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (f *fakeStore) Save(_ context.Context, acc *domain.UserAccount) error {
	f.accounts[acc.UserID] = acc
	f.saves++
	return nil
}

type fakeGenerator struct {
	answer     string
	err        error
	answerCall int
	recommends int
}

func (f *fakeGenerator) Answer(context.Context, string) (string, error) {
	f.answerCall++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) Recommend(_ context.Context, cat domain.Category) (string, error) {
	f.recommends++
	if f.err != nil {
		return "", f.err
	}
	return "extended plan for " + string(cat), nil
}

var frozen = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore, gen generation.Generator, freeLimit int) *Service {
	return New(Options{
		Store:         store,
		Quota:         entitlement.New(store, freeLimit),
		Quiz:          quiz.New(),
		Generator:     gen,
		ProPriceStars: 250,
		Clock:         func() time.Time { return frozen },
	})
}

func lastReply(t *testing.T, replies []Reply) Reply {
	t.Helper()
	if len(replies) == 0 {
		t.Fatal("no replies returned")
	}
	return replies[len(replies)-1]
}

func TestWelcomeCreatesAccount(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{answer: "ok"}, 5)

	replies, err := svc.Welcome(context.Background(), domain.Profile{UserID: 1, DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if _, ok := store.accounts[1]; !ok {
		t.Fatal("account was not created on /start")
	}
	r := lastReply(t, replies)
	if !strings.Contains(r.Text, "5") {
		t.Fatalf("welcome text does not mention the free limit: %q", r.Text)
	}
	if len(r.Rows) == 0 {
		t.Fatal("welcome reply carries no menu keyboard")
	}
}

func TestCareerFlowConsumesQuotaAndAnswers(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{answer: "pick a growing field"}
	svc := newTestService(store, gen, 5)
	p := domain.Profile{UserID: 2}

	if _, err := svc.HandleText(context.Background(), p, LabelCareer); err != nil {
		t.Fatalf("enter career: %v", err)
	}
	if store.accounts[2].Mode != domain.ModeCareerChat {
		t.Fatalf("mode = %s, want career chat", store.accounts[2].Mode)
	}

	replies, err := svc.HandleText(context.Background(), p, "how do I grow?")
	if err != nil {
		t.Fatalf("career question: %v", err)
	}
	if r := lastReply(t, replies); r.Text != "pick a growing field" {
		t.Fatalf("reply = %q, want generator answer", r.Text)
	}
	if store.accounts[2].FreeUsed != 1 {
		t.Fatalf("free_used = %d, want 1", store.accounts[2].FreeUsed)
	}
}

func TestCareerReentryIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{answer: "ok"}, 5)
	p := domain.Profile{UserID: 3}

	if _, err := svc.HandleText(context.Background(), p, LabelCareer); err != nil {
		t.Fatalf("enter career: %v", err)
	}
	savesAfterEntry := store.saves

	if _, err := svc.HandleText(context.Background(), p, LabelCareer); err != nil {
		t.Fatalf("re-enter career: %v", err)
	}
	if store.saves != savesAfterEntry {
		t.Fatalf("re-entering the current mode persisted %d extra saves", store.saves-savesAfterEntry)
	}
}

func TestQuotaExceededUpsells(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{answer: "ok"}
	svc := newTestService(store, gen, 1)
	p := domain.Profile{UserID: 4}

	if _, err := svc.HandleText(context.Background(), p, LabelCareer); err != nil {
		t.Fatalf("enter career: %v", err)
	}
	if _, err := svc.HandleText(context.Background(), p, "q1"); err != nil {
		t.Fatalf("first question: %v", err)
	}

	replies, err := svc.HandleText(context.Background(), p, "q2")
	if err != nil {
		t.Fatalf("second question: %v", err)
	}
	r := lastReply(t, replies)
	if !r.ProOffer {
		t.Fatal("denied reply does not carry the PRO offer")
	}
	if gen.answerCall != 1 {
		t.Fatalf("generator called %d times, want 1 (denied call must not reach it)", gen.answerCall)
	}
}

func TestGenerationFailureKeepsQuotaSpent(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{err: &domain.GenerationError{Err: errors.New("upstream 500")}}
	svc := newTestService(store, gen, 5)
	p := domain.Profile{UserID: 5}

	if _, err := svc.HandleText(context.Background(), p, LabelCareer); err != nil {
		t.Fatalf("enter career: %v", err)
	}
	replies, err := svc.HandleText(context.Background(), p, "q")
	if err != nil {
		t.Fatalf("career question: %v", err)
	}
	if r := lastReply(t, replies); r.Text != textGenerationFailed {
		t.Fatalf("reply = %q, want failure text", r.Text)
	}
	if store.accounts[5].FreeUsed != 1 {
		t.Fatalf("free_used = %d, want 1 (failed generation is not refunded)", store.accounts[5].FreeUsed)
	}
}

func TestQuizRoundTrip(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{answer: "ok"}, 5)
	p := domain.Profile{UserID: 6}
	ctx := context.Background()

	replies, err := svc.HandleText(ctx, p, LabelQuiz)
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if store.accounts[6].Mode != domain.ModeQuiz {
		t.Fatalf("mode = %s, want quiz", store.accounts[6].Mode)
	}

	engine := quiz.New()
	for step := 0; step < engine.Len(); step++ {
		q, _ := engine.Question(step)
		replies, err = svc.HandleText(ctx, p, q.Options[0].Label)
		if err != nil {
			t.Fatalf("answer %d: %v", step+1, err)
		}
	}

	final := lastReply(t, replies)
	if final.Text != quiz.Recommendations[domain.CategoryTech] {
		t.Fatalf("final reply = %q, want TECH recommendation", final.Text)
	}
	acc := store.accounts[6]
	if acc.Mode != domain.ModeMenu {
		t.Fatalf("mode = %s, want menu after completion", acc.Mode)
	}
	if acc.QuizStep != 0 || acc.QuizScores != nil {
		t.Fatalf("quiz state survived completion: step=%d scores=%v", acc.QuizStep, acc.QuizScores)
	}
}

func TestQuizInvalidAnswerReprompts(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{answer: "ok"}, 5)
	p := domain.Profile{UserID: 7}
	ctx := context.Background()

	if _, err := svc.HandleText(ctx, p, LabelQuiz); err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	replies, err := svc.HandleText(ctx, p, "something else entirely")
	if err != nil {
		t.Fatalf("invalid answer: %v", err)
	}
	if replies[0].Text != textQuizReprompt {
		t.Fatalf("reply = %q, want reprompt", replies[0].Text)
	}
	if store.accounts[7].QuizStep != 0 {
		t.Fatalf("step = %d, want 0 after invalid answer", store.accounts[7].QuizStep)
	}
}

func TestQuizProExtendedRecommendation(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{answer: "ok"}
	svc := newTestService(store, gen, 5)
	p := domain.Profile{UserID: 8}
	ctx := context.Background()

	acc, _ := store.Get(ctx, p)
	until := frozen.AddDate(0, 0, 30)
	acc.ProUntil = &until

	if _, err := svc.HandleText(ctx, p, LabelQuiz); err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	engine := quiz.New()
	var replies []Reply
	var err error
	for step := 0; step < engine.Len(); step++ {
		q, _ := engine.Question(step)
		replies, err = svc.HandleText(ctx, p, q.Options[0].Label)
		if err != nil {
			t.Fatalf("answer %d: %v", step+1, err)
		}
	}

	if gen.recommends != 1 {
		t.Fatalf("Recommend called %d times, want 1 for a PRO user", gen.recommends)
	}
	final := lastReply(t, replies)
	if !strings.HasPrefix(final.Text, textQuizExtendedIntro) {
		t.Fatalf("final reply = %q, want the extended PRO recommendation", final.Text)
	}
	if acc.FreeUsed != 0 {
		t.Fatalf("free_used = %d, want 0 (the extended perk is never charged)", acc.FreeUsed)
	}
}

func TestHomeResetsQuizState(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{answer: "ok"}, 5)
	p := domain.Profile{UserID: 9}
	ctx := context.Background()

	if _, err := svc.HandleText(ctx, p, LabelQuiz); err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	engine := quiz.New()
	q, _ := engine.Question(0)
	if _, err := svc.HandleText(ctx, p, q.Options[0].Label); err != nil {
		t.Fatalf("first answer: %v", err)
	}

	replies, err := svc.HandleText(ctx, p, LabelHome)
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	acc := store.accounts[9]
	if acc.Mode != domain.ModeMenu {
		t.Fatalf("mode = %s, want menu", acc.Mode)
	}
	if acc.QuizStep != 0 || acc.QuizScores != nil {
		t.Fatalf("quiz state survived home: step=%d scores=%v", acc.QuizStep, acc.QuizScores)
	}
	if r := lastReply(t, replies); len(r.Rows) == 0 {
		t.Fatal("home reply carries no menu keyboard")
	}
}

func TestMenuFreeTextNudgesToButtons(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{answer: "ok"}
	svc := newTestService(store, gen, 5)

	replies, err := svc.HandleText(context.Background(), domain.Profile{UserID: 10}, "hello there")
	if err != nil {
		t.Fatalf("menu text: %v", err)
	}
	if r := lastReply(t, replies); r.Text != textChooseButton {
		t.Fatalf("reply = %q, want the button nudge", r.Text)
	}
	if gen.answerCall != 0 {
		t.Fatal("free text in menu mode must not reach the generator")
	}
}

func TestProInfoCarriesOffer(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeGenerator{answer: "ok"}, 5)

	replies, err := svc.HandleText(context.Background(), domain.Profile{UserID: 11}, LabelPro)
	if err != nil {
		t.Fatalf("pro info: %v", err)
	}
	r := lastReply(t, replies)
	if !r.ProOffer {
		t.Fatal("PRO info reply does not carry the purchase offer")
	}
	if !strings.Contains(r.Text, "250") {
		t.Fatalf("PRO info text does not mention the price: %q", r.Text)
	}
}
