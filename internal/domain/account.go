package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Mode identifies how inbound free text from a user is routed.
type Mode string

const (
	// ModeMenu is the initial mode; free text only triggers a menu hint.
	ModeMenu Mode = "menu"
	// ModeCareerChat forwards free text to the answer generator, quota permitting.
	ModeCareerChat Mode = "career_chat"
	// ModeQuiz routes free text as onboarding quiz answers.
	ModeQuiz Mode = "in_quiz"
)

// Category labels a career archetype produced by the onboarding quiz.
type Category string

const (
	CategoryTech       Category = "TECH"
	CategoryBusiness   Category = "BUSINESS"
	CategoryCreative   Category = "CREATIVE"
	CategoryAnalytical Category = "ANALYTICAL"
)

// Categories returns all quiz categories in canonical order.
// The order doubles as the tie-break priority when quiz scores are equal.
func Categories() []Category {
	return []Category{CategoryTech, CategoryBusiness, CategoryCreative, CategoryAnalytical}
}

// Scores accumulates per-category quiz points. Stored as JSONB.
type Scores map[Category]int

// Value implements driver.Valuer for the quiz_scores column.
func (s Scores) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal quiz scores: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for the quiz_scores column.
func (s *Scores) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported quiz scores source type %T", src)
	}
	if len(data) == 0 {
		*s = nil
		return nil
	}
	out := make(Scores)
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal quiz scores: %w", err)
	}
	*s = out
	return nil
}

// Profile carries the denormalized platform identity delivered with each update.
// It is cached on the account but never used for authorization.
type Profile struct {
	UserID      int64
	DisplayName string
	Handle      string
}

// UserAccount is the durable per-user record. One row per platform user id.
type UserAccount struct {
	UserID      int64      `db:"user_id"`
	DisplayName string     `db:"display_name"`
	Handle      string     `db:"handle"`
	Mode        Mode       `db:"mode"`
	FreeUsed    int        `db:"free_used"`
	LastReset   time.Time  `db:"last_reset"`
	ProUntil    *time.Time `db:"pro_until"`
	QuizStep    int        `db:"quiz_step"`
	QuizScores  Scores     `db:"quiz_scores"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// ProActive reports whether the PRO entitlement covers the given instant.
func (a *UserAccount) ProActive(now time.Time) bool {
	return a.ProUntil != nil && now.Before(*a.ProUntil)
}

// BeginQuiz puts the account into quiz mode with a zeroed score accumulator.
func (a *UserAccount) BeginQuiz() {
	a.Mode = ModeQuiz
	a.QuizStep = 0
	a.QuizScores = make(Scores)
}

// ClearQuiz leaves quiz mode and drops quiz session state.
func (a *UserAccount) ClearQuiz(next Mode) {
	a.Mode = next
	a.QuizStep = 0
	a.QuizScores = nil
}
