package dialog

import "strings"

// Token is a normalized identifier for a recognized user action. Routing
// switches on tokens, never on display text, so button labels can change
// without touching the mode machine.
type Token int

const (
	// TokenNone means the input is free text, not a recognized control.
	TokenNone Token = iota
	TokenAsk
	TokenProfile
	TokenPro
	TokenCareer
	TokenQuiz
	TokenHelp
	TokenHome
)

// Button labels shown on the main reply keyboard. The token table below is
// the only place that ties them to routing.
const (
	LabelAsk     = "🤖 Ask a question"
	LabelProfile = "👤 Profile"
	LabelPro     = "💎 PRO"
	LabelCareer  = "🚀 Career"
	LabelQuiz    = "🧭 Career quiz"
	LabelHelp    = "❓ Help"
	LabelHome    = "🏠 Menu"
)

var labelTokens = map[string]Token{
	LabelAsk:     TokenAsk,
	LabelProfile: TokenProfile,
	LabelPro:     TokenPro,
	LabelCareer:  TokenCareer,
	LabelQuiz:    TokenQuiz,
	LabelHelp:    TokenHelp,
	LabelHome:    TokenHome,
}

// Resolve maps inbound text to a control token, or TokenNone for free text.
func Resolve(text string) Token {
	if tok, ok := labelTokens[strings.TrimSpace(text)]; ok {
		return tok
	}
	return TokenNone
}

// MainMenuRows is the opaque keyboard descriptor for the main menu.
func MainMenuRows() [][]string {
	return [][]string{
		{LabelAsk},
		{LabelProfile, LabelPro},
		{LabelCareer, LabelQuiz},
		{LabelHelp},
	}
}

// HomeRow is the keyboard shown inside career chat and the quiz.
func HomeRow() [][]string {
	return [][]string{{LabelHome}}
}
