package dialog

import (
	"fmt"
	"time"

	"github.com/capitalmind/bot/internal/domain"
)

const (
	textWelcome = "🚀 <b>CapitalMind</b>\n\n" +
		"Your AI mentor for career growth and income 💰\n\n" +
		"🆓 Free: %d questions per day\n" +
		"💎 PRO: unlimited\n\n" +
		"Pick an option below 👇"

	textChooseButton = "Please choose one of the menu buttons 👇"

	textAskPrompt = "🤖 Type your question below 👇"

	textCareerIntro = "🚀 Career mode.\n\n" +
		"Ask me things like:\n" +
		"• How do I pick a profession?\n" +
		"• How do I grow my income?\n" +
		"• How do I plan the next career step?\n\n" +
		"Tap 🏠 Menu to leave."

	textHelp = "🤖 Just send me a career question and I'll answer.\n\n" +
		"Daily free questions are limited; 💎 PRO removes the limit.\n" +
		"🧭 Career quiz finds your career archetype."

	textQuotaExceeded = "🚫 You've used all free questions for today.\n" +
		"Get 💎 PRO for unlimited answers."

	textGenerationFailed = "😔 I couldn't get an answer right now. Please try again in a moment."

	textQuizIntro = "🧭 Career archetype quiz: %d quick questions.\n" +
		"Answer with one of the offered options."

	textQuizReprompt = "Please answer with one of the offered options 👇"

	textQuizExtendedIntro = "💎 Your extended PRO recommendation:\n\n"

	textBackToMenu = "🏠 Main menu."
)

func welcomeText(freeLimit int) string {
	return fmt.Sprintf(textWelcome, freeLimit)
}

func quizIntroText(questions int) string {
	return fmt.Sprintf(textQuizIntro, questions)
}

func profileText(acc *domain.UserAccount, freeLimit int, now time.Time) string {
	status := "🆓 Free"
	if acc.ProActive(now) {
		status = "💎 PRO until " + acc.ProUntil.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf(
		"👤 <b>Profile</b>\n\nID: <code>%d</code>\nStatus: %s\nQuestions today: %d/%d",
		acc.UserID, status, acc.FreeUsed, freeLimit,
	)
}

func proInfoText(priceStars int) string {
	return fmt.Sprintf(
		"💎 <b>PRO subscription</b>\n\n✨ Unlimited answers\n🚀 Deeper analysis\n\n💰 Price: %d ⭐\n\nTap the button below to pay.",
		priceStars,
	)
}
