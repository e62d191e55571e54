package quiz

import "github.com/capitalmind/bot/internal/domain"

// Option is one selectable answer. Each option credits exactly one category.
type Option struct {
	Label    string
	Category domain.Category
	Weight   int
}

// Question is a single step of the onboarding quiz.
type Question struct {
	Prompt  string
	Options []Option
}

// Catalog returns the fixed question sequence for the career archetype quiz.
func Catalog() []Question {
	return []Question{
		{
			Prompt: "What kind of task pulls you in first?",
			Options: []Option{
				{Label: "Automating something tedious", Category: domain.CategoryTech, Weight: 2},
				{Label: "Closing a deal", Category: domain.CategoryBusiness, Weight: 2},
				{Label: "Designing how it should look", Category: domain.CategoryCreative, Weight: 2},
				{Label: "Digging through the numbers", Category: domain.CategoryAnalytical, Weight: 2},
			},
		},
		{
			Prompt: "A project is falling behind. Your first move?",
			Options: []Option{
				{Label: "Build a tool to speed things up", Category: domain.CategoryTech, Weight: 1},
				{Label: "Renegotiate scope with the client", Category: domain.CategoryBusiness, Weight: 1},
				{Label: "Rethink the concept from scratch", Category: domain.CategoryCreative, Weight: 1},
				{Label: "Find where the time actually goes", Category: domain.CategoryAnalytical, Weight: 1},
			},
		},
		{
			Prompt: "Which compliment lands best?",
			Options: []Option{
				{Label: "\"Your solution just works\"", Category: domain.CategoryTech, Weight: 1},
				{Label: "\"You made this profitable\"", Category: domain.CategoryBusiness, Weight: 1},
				{Label: "\"Nobody else would think of that\"", Category: domain.CategoryCreative, Weight: 1},
				{Label: "\"Your forecast was spot on\"", Category: domain.CategoryAnalytical, Weight: 1},
			},
		},
		{
			Prompt: "Pick a weekend read:",
			Options: []Option{
				{Label: "A systems deep-dive", Category: domain.CategoryTech, Weight: 1},
				{Label: "A founder's story", Category: domain.CategoryBusiness, Weight: 1},
				{Label: "A design monograph", Category: domain.CategoryCreative, Weight: 1},
				{Label: "A statistics casebook", Category: domain.CategoryAnalytical, Weight: 1},
			},
		},
		{
			Prompt: "Your team is stuck on a decision. You...",
			Options: []Option{
				{Label: "Prototype both options tonight", Category: domain.CategoryTech, Weight: 2},
				{Label: "Ask which one sells better", Category: domain.CategoryBusiness, Weight: 2},
				{Label: "Sketch a third option", Category: domain.CategoryCreative, Weight: 2},
				{Label: "Run the comparison on data", Category: domain.CategoryAnalytical, Weight: 2},
			},
		},
		{
			Prompt: "What drains you fastest?",
			Options: []Option{
				{Label: "Meetings without outcomes", Category: domain.CategoryTech, Weight: 1},
				{Label: "Work nobody will pay for", Category: domain.CategoryBusiness, Weight: 1},
				{Label: "Templates and rigid process", Category: domain.CategoryCreative, Weight: 1},
				{Label: "Decisions made on gut feeling", Category: domain.CategoryAnalytical, Weight: 1},
			},
		},
		{
			Prompt: "Ideal measure of a good month?",
			Options: []Option{
				{Label: "Something shipped and stable", Category: domain.CategoryTech, Weight: 1},
				{Label: "Revenue up", Category: domain.CategoryBusiness, Weight: 1},
				{Label: "Made something I'm proud of", Category: domain.CategoryCreative, Weight: 1},
				{Label: "A question answered with evidence", Category: domain.CategoryAnalytical, Weight: 1},
			},
		},
		{
			Prompt: "Five years out, you'd rather be known as...",
			Options: []Option{
				{Label: "The engineer people trust", Category: domain.CategoryTech, Weight: 2},
				{Label: "The one who built the company", Category: domain.CategoryBusiness, Weight: 2},
				{Label: "The voice behind the brand", Category: domain.CategoryCreative, Weight: 2},
				{Label: "The analyst behind the calls", Category: domain.CategoryAnalytical, Weight: 2},
			},
		},
	}
}

// Recommendations maps each result category to its fixed recommendation text.
var Recommendations = map[domain.Category]string{
	domain.CategoryTech: "🛠 Your archetype: TECH.\n\n" +
		"You think in systems and get energy from making things work. " +
		"Look at engineering, DevOps, and data-platform roles, and invest in one deep specialization before going broad.",
	domain.CategoryBusiness: "📈 Your archetype: BUSINESS.\n\n" +
		"You see value and know how to capture it. " +
		"Product management, sales leadership, and founding teams fit you; practice pricing your own time first.",
	domain.CategoryCreative: "🎨 Your archetype: CREATIVE.\n\n" +
		"You generate options where others see constraints. " +
		"Design, content strategy, and brand roles reward this; build a public portfolio early.",
	domain.CategoryAnalytical: "📊 Your archetype: ANALYTICAL.\n\n" +
		"You trust evidence and ask the uncomfortable questions. " +
		"Analytics, finance, and research roles fit; learn to present a number as a story.",
}
