package generation

import (
	"context"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/capitalmind/bot/core/logger"
	"github.com/capitalmind/bot/internal/domain"
)

// systemPrompt is the topic contract for the mentor persona. The restriction
// to career and income topics is enforced here, at the prompt level.
const systemPrompt = "You are a professional career and income mentor. " +
	"Answer in a clear, structured way with a few fitting emoji. " +
	"You only discuss careers, professional growth, and personal income. " +
	"If the question is about anything else, politely refuse and steer the user back to career topics."

const recommendPromptPrefix = "The user completed a career-archetype quiz and scored highest in the category: "

// Config holds the chat-completion provider settings.
type Config struct {
	APIKey  string `yaml:"api_key" envconfig:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" envconfig:"OPENAI_BASE_URL"`
	Model   string `yaml:"model" envconfig:"OPENAI_MODEL"`
}

// Generator is the answer-generation collaborator as the dialog layer sees it.
type Generator interface {
	// Answer relays free text under the mentor persona.
	Answer(ctx context.Context, userText string) (string, error)
	// Recommend produces an extended recommendation for a quiz result category.
	Recommend(ctx context.Context, category domain.Category) (string, error)
}

// Client calls the OpenAI chat-completion API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a Client from config, applying the default model when unset.
func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: model,
	}
}

// Answer implements Generator.
func (c *Client) Answer(ctx context.Context, userText string) (string, error) {
	return c.complete(ctx, "generate.answer", userText)
}

// Recommend implements Generator.
func (c *Client) Recommend(ctx context.Context, category domain.Category) (string, error) {
	prompt := recommendPromptPrefix + string(category) +
		". Give them a concrete, encouraging growth plan for the next six months."
	return c.complete(ctx, "generate.recommend", prompt)
}

func (c *Client) complete(ctx context.Context, event, userText string) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	})
	if err != nil {
		logger.GEN.Error("completion failed",
			slog.String("event", event),
			slog.String("model", c.model),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return "", &domain.GenerationError{Err: err}
	}
	if len(resp.Choices) == 0 {
		logger.GEN.Error("completion empty",
			slog.String("event", event),
			slog.String("model", c.model),
		)
		return "", &domain.GenerationError{Err: errEmptyCompletion}
	}
	logger.GEN.Debug("completion ok",
		slog.String("event", event),
		slog.String("model", c.model),
		slog.Duration("duration", logger.Took(start)),
	)
	return resp.Choices[0].Message.Content, nil
}
