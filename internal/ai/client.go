// Package ai phrases clues with a chat completion model.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/myrjola/gumshoe/internal/errors"
	"github.com/myrjola/gumshoe/internal/models"
	"github.com/sashabaranov/go-openai"
)

const MaxTokens = 120

var ErrEmptyCompletion = errors.NewSentinel("empty completion")

// Prompt describes the hint a clue must carry. Only the fields matching Role are used.
type Prompt struct {
	Role       models.ClueRole
	Style      models.InteractionStyle
	PlaceName  string
	CityName   string
	StolenItem string
	// NextCity is the city hinted at by a next-location clue.
	NextCity models.City
	// Attribute is the culprit trait hinted at by a villain clue.
	Attribute models.AttributeKind
	Value     string
	// Nearby marks a warning given in the final city where the culprit hides.
	Nearby bool
}

type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a clue writer for the OpenAI compatible API at baseURL. An empty baseURL uses the OpenAI default.
func NewClient(apiKey, baseURL, model string, logger *slog.Logger) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo1106
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.With("source", "ClueWriter"),
	}
}

// WriteClue phrases the hint of the prompt in a sentence or two.
func (c *Client) WriteClue(ctx context.Context, prompt Prompt) (string, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:       c.model,
			MaxTokens:   MaxTokens,
			Temperature: 0.8, //nolint:mnd // a little variety between cases.
			Messages:    Messages(prompt),
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion", slog.String("role", string(prompt.Role)))
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrEmptyCompletion, "read completion")
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", errors.Wrap(ErrEmptyCompletion, "read completion")
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "wrote clue",
		slog.String("role", string(prompt.Role)),
		slog.Int("total_tokens", completion.Usage.TotalTokens))
	return text, nil
}

const systemPrompt = `You write clues for a detective game set around the world. Answer with at most two sentences
spoken or found at the given place. Never name the culprit and never mention the game.`

// Messages builds the chat messages asking for the clue described by prompt.
func Messages(prompt Prompt) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},      //nolint:exhaustruct // optional fields.
		{Role: openai.ChatMessageRoleUser, Content: instruction(prompt)}, //nolint:exhaustruct // optional fields.
	}
}

func instruction(p Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The detective is in %s at the %s chasing the thief of %s. ", p.CityName, p.PlaceName, p.StolenItem)
	switch p.Style {
	case models.InteractionStyleTalk:
		b.WriteString("Write what a witness tells the detective. ")
	case models.InteractionStyleSearch:
		b.WriteString("Write what the detective finds when searching. ")
	case models.InteractionStyleObserve:
		b.WriteString("Write what the detective notices. ")
	}
	switch p.Role {
	case models.ClueRoleNextLocation:
		fmt.Fprintf(&b, "Hint that the thief left for %s in %s without naming the city. ", p.NextCity.Name,
			p.NextCity.Country)
		if p.NextCity.Description != "" {
			fmt.Fprintf(&b, "You may allude to: %s", p.NextCity.Description)
		}
	case models.ClueRoleVillain:
		fmt.Fprintf(&b, "Reveal that the thief's %s is %s.", p.Attribute, p.Value)
	case models.ClueRoleWarning:
		if p.Nearby {
			b.WriteString("Warn the detective that the thief is hiding somewhere close by.")
		} else {
			b.WriteString("Make it clear that nobody here has seen the thief and the trail has gone cold.")
		}
	}
	return strings.TrimSpace(b.String())
}
