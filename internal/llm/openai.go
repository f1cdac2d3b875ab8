// Package llm wraps the OpenAI chat-completion API used by the
// generation pipeline. Timeouts and retries are the client library's
// concern; callers pass a context and get content or an error.
package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alora-app/alora/internal/prompt"
)

// Completer produces a completion for a prompt pair. Satisfied by
// *Client and by test fakes.
type Completer interface {
	Complete(ctx context.Context, p prompt.Prompt) (string, error)
	CompleteJSON(ctx context.Context, p prompt.Prompt) (string, error)
}

// Client calls the OpenAI chat-completion API.
type Client struct {
	api   *openai.Client
	model string
}

// ErrEmptyCompletion is returned when the API responds without choices.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// New creates a new LLM client.
func New(apiKey, model string) *Client {
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// Complete sends a prompt pair and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, p prompt.Prompt) (string, error) {
	return c.complete(ctx, p, nil)
}

// CompleteJSON is Complete with the response constrained to a JSON object.
func (c *Client) CompleteJSON(ctx context.Context, p prompt.Prompt) (string, error) {
	return c.complete(ctx, p, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
}

func (c *Client) complete(ctx context.Context, p prompt.Prompt, format *openai.ChatCompletionResponseFormat) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		ResponseFormat: format,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
