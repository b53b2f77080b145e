// Package openai implements ai.Provider on top of the OpenAI
// chat-completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"

	"telegram-dare-bot/internal/ai"
)

// Client calls the OpenAI chat-completions endpoint.
type Client struct {
	client openai.Client
	model  string
}

// New creates a client for the given API key and model. baseURL overrides
// the default endpoint when non-empty (useful for compatible gateways).
func New(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: 20 * time.Second}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Complete sends the transcript and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, msgs []ai.Message, opts ai.Options) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: toParams(msgs),
	}
	if opts.Temperature != 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.MaxTokens != 0 {
		params.MaxTokens = openai.Int(opts.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Debug().
		Str("model", c.model).
		Int("transcript_len", len(msgs)).
		Str("content", content).
		Msg("Completion received")
	return content, nil
}

func toParams(msgs []ai.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case ai.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case ai.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
