// Package llm wraps the remote chat-completion API the workflows talk to.
// It offers plain text completions and JSON completions decoded straight
// into a struct, tolerating the markdown fences models like to wrap JSON in.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	log "log/slog"

	openai "github.com/openai/openai-go/v3"
)

// Client is a thin wrapper over the OpenAI chat API.
type Client struct {
	api   openai.Client
	model string
}

// New creates a client using the given model. An empty model falls back to
// a small fast default.
func New(api openai.Client, model string) *Client {
	if model == "" {
		model = openai.ChatModelGPT5Nano
	}
	return &Client{api: api, model: model}
}

// Complete sends a system+user prompt pair and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Model: c.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}
	return content, nil
}

// CompleteJSON asks for a JSON-only reply and unmarshals it into out.
// Replies wrapped in ```json fences are unwrapped first.
func (c *Client) CompleteJSON(ctx context.Context, system, prompt string, out any) error {
	content, err := c.Complete(ctx, system, prompt)
	if err != nil {
		return err
	}

	raw := ExtractJSON(content)
	log.Debug("structured reply", "raw", raw)

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("unmarshal model reply: %w (raw: %s)", err, content)
	}
	return nil
}
