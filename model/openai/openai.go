// Package openai adapts the OpenAI Chat Completions API to the model.Generator
// contract: one prompt in, one completion out, non-streaming.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/swarmforge/swarmforge/core"
)

// Options configure the OpenAI generator. Fields mirror a minimal subset of
// Chat Completion parameters; extend via functional options without breaking
// callers.
type Options struct {
	Model               openai.ChatModel
	Temperature         float64
	MaxCompletionTokens int64
	// APIKey overrides the ambient OPENAI_API_KEY credential.
	APIKey string
}

// Generator wraps the OpenAI Chat Completions API behind model.Generator.
type Generator struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
}

// New creates a Generator using the official client. Without an explicit
// APIKey the client falls back to the ambient OPENAI_API_KEY credential.
func New(optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)
	return &Generator{client: &client, opts: opts}
}

// NewFromClient creates a Generator from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// Generate sends the prompt as a single user message and returns the first
// choice's content.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               g.opts.Model,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", core.NewModelError(string(g.opts.Model), "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", core.NewModelError(string(g.opts.Model), "no choices returned", nil)
	}
	return resp.Choices[0].Message.Content, nil
}
