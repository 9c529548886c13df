// Package model defines the language-model collaborator contract agents
// delegate to, plus lightweight implementations for tests and demos. Real
// providers live in the openai and anthropic subpackages.
package model

import (
	"context"
	"fmt"
)

// Generator is the single operation an agent needs from a language model:
// turn a prompt into text. Implementations must return within the deadline
// carried by ctx; the agent layer enforces its configured timeout through
// context cancellation.
//
// Failures should be reported as (or wrap) *core.ModelError so the agent
// layer can log and isolate them uniformly.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// StaticGenerator is an in-memory Generator useful for tests and examples.
// It returns canned responses for known prompts and a deterministic echo
// for everything else.
type StaticGenerator struct {
	responses map[string]string
}

// NewStaticGenerator constructs an empty StaticGenerator.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{responses: make(map[string]string)}
}

// AddResponse registers a canned completion for an exact prompt.
func (g *StaticGenerator) AddResponse(prompt, response string) {
	g.responses[prompt] = response
}

// Generate implements Generator.
func (g *StaticGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if response, ok := g.responses[prompt]; ok {
		return response, nil
	}
	return fmt.Sprintf("echo: %s", prompt), nil
}
