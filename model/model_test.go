package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Generator = GeneratorFunc(nil)
	_ Generator = (*StaticGenerator)(nil)
)

func TestStaticGenerator(t *testing.T) {
	g := NewStaticGenerator()
	g.AddResponse("known prompt", "canned answer")

	out, err := g.Generate(context.Background(), "known prompt")
	require.NoError(t, err)
	assert.Equal(t, "canned answer", out)

	out, err = g.Generate(context.Background(), "anything else")
	require.NoError(t, err)
	assert.Equal(t, "echo: anything else", out)
}

func TestStaticGenerator_HonorsContext(t *testing.T) {
	g := NewStaticGenerator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneratorFunc(t *testing.T) {
	g := GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		return prompt + "!", nil
	})
	out, err := g.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!", out)
}
