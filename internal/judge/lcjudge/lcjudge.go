// Package lcjudge adapts any langchaingo model into a generic judge. Generic
// judges cannot enforce schemas, so schema constrained calls are rejected with
// judge.ErrSchemaUnsupported and the caller falls back to JSON extraction.
package lcjudge

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/judge"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Judge implements judge.Judge on top of an llms.Model.
type Judge struct {
	name        string
	model       llms.Model
	temperature float64
}

var _ judge.Judge = (*Judge)(nil)

// New wraps model. name identifies the judge in logs and metrics.
func New(name string, model llms.Model, temperature float64) *Judge {
	return &Judge{name: name, model: model, temperature: temperature}
}

// NewOllama creates a judge backed by an Ollama server.
func NewOllama(serverURL, model string, temperature float64) (*Judge, error) {
	if model == "" {
		return nil, errors.New("ollama judge requires a model")
	}
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return New("ollama/"+model, llm, temperature), nil
}

func (j *Judge) Name() string { return j.name }

func (j *Judge) Generate(ctx context.Context, prompt string, schema *judge.Schema) (string, error) {
	if schema != nil {
		return "", judge.ErrSchemaUnsupported
	}
	ctxlog.FromContext(ctx).Debug("Calling langchaingo model.", "judge", j.name)
	out, err := llms.GenerateFromSinglePrompt(ctx, j.model, prompt, llms.WithTemperature(j.temperature))
	if err != nil {
		return "", fmt.Errorf("%s call failed: %w", j.name, err)
	}
	return out, nil
}
