// Package openaijudge is a native judge backed by the OpenAI chat completions
// API. Schemas are enforced server-side through JSON-schema response formats
// and every call reports its token cost.
package openaijudge

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/judge"
)

const defaultSystemPrompt = "You are a strict, impartial evaluator. Follow the instructions exactly."

// Config configures a Judge.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// InputPricePerMillion and OutputPricePerMillion are the prices of one
	// million prompt and completion tokens.
	InputPricePerMillion  float64
	OutputPricePerMillion float64
	Temperature           float32
	SystemPrompt          string
}

// Judge implements judge.NativeJudge.
type Judge struct {
	client *openai.Client
	cfg    Config
}

var _ judge.NativeJudge = (*Judge)(nil)

// New creates a judge from cfg.
func New(cfg Config) (*Judge, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai judge requires a model")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	return &Judge{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}, nil
}

func (j *Judge) Name() string { return "openai/" + j.cfg.Model }

func (j *Judge) Generate(ctx context.Context, prompt string, schema *judge.Schema) (string, error) {
	out, _, err := j.GenerateWithCost(ctx, prompt, schema)
	return out, err
}

func (j *Judge) GenerateWithCost(ctx context.Context, prompt string, schema *judge.Schema) (string, float64, error) {
	logger := ctxlog.FromContext(ctx)
	req := openai.ChatCompletionRequest{
		Model:       j.cfg.Model,
		Temperature: j.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: j.cfg.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if schema != nil {
		def := Definition(schema)
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schema.Name,
				Schema: &def,
				Strict: true,
			},
		}
	}

	logger.Debug("Calling OpenAI.", "model", j.cfg.Model, "structured", schema != nil)
	resp, err := j.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", 0, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, errors.New("OpenAI returned no choices")
	}
	cost := j.cost(resp.Usage)
	logger.Debug("Received response from OpenAI.",
		"finish_reason", resp.Choices[0].FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, cost, nil
}

func (j *Judge) cost(u openai.Usage) float64 {
	return float64(u.PromptTokens)*j.cfg.InputPricePerMillion/1e6 +
		float64(u.CompletionTokens)*j.cfg.OutputPricePerMillion/1e6
}

// Definition converts a judge schema into a strict JSON schema object.
func Definition(s *judge.Schema) jsonschema.Definition {
	def := jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           make(map[string]jsonschema.Definition, len(s.Fields)),
		AdditionalProperties: false,
	}
	for _, f := range s.Fields {
		prop := jsonschema.Definition{Description: f.Description}
		switch f.Type {
		case judge.FieldString:
			prop.Type = jsonschema.String
			prop.Enum = f.AllowedValues
		case judge.FieldBoolean:
			prop.Type = jsonschema.Boolean
		case judge.FieldNumber:
			prop.Type = jsonschema.Number
		case judge.FieldStringList:
			prop.Type = jsonschema.Array
			prop.Items = &jsonschema.Definition{Type: jsonschema.String}
		}
		def.Properties[f.Name] = prop
		def.Required = append(def.Required, f.Name)
	}
	return def
}
