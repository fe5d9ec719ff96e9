package openaijudge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/specialistvlad/dagjudge/internal/judge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seenRequest is the part of a chat completion request the tests inspect.
type seenRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func newServer(t *testing.T, reply string, seen *seenRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if seen != nil {
			_ = json.Unmarshal(body, seen)
		}
		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-test",
			Model: "gpt-test",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 1000, CompletionTokens: 500, TotalTokens: 1500},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateWithCost_Structured(t *testing.T) {
	t.Parallel()
	// Arrange
	var seen seenRequest
	srv := newServer(t, `{"verdict": "short", "reason": "few words"}`, &seen)
	j, err := New(Config{
		BaseURL:               srv.URL,
		APIKey:                "test",
		Model:                 "gpt-test",
		InputPricePerMillion:  2,
		OutputPricePerMillion: 8,
	})
	require.NoError(t, err)

	// Act
	var got struct {
		Verdict string `json:"verdict"`
		Reason  string `json:"reason"`
	}
	cost, err := judge.Structured(context.Background(), j, "how long?", judge.NonBinaryVerdictSchema([]string{"short", "long"}), &got)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 0.006, cost, 1e-9)
	assert.Equal(t, "short", got.Verdict)
	require.NotNil(t, seen.ResponseFormat)
	assert.Equal(t, string(openai.ChatCompletionResponseFormatTypeJSONSchema), seen.ResponseFormat.Type)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "how long?", seen.Messages[1].Content)
}

func TestGenerateWithCost_Text(t *testing.T) {
	t.Parallel()
	var seen seenRequest
	srv := newServer(t, "# Intro", &seen)
	j, err := New(Config{BaseURL: srv.URL, Model: "gpt-test"})
	require.NoError(t, err)

	out, cost, err := judge.Text(context.Background(), j, "extract headings")

	require.NoError(t, err)
	assert.Equal(t, "# Intro", out)
	assert.Zero(t, cost)
	assert.Nil(t, seen.ResponseFormat)
	assert.Equal(t, "openai/gpt-test", j.Name())
}

func TestGenerate_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	j, err := New(Config{BaseURL: srv.URL, Model: "gpt-test"})
	require.NoError(t, err)

	_, _, err = judge.Text(context.Background(), j, "x")

	assert.ErrorIs(t, err, judge.ErrInvocation)
}

func TestNew_RequiresModel(t *testing.T) {
	t.Parallel()
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestDefinition(t *testing.T) {
	t.Parallel()
	got := Definition(judge.NonBinaryVerdictSchema([]string{"a", "b"}))

	want := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"verdict": {Type: jsonschema.String, Description: "The option that best matches the criteria.", Enum: []string{"a", "b"}},
			"reason":  {Type: jsonschema.String, Description: "Why the verdict was chosen."},
		},
		Required:             []string{"verdict", "reason"},
		AdditionalProperties: false,
	}
	assert.Equal(t, want, got)
}
