package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summaryDefs = "../dagdef/testdata/summary"

func noEnv(string) string { return "" }

// fakeOpenAI answers chat completions the way a model would for the summary
// metric, labelling the summary as verdict.
func fakeOpenAI(t *testing.T, verdict string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		prompt := req.Messages[len(req.Messages)-1].Content
		content := "A short summary."
		switch {
		case strings.Contains(prompt, "DAG Traversal:"):
			content = `{"reason": "The summary is short."}`
		case strings.Contains(prompt, "How long is the summary?"):
			content = `{"verdict": "` + verdict + `", "reason": "One sentence."}`
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-test",
			"choices": []map[string]any{{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}}},
			"usage":   map[string]any{"prompt_tokens": 100, "completion_tokens": 10, "total_tokens": 110},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExecute_Help(t *testing.T) {
	t.Parallel()
	// Arrange
	out := &bytes.Buffer{}

	// Act
	err := Execute(context.Background(), out, []string{"--help"}, noEnv)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "validate")
}

func TestExecute_UsageErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"run", "--not-a-flag"}, wantMsg: "unknown flag: --not-a-flag"},
		{name: "missing defs", args: []string{"validate"}, wantMsg: "DefinitionsPath is a required configuration field"},
		{name: "bad scheduler", args: []string{"run", "-d", summaryDefs, "--api-key", "k", "--scheduler", "random"}, wantMsg: "Scheduler must be one of"},
		{name: "bad log level", args: []string{"validate", "-d", summaryDefs, "--log-level", "loud"}, wantMsg: "LogLevel must be one of"},
		{name: "missing openai key", args: []string{"run", "-d", summaryDefs, "testdata/case.yaml"}, wantMsg: "JudgeAPIKey is required"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// Act
			err := Execute(context.Background(), &bytes.Buffer{}, tc.args, noEnv)

			// Assert
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %v", err)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestExecute_Validate(t *testing.T) {
	t.Parallel()
	// Arrange
	out := &bytes.Buffer{}

	// Act
	err := Execute(context.Background(), out, []string{"validate", "-d", summaryDefs}, noEnv)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Definitions are valid")
}

func TestExecute_Run(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		verdict  string
		wantErr  bool
		wantLine string
	}{
		{name: "passing score", verdict: "short", wantLine: "[PASS]"},
		{name: "failing score", verdict: "medium", wantErr: true, wantLine: "[FAIL]"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// Arrange
			srv := fakeOpenAI(t, tc.verdict)
			env := func(key string) string {
				if key == "OPENAI_API_KEY" {
					return "sk-from-env"
				}
				return ""
			}
			out := &bytes.Buffer{}
			args := []string{"run", "-d", summaryDefs, "--base-url", srv.URL, "--model", "gpt-test", "--log-level", "warn", "testdata/case.yaml"}

			// Act
			err := Execute(context.Background(), out, args, env)

			// Assert
			assert.Contains(t, out.String(), tc.wantLine)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %v", err)
			assert.Equal(t, ExitCodeFailed, exitErr.Code)
		})
	}
}
