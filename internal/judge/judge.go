package judge

import (
	"context"
	"errors"

	"github.com/specialistvlad/dagjudge/internal/ctxlog"
	"github.com/specialistvlad/dagjudge/internal/telemetry"
)

// Judge is a generative model the engine can prompt. A nil schema asks for
// free text. Generic judges that cannot honor a schema return
// ErrSchemaUnsupported.
type Judge interface {
	Name() string
	Generate(ctx context.Context, prompt string, schema *Schema) (string, error)
}

// NativeJudge always honors schemas and reports the cost of each call.
type NativeJudge interface {
	Judge
	GenerateWithCost(ctx context.Context, prompt string, schema *Schema) (string, float64, error)
}

// IsNative reports whether j uses the native call convention.
func IsNative(j Judge) bool {
	_, ok := j.(NativeJudge)
	return ok
}

// Text asks j for free text and returns it with the incurred cost.
func Text(ctx context.Context, j Judge, prompt string) (string, float64, error) {
	out, cost, err := call(ctx, j, prompt, nil)
	if err != nil {
		record(j, "text", "error")
		return "", 0, invocationErr(j, err)
	}
	record(j, "text", "ok")
	return out, cost, nil
}

// Structured asks j for a JSON object matching schema and decodes it into out.
//
// A generic judge that rejects the schema is asked once more without it, and
// the object is extracted from the free-form reply. Any failure on that
// second call is final. schema must not be nil.
func Structured(ctx context.Context, j Judge, prompt string, schema *Schema, out any) (float64, error) {
	if schema == nil {
		return 0, ErrNilSchema
	}
	logger := ctxlog.FromContext(ctx).With("judge", j.Name(), "schema", schema.Name)

	raw, cost, err := call(ctx, j, prompt, schema)
	if errors.Is(err, ErrSchemaUnsupported) && !IsNative(j) {
		logger.Warn("Judge rejected schema, retrying without it.")
		telemetry.JudgeFallbacks.WithLabelValues(j.Name()).Inc()
		raw, cost, err = call(ctx, j, prompt, nil)
	}
	if err != nil {
		record(j, "structured", "error")
		return 0, invocationErr(j, err)
	}

	if err := Decode(raw, schema, out); err != nil {
		logger.Debug("Could not decode judge output.", "raw", raw, "error", err)
		record(j, "structured", "invalid")
		return cost, err
	}
	record(j, "structured", "ok")
	return cost, nil
}

func call(ctx context.Context, j Judge, prompt string, schema *Schema) (string, float64, error) {
	if nj, ok := j.(NativeJudge); ok {
		out, cost, err := nj.GenerateWithCost(ctx, prompt, schema)
		if err == nil && cost > 0 {
			telemetry.JudgeCost.WithLabelValues(j.Name()).Add(cost)
		}
		return out, cost, err
	}
	out, err := j.Generate(ctx, prompt, schema)
	return out, 0, err
}

func record(j Judge, mode, result string) {
	telemetry.JudgeCalls.WithLabelValues(j.Name(), mode, result).Inc()
}
