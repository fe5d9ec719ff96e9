package judge

import (
	"context"

	"golang.org/x/time/rate"
)

// NewRateLimited wraps j so that calls are spaced to at most rps per second
// with the given burst. The wrapper keeps j's call convention: a native judge
// stays native. A non-positive rps returns j unchanged.
func NewRateLimited(j Judge, rps float64, burst int) Judge {
	if rps <= 0 {
		return j
	}
	if burst < 1 {
		burst = 1
	}
	rl := &rateLimited{next: j, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
	if nj, ok := j.(NativeJudge); ok {
		return &rateLimitedNative{rateLimited: rl, native: nj}
	}
	return rl
}

type rateLimited struct {
	next    Judge
	limiter *rate.Limiter
}

func (r *rateLimited) Name() string { return r.next.Name() }

func (r *rateLimited) Generate(ctx context.Context, prompt string, schema *Schema) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Generate(ctx, prompt, schema)
}

type rateLimitedNative struct {
	*rateLimited
	native NativeJudge
}

func (r *rateLimitedNative) GenerateWithCost(ctx context.Context, prompt string, schema *Schema) (string, float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", 0, err
	}
	return r.native.GenerateWithCost(ctx, prompt, schema)
}
