package app

import (
	"fmt"

	"github.com/specialistvlad/dagjudge/internal/judge"
	"github.com/specialistvlad/dagjudge/internal/judge/lcjudge"
	"github.com/specialistvlad/dagjudge/internal/judge/openaijudge"
)

// newJudge builds the configured judge, rate limited when requested.
func newJudge(cfg *Config) (judge.Judge, error) {
	var (
		j   judge.Judge
		err error
	)
	switch cfg.JudgeProvider {
	case ProviderOpenAI:
		j, err = openaijudge.New(openaijudge.Config{
			APIKey:                cfg.JudgeAPIKey,
			BaseURL:               cfg.JudgeBaseURL,
			Model:                 cfg.JudgeModel,
			Temperature:           float32(cfg.JudgeTemperature),
			InputPricePerMillion:  cfg.InputPricePerMillion,
			OutputPricePerMillion: cfg.OutputPricePerMillion,
		})
	case ProviderOllama:
		j, err = lcjudge.NewOllama(cfg.JudgeBaseURL, cfg.JudgeModel, cfg.JudgeTemperature)
	default:
		err = fmt.Errorf("unknown judge provider %q", cfg.JudgeProvider)
	}
	if err != nil {
		return nil, err
	}
	return judge.NewRateLimited(j, cfg.RequestsPerSecond, cfg.Burst), nil
}
