package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DefinitionsPath string `validate:"required"` // hcl file or directory
	Metric          string // defaults to the first declared metric
	CasePath        string // yaml test case, required by Run

	Scheduler     string `validate:"oneof=sequential parallel"`
	ParallelLimit int    `validate:"gte=0"`
	IncludeReason bool
	Timeout       time.Duration `validate:"gte=0"`

	JudgeProvider         string  `validate:"oneof=openai ollama"`
	JudgeModel            string  `validate:"required"`
	JudgeBaseURL          string  `validate:"omitempty,url"`
	JudgeAPIKey           string
	JudgeTemperature      float64 `validate:"gte=0,lte=2"`
	InputPricePerMillion  float64 `validate:"gte=0"`
	OutputPricePerMillion float64 `validate:"gte=0"`
	RequestsPerSecond     float64 `validate:"gte=0"`
	Burst                 int     `validate:"gte=0"`

	Output          string `validate:"oneof=text json"`
	LogFormat       string `validate:"oneof=text json"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	HealthcheckPort int    `validate:"gte=0,lte=65535"`
	Trace           bool
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Scheduler:     "sequential",
		IncludeReason: true,
		JudgeProvider: ProviderOpenAI,
		JudgeModel:    "gpt-4o-mini",
		Output:        "text",
		LogFormat:     "text",
		LogLevel:      "info",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return nil, errors.New(strings.Join(msgs, "; "))
		}
		return nil, err
	}
	if cfg.JudgeProvider == ProviderOpenAI && cfg.JudgeAPIKey == "" && cfg.JudgeBaseURL == "" {
		return nil, errors.New("JudgeAPIKey is required for the openai provider unless a custom base URL is set")
	}
	return &cfg, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required configuration field and cannot be empty", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s is invalid (%s=%s), got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
}
