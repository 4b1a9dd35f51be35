package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"firstlook/internal/models"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	pricePerMillionInputTokensUSD  = 0.15
	pricePerMillionOutputTokensUSD = 0.6
)

// ErrGenerationFailed is returned for every failed or empty LLM call.
var ErrGenerationFailed = fmt.Errorf("%w: ai generation failed", models.ErrExternalService)

// ErrPromptTooLarge is returned before a request is sent when the prompt
// exceeds the configured token budget.
var ErrPromptTooLarge = errors.New("prompt exceeds token budget")

// GenerationParams uses pointers so that zero values can be told apart from
// "use the provider default".
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
	// JSONMode asks the provider for a bare JSON object.
	JSONMode bool
}

// UsageInfo is the token accounting for one call.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// TextGenerator is implemented by every LLM backend.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userInput string, params GenerationParams) (string, UsageInfo, error)
}

// Config selects and configures the LLM backend.
type Config struct {
	ClientType      string
	BaseURL         string
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxPromptTokens int
}

func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

// NewTextGenerator builds the backend named by cfg.ClientType.
func NewTextGenerator(cfg Config, logger *zap.Logger) (TextGenerator, error) {
	switch strings.ToLower(cfg.ClientType) {
	case "openai", "":
		openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			openaiConfig.BaseURL = cfg.BaseURL
		}
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		logger.Info("Using OpenAI text generator",
			zap.String("baseURL", openaiConfig.BaseURL),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout),
		)
		return &openAIClient{
			client:          openaigo.NewClientWithConfig(openaiConfig),
			model:           cfg.Model,
			maxPromptTokens: cfg.MaxPromptTokens,
			counter:         NewTokenCounter(cfg.Model),
			logger:          logger.Named("OpenAIClient"),
		}, nil
	case "ollama":
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ai client type: %q", cfg.ClientType)
	}
}

func float32Val(f64 *float64, def float32) float32 {
	if f64 == nil {
		return def
	}
	return float32(*f64)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
