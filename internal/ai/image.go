package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ImageGenerator renders a cover image for a prompt and returns PNG bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// ImageConfig configures the cover image backend.
type ImageConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    string
	Timeout time.Duration
}

type openAIImageClient struct {
	client *openaigo.Client
	model  string
	size   string
	logger *zap.Logger
}

// NewImageGenerator returns nil when no API key is configured; callers then
// store stories without covers.
func NewImageGenerator(cfg ImageConfig, logger *zap.Logger) ImageGenerator {
	if cfg.APIKey == "" {
		logger.Warn("No image API key configured, covers are disabled")
		return nil
	}
	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = cfg.BaseURL
	}
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = openaigo.CreateImageModelDallE3
	}
	size := cfg.Size
	if size == "" {
		size = openaigo.CreateImageSize1024x1792
	}
	return &openAIImageClient{
		client: openaigo.NewClientWithConfig(openaiConfig),
		model:  model,
		size:   size,
		logger: logger.Named("ImageClient"),
	}
}

func (c *openAIImageClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: empty image prompt", ErrGenerationFailed)
	}

	start := time.Now()
	resp, err := c.client.CreateImage(ctx, openaigo.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           c.size,
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		imageRequestsTotal.With(prometheus.Labels{"status": "error"}).Inc()
		c.logger.Error("Image generation failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		imageRequestsTotal.With(prometheus.Labels{"status": "error_empty_response"}).Inc()
		return nil, fmt.Errorf("%w: empty image response", ErrGenerationFailed)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		imageRequestsTotal.With(prometheus.Labels{"status": "error_decode"}).Inc()
		return nil, fmt.Errorf("%w: invalid image payload: %v", ErrGenerationFailed, err)
	}

	imageRequestsTotal.With(prometheus.Labels{"status": "success"}).Inc()
	c.logger.Info("Cover image generated", zap.Duration("duration", time.Since(start)), zap.Int("bytes", len(data)))
	return data, nil
}
