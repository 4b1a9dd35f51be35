package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type openAIClient struct {
	client          *openaigo.Client
	model           string
	maxPromptTokens int
	counter         *TokenCounter
	logger          *zap.Logger
}

func (c *openAIClient) GenerateText(ctx context.Context, systemPrompt, userInput string, params GenerationParams) (string, UsageInfo, error) {
	usageInfo := UsageInfo{}

	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: empty system prompt", ErrGenerationFailed)
	}

	promptTokens := c.counter.Count(systemPrompt) + c.counter.Count(userInput)
	if c.maxPromptTokens > 0 && promptTokens > c.maxPromptTokens {
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_prompt_too_large"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: %d tokens, limit %d", ErrPromptTooLarge, promptTokens, c.maxPromptTokens)
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: userInput,
		})
	}

	req := openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32Val(params.Temperature, 1.0),
		MaxTokens:   intVal(params.MaxTokens),
		TopP:        float32Val(params.TopP, 1.0),
	}
	if params.JSONMode {
		req.ResponseFormat = &openaigo.ChatCompletionResponseFormat{Type: openaigo.ChatCompletionResponseFormatTypeJSONObject}
	}

	logFields := []zap.Field{
		zap.String("model", c.model),
		zap.Int("estimatedPromptTokens", promptTokens),
	}
	c.logger.Debug("Sending chat completion request", logFields...)

	startTime := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(startTime)
	logFields = append(logFields, zap.Duration("duration", duration))

	if err != nil {
		c.logger.Error("AI API request failed", append(logFields, zap.Error(err))...)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error("AI API returned an empty response", logFields...)
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		usageInfo.PromptTokens = resp.Usage.PromptTokens
		usageInfo.CompletionTokens = resp.Usage.CompletionTokens
		usageInfo.TotalTokens = resp.Usage.TotalTokens
	} else {
		completion := c.counter.Count(resp.Choices[0].Message.Content)
		usageInfo.PromptTokens = promptTokens
		usageInfo.CompletionTokens = completion
		usageInfo.TotalTokens = promptTokens + completion
	}
	usageInfo.EstimatedCostUSD = calculateCost(usageInfo.PromptTokens, usageInfo.CompletionTokens)
	observeUsage(c.model, usageInfo)

	c.logger.Info("AI response received",
		append(logFields,
			zap.Int("promptTokens", usageInfo.PromptTokens),
			zap.Int("completionTokens", usageInfo.CompletionTokens),
			zap.Float64("estimatedCostUSD", usageInfo.EstimatedCostUSD),
		)...,
	)
	return resp.Choices[0].Message.Content, usageInfo, nil
}
