package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "firstlook_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 90, 120},
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "firstlook_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20),
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "firstlook_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(500, 500, 20),
		},
		[]string{"model"},
	)
	aiEstimatedCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_ai_estimated_cost_usd_total",
			Help: "Estimated total cost of AI requests in USD.",
		},
		[]string{"model"},
	)
	imageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_image_requests_total",
			Help: "Total number of cover image generation requests.",
		},
		[]string{"status"},
	)
)

func observeUsage(model string, usage UsageInfo) {
	if usage.TotalTokens == 0 {
		return
	}
	aiPromptTokens.With(prometheus.Labels{"model": model}).Observe(float64(usage.PromptTokens))
	aiCompletionTokens.With(prometheus.Labels{"model": model}).Observe(float64(usage.CompletionTokens))
	if usage.EstimatedCostUSD > 0 {
		aiEstimatedCostUSD.With(prometheus.Labels{"model": model}).Add(usage.EstimatedCostUSD)
	}
}
