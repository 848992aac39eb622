package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_chat_requests_total",
		Help: "Chat requests handled, by outcome",
	}, []string{"status"})

	chatLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coach_chat_latency_seconds",
		Help:    "End-to-end chat request latency",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	})

	rounds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coach_rounds_per_turn",
		Help:    "Tool-calling rounds used per turn",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	llmCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_llm_calls_total",
		Help: "LLM invocations, by kind (round, forced) and status",
	}, []string{"kind", "status"})

	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_tool_calls_total",
		Help: "Tool executions, by tool and status",
	}, []string{"tool", "status"})

	toolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coach_tool_latency_seconds",
		Help:    "Tool execution latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"tool"})
)

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

func RecordChat(statusLabel string, started time.Time) {
	chatRequests.WithLabelValues(statusLabel).Inc()
	chatLatency.Observe(time.Since(started).Seconds())
}

func RecordRounds(n int) {
	rounds.Observe(float64(n))
}

func RecordLLMCall(kind string, ok bool) {
	llmCalls.WithLabelValues(kind, status(ok)).Inc()
}

func RecordToolCall(tool string, ok bool, took time.Duration) {
	toolCalls.WithLabelValues(tool, status(ok)).Inc()
	toolLatency.WithLabelValues(tool).Observe(took.Seconds())
}
