package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	Turns            *prometheus.CounterVec
	ActionsCompleted *prometheus.CounterVec
	MonitorAnalyses  *prometheus.CounterVec
	LLMDuration      *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_turns_total",
				Help: "Total number of executed turns by resulting status",
			},
			[]string{"status"},
		),
		ActionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_actions_completed_total",
				Help: "Total number of completed actions",
			},
			[]string{"action_type"},
		),
		MonitorAnalyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_monitor_analyses_total",
				Help: "Total number of monitor analyses by outcome",
			},
			[]string{"action_type", "outcome"},
		),
		LLMDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "colloquy_llm_request_duration_seconds",
				Help:    "Duration of LLM provider calls",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"purpose"},
		),
	}
	for _, c := range []prometheus.Collector{m.Turns, m.ActionsCompleted, m.MonitorAnalyses, m.LLMDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(string(e.Status)).Inc()
		},
		OnActionComplete: func(_ context.Context, e *domain.ActionEvent) {
			m.ActionsCompleted.WithLabelValues(e.ActionType).Inc()
		},
		OnMonitorAnalysis: func(_ context.Context, e *domain.MonitorEvent) {
			m.MonitorAnalyses.WithLabelValues(e.ActionType, e.Outcome).Inc()
		},
		OnLLMCall: func(_ context.Context, e *domain.LLMEvent) {
			m.LLMDuration.WithLabelValues(e.Purpose).Observe(e.Duration.Seconds())
		},
	}
}

// LogHooks returns hooks that write every event to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "turn_start",
				"session_id", e.SessionID,
				"phase_id", e.Position.PhaseID,
				"topic_id", e.Position.TopicID,
				"action_id", e.Position.ActionID,
			)
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			logger.InfoContext(ctx, "turn_end",
				"session_id", e.SessionID,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
		OnActionComplete: func(ctx context.Context, e *domain.ActionEvent) {
			logger.InfoContext(ctx, "action_complete",
				"session_id", e.SessionID,
				"action_id", e.ActionID,
				"action_type", e.ActionType,
				"round", e.Rounds,
			)
		},
		OnMonitorAnalysis: func(ctx context.Context, e *domain.MonitorEvent) {
			logger.DebugContext(ctx, "monitor_analysis",
				"session_id", e.SessionID,
				"action_id", e.ActionID,
				"outcome", e.Outcome,
			)
		},
		OnLLMCall: func(ctx context.Context, e *domain.LLMEvent) {
			logger.DebugContext(ctx, "llm_call",
				"session_id", e.SessionID,
				"purpose", e.Purpose,
				"duration", e.Duration,
				"failed", e.Failed,
			)
		},
	}
}
