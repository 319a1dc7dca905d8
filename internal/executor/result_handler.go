package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/colloquy/internal/actions"
	"github.com/aretw0/colloquy/internal/monitor"
	"github.com/aretw0/colloquy/internal/statemanager"
	"github.com/aretw0/colloquy/internal/variables"
	"github.com/aretw0/colloquy/pkg/domain"
)

// ResultHandler folds an ActionResult into the execution state.
type ResultHandler struct {
	states  *statemanager.Manager
	monitor *monitor.Orchestrator
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
}

// HandleIncomplete records a round of an action that needs another turn and
// runs the monitor before returning.
func (h *ResultHandler) HandleIncomplete(ctx context.Context, state *domain.ExecutionState, a actions.Action, res *domain.ActionResult, vars *variables.Resolver, content string) {
	state.Status = domain.StatusWaitingInput
	h.record(state, a, res, vars)

	state.CurrentAction = a
	state.Metadata.ActionState = h.states.Serialize(a)

	// The queued feedback was consumed by this round's prompt.
	state.Metadata.LatestMonitorFeedback = ""

	if h.monitor == nil {
		return
	}
	h.monitor.Analyze(ctx, monitor.Request{
		ActionType: a.ActionType(),
		ActionID:   a.ActionID(),
		Result:     res,
		State:      state,
		SessionID:  state.SessionID,
		PhaseID:    state.Position.PhaseID,
		TopicID:    state.Position.TopicID,
		Round:      a.CurrentRound(),
		MaxRounds:  a.MaxRounds(),
		Content:    content,
	})
}

// HandleCompleted records the last round of an action. The monitor is not invoked.
func (h *ResultHandler) HandleCompleted(ctx context.Context, state *domain.ExecutionState, a actions.Action, res *domain.ActionResult, vars *variables.Resolver) {
	state.Status = domain.StatusCompleted
	h.record(state, a, res, vars)

	state.CurrentAction = nil
	state.Metadata.ActionState = nil
	state.Metadata.LatestMonitorFeedback = ""

	if h.hooks.OnActionComplete != nil {
		h.hooks.OnActionComplete(ctx, &domain.ActionEvent{
			EventBase: domain.EventBase{
				Timestamp: h.now(),
				Type:      domain.EventActionComplete,
				SessionID: state.SessionID,
			},
			ActionID:   a.ActionID(),
			ActionType: a.ActionType(),
			Rounds:     a.CurrentRound(),
			Success:    res.Success,
		})
	}
}

// HandleFailed records a round whose action reported Success=false and marks
// the session as errored. The position and the committed action snapshot are
// left as they were, so the next turn retries the round.
func (h *ResultHandler) HandleFailed(state *domain.ExecutionState, a actions.Action, res *domain.ActionResult, vars *variables.Resolver) {
	h.record(state, a, res, vars)
	state.CurrentAction = nil
	state.Status = domain.StatusError
	state.Metadata.Error = &domain.ExecutionError{
		Message:   "action failed: " + res.Error,
		ActionID:  a.ActionID(),
		Timestamp: h.now(),
	}
}

// PrepareNext moves to the next action, rolling over to the next non-empty
// topic or phase. When the script is exhausted the session is completed and
// the position ids are cleared.
func (h *ResultHandler) PrepareNext(state *domain.ExecutionState, script *domain.Script) {
	state.CurrentAction = nil
	state.Metadata.ActionState = nil
	state.Position.ActionIndex++
	state.Position.ClearIDs()

	if !seek(script, &state.Position) {
		state.Status = domain.StatusCompleted
		return
	}
	h.states.RestorePositionIDs(state, script)
	state.Status = domain.StatusRunning
}

// record applies what both paths share: variables, message, debug info, rounds,
// exit decision and metrics.
func (h *ResultHandler) record(state *domain.ExecutionState, a actions.Action, res *domain.ActionResult, vars *variables.Resolver) {
	now := h.now()
	pos := state.Position
	md := &state.Metadata

	if len(res.ExtractedVariables) > 0 {
		vars.SetAll(res.ExtractedVariables, pos, a.ActionType())
	}

	if res.AIMessage != "" {
		state.ConversationHistory = append(state.ConversationHistory, domain.Message{
			Role:      domain.RoleAssistant,
			Content:   res.AIMessage,
			ActionID:  a.ActionID(),
			Timestamp: now,
		})
		state.LastAIMessage = res.AIMessage
	}

	if res.DebugInfo != nil {
		dbg := *res.DebugInfo
		md.LastDebugInfo = &dbg
	}

	if res.Rounds != nil {
		if md.ActionRounds == nil {
			md.ActionRounds = make(map[string]domain.RoundRecord)
		}
		md.ActionRounds[a.ActionID()] = *res.Rounds
	}

	if res.ExitDecision != nil {
		md.ExitDecisions = append(md.ExitDecisions, domain.ExitDecisionRecord{
			ActionID:  a.ActionID(),
			Decision:  *res.ExitDecision,
			Timestamp: now,
		})
	}

	if res.Metrics != nil {
		if md.ActionMetrics == nil {
			md.ActionMetrics = make(map[string][]domain.MetricsRecord)
		}
		md.ActionMetrics[a.ActionID()] = append(md.ActionMetrics[a.ActionID()], domain.MetricsRecord{
			Round:     a.CurrentRound(),
			Metrics:   *res.Metrics,
			Timestamp: now,
		})
	}

	md.Error = nil
}
