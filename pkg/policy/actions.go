package policy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modflow/modflow/pkg/models"
	"github.com/modflow/modflow/pkg/notifier"
)

// TimeoutDuration is how long a timed-out user stays muted.
const TimeoutDuration = 300 * time.Second

// Executor carries out enforcement actions and emits webhook notices.
// Action execution is simulated at the chat-platform boundary; the
// notification and the structured response are the observable effects.
type Executor struct {
	webhook *notifier.Webhook
	logger  *slog.Logger
}

// NewExecutor creates an executor. The webhook may be disabled.
func NewExecutor(webhook *notifier.Webhook) *Executor {
	return &Executor{
		webhook: webhook,
		logger:  slog.Default().With("component", "policy"),
	}
}

// Execute performs the given action for the decision. Unknown actions
// resolve to a successful no-op so callers never block on a policy
// gap. A failure during execution yields a success=false response; the
// decision itself is still recorded by the caller.
func (e *Executor) Execute(ctx context.Context, action string, d *models.ModerationDecision) (resp models.ActionResponse) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Action execution failed", "action", action, "user_id", d.UserID, "error", r)
			resp = models.ActionResponse{
				ActionTaken: action,
				Success:     false,
				Details:     fmt.Sprintf("Action failed: %v", r),
				Timestamp:   time.Now().UTC(),
			}
		}
	}()

	resp = models.ActionResponse{ActionTaken: action, Success: true, Timestamp: time.Now().UTC()}

	switch action {
	case models.ActionWarn:
		e.logger.Info("Warning user", "user_id", d.UserID, "channel_id", d.ChannelID)
		e.webhook.Notifyf(ctx, "⚠️ User %s warned for: %s", d.UserID, d.Reasoning)
		resp.Details = fmt.Sprintf("User warned for: %s", d.Reasoning)

	case models.ActionTimeout:
		e.logger.Info("Timing out user", "user_id", d.UserID, "duration", TimeoutDuration)
		e.webhook.Notifyf(ctx, "⏰ User %s timed out for 5 minutes: %s", d.UserID, d.Reasoning)
		resp.Details = fmt.Sprintf("User timed out for %d seconds", int(TimeoutDuration.Seconds()))

	case models.ActionKick:
		e.logger.Info("Kicking user", "user_id", d.UserID, "channel_id", d.ChannelID)
		e.webhook.Notifyf(ctx, "👢 User %s kicked: %s", d.UserID, d.Reasoning)
		resp.Details = "User kicked from channel"

	case models.ActionBan:
		e.logger.Info("Banning user", "user_id", d.UserID)
		e.webhook.Notifyf(ctx, "🔨 User %s banned: %s", d.UserID, d.Reasoning)
		resp.Details = "User permanently banned"

	default:
		resp.ActionTaken = models.ActionNone
		resp.Details = "No action required"
	}

	return resp
}
