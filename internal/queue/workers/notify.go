package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/agencyhub/internal/metrics"
	"github.com/nikhilbhutani/agencyhub/internal/notify"
	"github.com/nikhilbhutani/agencyhub/internal/queue"
)

type NotificationWorker struct {
	mailer notify.Mailer
}

func NewNotificationWorker(mailer notify.Mailer) *NotificationWorker {
	return &NotificationWorker{mailer: mailer}
}

// Register wires every notification task type into the registry.
func (w *NotificationWorker) Register(r *queue.HandlersRegistry) {
	r.Register(queue.TypeClaimDecision, asynq.HandlerFunc(w.ProcessClaimDecision))
	r.Register(queue.TypeComplianceRejected, asynq.HandlerFunc(w.ProcessComplianceRejected))
	r.Register(queue.TypeLaborRequestReceived, asynq.HandlerFunc(w.ProcessLaborRequestReceived))
}

func (w *NotificationWorker) ProcessClaimDecision(ctx context.Context, t *asynq.Task) error {
	var p queue.ClaimDecisionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	msg, err := notify.ClaimDecision(p)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return w.send(ctx, t.Type(), msg)
}

func (w *NotificationWorker) ProcessComplianceRejected(ctx context.Context, t *asynq.Task) error {
	var p queue.ComplianceRejectedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	msg, err := notify.ComplianceRejected(p)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return w.send(ctx, t.Type(), msg)
}

func (w *NotificationWorker) ProcessLaborRequestReceived(ctx context.Context, t *asynq.Task) error {
	var p queue.LaborRequestReceivedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	msg, err := notify.LaborRequestReceived(p)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return w.send(ctx, t.Type(), msg)
}

func (w *NotificationWorker) send(ctx context.Context, taskType string, msg notify.Message) error {
	if msg.To == "" {
		slog.Warn("notification without recipient dropped", "task", taskType)
		return nil
	}
	if err := w.mailer.Send(ctx, msg); err != nil {
		metrics.NotificationsSent.WithLabelValues(taskType, "error").Inc()
		return err
	}
	metrics.NotificationsSent.WithLabelValues(taskType, "ok").Inc()
	slog.Info("notification sent", "task", taskType, "to", msg.To)
	return nil
}
