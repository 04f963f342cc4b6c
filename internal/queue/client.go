package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/agencyhub/internal/config"
	"github.com/nikhilbhutani/agencyhub/internal/metrics"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(RedisOpt(cfg)),
	}
}

// RedisOpt is shared by the API client and the worker server.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueClaimDecision(ctx context.Context, payload ClaimDecisionPayload) error {
	return c.enqueue(ctx, TypeClaimDecision, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute))
}

func (c *Client) EnqueueComplianceRejected(ctx context.Context, payload ComplianceRejectedPayload) error {
	return c.enqueue(ctx, TypeComplianceRejected, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute))
}

func (c *Client) EnqueueLaborRequestReceived(ctx context.Context, payload LaborRequestReceivedPayload) error {
	return c.enqueue(ctx, TypeLaborRequestReceived, payload, asynq.MaxRetry(3), asynq.Timeout(time.Minute), asynq.Queue("low"))
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		metrics.NotificationsEnqueued.WithLabelValues(taskType, "error").Inc()
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	metrics.NotificationsEnqueued.WithLabelValues(taskType, "ok").Inc()
	return nil
}
