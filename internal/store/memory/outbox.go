package memory

import (
	"context"
	"sync"

	"github.com/nikhilbhutani/agencyhub/internal/queue"
)

// Outbox collects notification payloads instead of enqueueing them. It stands
// in for the queue client when Redis is not configured.
type Outbox struct {
	mu                 sync.Mutex
	ClaimDecisions     []queue.ClaimDecisionPayload
	ComplianceRejected []queue.ComplianceRejectedPayload
	LaborRequests      []queue.LaborRequestReceivedPayload
	// Err, when set, is returned by every enqueue.
	Err error
}

func (o *Outbox) EnqueueClaimDecision(_ context.Context, p queue.ClaimDecisionPayload) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.ClaimDecisions = append(o.ClaimDecisions, p)
	return nil
}

func (o *Outbox) EnqueueComplianceRejected(_ context.Context, p queue.ComplianceRejectedPayload) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.ComplianceRejected = append(o.ComplianceRejected, p)
	return nil
}

func (o *Outbox) EnqueueLaborRequestReceived(_ context.Context, p queue.LaborRequestReceivedPayload) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.LaborRequests = append(o.LaborRequests, p)
	return nil
}
