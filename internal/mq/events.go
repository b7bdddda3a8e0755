package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/corefellowship/backend/internal/logging"
)

// Topics for intake submission events consumed by the notification worker.
const (
	TopicSubmissions = "fellowship.submissions"
)

// Submission kinds.
const (
	KindStudentApplication = "student_application"
	KindStartup            = "startup"
)

// SubmissionEvent announces a newly submitted intake form.
type SubmissionEvent struct {
	Kind        string    `json:"kind"`
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Term        string    `json:"term,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Publisher publishes submission events best-effort: a broker failure is
// logged and never fails the originating request. A nil Publisher is a no-op,
// so messaging stays optional.
type Publisher struct {
	mq  *MQ
	log logging.Logger
}

func NewPublisher(mq *MQ, log logging.Logger) *Publisher {
	return &Publisher{mq: mq, log: log}
}

// Submitted publishes a submission event to the submissions topic.
func (p *Publisher) Submitted(ctx context.Context, event SubmissionEvent) {
	if p == nil || p.mq == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error(ctx, "marshal submission event", "error", err)
		return
	}
	attrs := map[string]string{"kind": event.Kind}
	if _, err := p.mq.Publish(ctx, TopicSubmissions, data, attrs); err != nil {
		p.log.Error(ctx, "publish submission event", "kind", event.Kind, "id", event.ID, "error", err)
	}
}
