package mail

import (
	"context"
	"encoding/json"

	"github.com/Trishit-H/tourhub/internal/jobs"
)

// MailQueueKey is the redis list shared by the API producer and the worker.
const MailQueueKey = "tourhub:mail"

type queuePusher interface {
	Push(ctx context.Context, key string, payload []byte) error
}

// QueuedMailer hands the message to the background worker instead of
// blocking the request on the provider. It implements Mailer, so the auth
// handler cannot tell the difference.
type QueuedMailer struct {
	queue queuePusher
}

func NewQueuedMailer(queue queuePusher) *QueuedMailer {
	return &QueuedMailer{queue: queue}
}

func (m *QueuedMailer) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	job, err := jobs.NewJob(jobs.JobSendPasswordReset, jobs.SendPasswordResetPayload{
		UserID:   msg.UserID,
		Email:    msg.To,
		Name:     msg.Name,
		ResetURL: msg.ResetURL,
	})

	if err != nil {
		return err
	}

	raw, err := json.Marshal(job)

	if err != nil {
		return err
	}

	return m.queue.Push(ctx, MailQueueKey, raw)
}
