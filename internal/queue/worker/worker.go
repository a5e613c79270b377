package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Trishit-H/tourhub/internal/jobs"
	"github.com/Trishit-H/tourhub/internal/mail"
	"github.com/Trishit-H/tourhub/internal/observability"
)

// Queue is the blocking-pop side of the redis mail queue.
type Queue interface {
	PopBlocking(ctx context.Context, key string, timeout time.Duration) ([]byte, error)
}

// ResetCleaner clears a user's pending reset token, so a token whose
// email never went out cannot sit around usable.
type ResetCleaner interface {
	ClearResetToken(ctx context.Context, userID string) error
}

type Config struct {
	QueueKey    string
	PopTimeout  time.Duration
	SendTimeout time.Duration
}

type Worker struct {
	cfg    Config
	queue  Queue
	mailer mail.Mailer
	users  ResetCleaner
	prom   *observability.Prom
	log    *slog.Logger
}

func New(cfg Config, queue Queue, mailer mail.Mailer, users ResetCleaner, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.QueueKey == "" {
		cfg.QueueKey = mail.MailQueueKey
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 5 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &Worker{
		cfg:    cfg,
		queue:  queue,
		mailer: mailer,
		users:  users,
		prom:   prom,
		log:    log,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("worker started", "queue", w.cfg.QueueKey)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil
		default:
		}

		processed, err := w.ProcessOne(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error("pop error", "error", err)
			// transient redis trouble, back off a little before retrying
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(2 * time.Second):
			}
			continue
		}
		_ = processed
	}
}

// ProcessOne pops a single job and runs it to completion, retrying the
// send with backoff up to the job's attempt budget. It returns false
// when the queue was quiet for the whole pop timeout.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	raw, err := w.queue.PopBlocking(ctx, w.cfg.QueueKey, w.cfg.PopTimeout)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	var j jobs.Job
	if err := json.Unmarshal(raw, &j); err != nil {
		w.log.Error("dropping undecodable job", "error", err)
		return true, nil
	}

	payload, err := jobs.DecodePayload(j)
	if err != nil {
		w.log.Error("dropping invalid job", "job_id", j.ID, "type", j.Type, "error", err)
		return true, nil
	}

	switch p := payload.(type) {
	case jobs.SendPasswordResetPayload:
		w.sendPasswordReset(ctx, j, p)
	default:
		w.log.Error("no handler for job type", "job_id", j.ID, "type", j.Type)
	}
	return true, nil
}

func (w *Worker) sendPasswordReset(ctx context.Context, j jobs.Job, p jobs.SendPasswordResetPayload) {
	msg := mail.ResetMessage{
		UserID:   p.UserID,
		To:       p.Email,
		Name:     p.Name,
		ResetURL: p.ResetURL,
	}

	for attempt := j.Attempts; attempt < j.MaxAttempts; attempt++ {
		start := time.Now()

		sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
		err := w.mailer.SendPasswordReset(sendCtx, msg)
		cancel()

		if w.prom != nil {
			w.prom.MailSendDuration.WithLabelValues("password_reset").Observe(time.Since(start).Seconds())
		}

		if err == nil {
			if w.prom != nil {
				w.prom.MailDeliveries.WithLabelValues("password_reset", "sent").Inc()
			}
			w.log.Info("password reset email sent", "job_id", j.ID, "to", msg.To, "attempt", attempt+1)
			return
		}

		w.log.Error("send failed", "job_id", j.ID, "to", msg.To, "attempt", attempt+1, "error", err)

		if attempt+1 >= j.MaxAttempts {
			break
		}
		if w.prom != nil {
			w.prom.MailDeliveries.WithLabelValues("password_reset", "retry").Inc()
		}

		select {
		case <-ctx.Done():
			// shutting down mid-retry; give up without clearing the
			// token so a later manual retry is still possible
			return
		case <-time.After(ExponentialBackoff(attempt)):
		}
	}

	// out of attempts: the email never went out, so invalidate the
	// reset token rather than leave a live token nobody received
	if w.prom != nil {
		w.prom.MailDeliveries.WithLabelValues("password_reset", "failed").Inc()
	}
	if p.UserID != "" {
		clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.users.ClearResetToken(clearCtx, p.UserID); err != nil {
			w.log.Error("clearing reset token failed", "job_id", j.ID, "user_id", p.UserID, "error", err)
		}
	}
	w.log.Error("giving up on password reset email", "job_id", j.ID, "to", msg.To)
}
