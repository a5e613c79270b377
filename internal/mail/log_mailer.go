package mail

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// LogMailer stands in for a real delivery provider; the transport itself is
// an external service behind the Mailer interface.
type LogMailer struct {
	From string
	Log  *slog.Logger
}

func NewLogMailer(from string, log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{From: from, Log: log}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("MAILER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("MAILER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	m.Log.InfoContext(ctx, "mail.password_reset",
		"from", m.From,
		"to", msg.To,
		"name", msg.Name,
		"reset_url", msg.ResetURL,
	)
	return nil
}
