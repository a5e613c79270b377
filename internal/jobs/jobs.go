package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// a Job is one unit of asynchronous work carried over the queue.

type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"maxAttempts"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewJob encodes and validates the payload up front, so the worker never
// sees a job it cannot decode.
func NewJob(t JobType, payload any) (Job, error) {
	if err := ValidatePayload(t, payload); err != nil {
		return Job{}, err
	}

	raw, err := EncodePayload(t, payload)

	if err != nil {
		return Job{}, err
	}

	return Job{
		ID:          uuid.NewString(),
		Type:        t,
		Payload:     raw,
		Attempts:    0,
		MaxAttempts: 5,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
