package jobs_test

import (
	"errors"
	"testing"

	"github.com/Trishit-H/tourhub/internal/jobs"
)

func validPayload() jobs.SendPasswordResetPayload {
	return jobs.SendPasswordResetPayload{
		UserID:   "user-1",
		Email:    "a@b.com",
		Name:     "Ada",
		ResetURL: "https://tourhub.io/reset/abc",
	}
}

func TestNewJobRoundTrip(t *testing.T) {
	j, err := jobs.NewJob(jobs.JobSendPasswordReset, validPayload())
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	if j.ID == "" || j.MaxAttempts != 5 || j.Attempts != 0 {
		t.Fatalf("unexpected job defaults: %+v", j)
	}

	decoded, err := jobs.DecodePayload(j)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}

	p, ok := decoded.(jobs.SendPasswordResetPayload)
	if !ok {
		t.Fatalf("decoded wrong type: %T", decoded)
	}
	if p != validPayload() {
		t.Fatalf("round trip mismatch: %+v", p)
	}
}

func TestNewJobRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		jobType jobs.JobType
		payload any
		wantErr error
	}{
		{
			name:    "unknown_type",
			jobType: jobs.JobType("mystery"),
			payload: validPayload(),
			wantErr: jobs.ErrInvalidJobType,
		},
		{
			name:    "wrong_payload_type",
			jobType: jobs.JobSendPasswordReset,
			payload: struct{}{},
			wantErr: jobs.ErrPayloadTypeMismatch,
		},
		{
			name:    "missing_fields",
			jobType: jobs.JobSendPasswordReset,
			payload: jobs.SendPasswordResetPayload{Email: "a@b.com"},
			wantErr: jobs.ErrInvalidJobPayload,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			_, err := jobs.NewJob(tt.jobType, tt.payload)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodePayloadRejectsEmpty(t *testing.T) {
	j := jobs.Job{Type: jobs.JobSendPasswordReset}

	if _, err := jobs.DecodePayload(j); !errors.Is(err, jobs.ErrInvalidJobPayload) {
		t.Fatalf("got %v, want ErrInvalidJobPayload", err)
	}
}
