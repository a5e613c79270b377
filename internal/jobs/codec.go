package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
)

func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	if _, err := assertPayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals job.Payload into the correct typed payload struct.
func DecodePayload(j Job) (any, error) {
	if !j.Type.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case JobSendPasswordReset:
		var p SendPasswordResetPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}

// ValidatePayload performs minimal validation on typed payloads before they
// are accepted onto the queue.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	p, err := assertPayload(t, payload)
	if err != nil {
		return err
	}

	trim := strings.TrimSpace

	switch v := p.(type) {
	case SendPasswordResetPayload:
		if trim(v.UserID) == "" || trim(v.Email) == "" || trim(v.ResetURL) == "" {
			return ErrInvalidJobPayload
		}
		return nil
	default:
		return ErrInvalidJobType
	}
}

func assertPayload(t JobType, payload any) (any, error) {
	switch t {
	case JobSendPasswordReset:
		switch v := payload.(type) {
		case SendPasswordResetPayload:
			return v, nil
		case *SendPasswordResetPayload:
			return *v, nil
		default:
			return nil, ErrPayloadTypeMismatch
		}
	default:
		return nil, ErrInvalidJobType
	}
}
