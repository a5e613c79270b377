package mail

import "context"

// ResetMessage is everything a password-reset email needs. The raw token is
// embedded in the URL and exists nowhere else but the recipient's inbox.
// UserID lets the delivery side clear the reset fields when sending fails
// for good.
type ResetMessage struct {
	UserID   string
	To       string
	Name     string
	ResetURL string
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, msg ResetMessage) error
}
