package jobs

// SendPasswordResetPayload carries everything the worker needs to compose
// the reset email. The UserID lets the worker clear the reset fields on
// terminal delivery failure.
type SendPasswordResetPayload struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	ResetURL string `json:"resetUrl"`
}
