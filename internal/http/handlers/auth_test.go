package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Trishit-H/tourhub/internal/apperr"
	"github.com/Trishit-H/tourhub/internal/domain/user"
	"github.com/Trishit-H/tourhub/internal/http/handlers"
	"github.com/Trishit-H/tourhub/internal/http/middlewares"
	"github.com/Trishit-H/tourhub/internal/mail"
	"github.com/Trishit-H/tourhub/internal/security"
)

type fakeUsersAuthRepo struct {
	createFn          func(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error)
	getByEmailFn      func(ctx context.Context, email string) (user.User, error)
	updatePasswordFn  func(ctx context.Context, id, passwordHash string) error
	setResetTokenFn   func(ctx context.Context, id, digest string, expiresAt time.Time) error
	getByResetFn      func(ctx context.Context, digest string) (user.User, error)
	clearResetTokenFn func(ctx context.Context, id string) error
}

func (f *fakeUsersAuthRepo) Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, email, passwordHash, name, role)
	}
	return user.User{ID: uuid.NewString(), Email: email, Name: name, Role: role}, nil
}

func (f *fakeUsersAuthRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, apperr.NotFound("No user found with that email address")
}

func (f *fakeUsersAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(ctx, id, passwordHash)
	}
	return nil
}

func (f *fakeUsersAuthRepo) SetResetToken(ctx context.Context, id, digest string, expiresAt time.Time) error {
	if f.setResetTokenFn != nil {
		return f.setResetTokenFn(ctx, id, digest, expiresAt)
	}
	return nil
}

func (f *fakeUsersAuthRepo) GetByResetToken(ctx context.Context, digest string) (user.User, error) {
	if f.getByResetFn != nil {
		return f.getByResetFn(ctx, digest)
	}
	return user.User{}, apperr.BadRequest("Token is invalid or has expired")
}

func (f *fakeUsersAuthRepo) ClearResetToken(ctx context.Context, id string) error {
	if f.clearResetTokenFn != nil {
		return f.clearResetTokenFn(ctx, id)
	}
	return nil
}

type fakeSigner struct {
	signFn func(userID string) (string, error)
}

func (f *fakeSigner) Sign(userID string) (string, error) {
	if f.signFn != nil {
		return f.signFn(userID)
	}
	return "token-" + userID, nil
}

type capturingMailer struct {
	sendFn func(ctx context.Context, msg mail.ResetMessage) error
	last   mail.ResetMessage
	calls  int
}

func (m *capturingMailer) SendPasswordReset(ctx context.Context, msg mail.ResetMessage) error {
	m.calls++
	m.last = msg
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return nil
}

func newAuthHandler(repo *fakeUsersAuthRepo, mailer *capturingMailer) *handlers.AuthHandler {
	return handlers.NewAuthHandler(repo, &fakeSigner{}, mailer, 10*time.Minute, "http://localhost:8080")
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignUpHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeUsersAuthRepo)
		wantStatusCode int
		wantInMessage  string
	}{
		{
			name:           "success",
			body:           `{"name": "Leo Gill", "email": "leo@example.com", "password": "pass1234", "passwordConfirm": "pass1234"}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "password_mismatch",
			body:           `{"name": "Leo Gill", "email": "leo@example.com", "password": "pass1234", "passwordConfirm": "different"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "password_too_short",
			body:           `{"name": "Leo Gill", "email": "leo@example.com", "password": "short", "passwordConfirm": "short"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_email",
			body: `{"name": "Leo Gill", "email": "leo@example.com", "password": "pass1234", "passwordConfirm": "pass1234"}`,
			repoSetUp: func(f *fakeUsersAuthRepo) {
				f.createFn = func(ctx context.Context, email, hash, name string, role user.Role) (user.User, error) {
					return user.User{}, apperr.Duplicate("email", email)
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantInMessage:  "email",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersAuthRepo{}
			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := newAuthHandler(repo, &capturingMailer{})
			r := setupRouter(http.MethodPost, "/signup", h.SignUp)

			w := postJSON(r, "/signup", tt.body)
			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			body := decodeBody(t, w)
			if tt.wantStatusCode == http.StatusCreated {
				if body["token"] == nil || body["token"] == "" {
					t.Fatalf("signup response missing token: %v", body)
				}
				u := body["data"].(map[string]any)["user"].(map[string]any)
				if u["role"] != "user" {
					t.Fatalf("new accounts must get role user, got %v", u["role"])
				}
			}
			if tt.wantInMessage != "" && !strings.Contains(body["message"].(string), tt.wantInMessage) {
				t.Fatalf("message %q does not mention %q", body["message"], tt.wantInMessage)
			}
		})
	}
}

func TestSignUpNeverStoresPlaintext(t *testing.T) {
	var storedHash string
	repo := &fakeUsersAuthRepo{
		createFn: func(ctx context.Context, email, hash, name string, role user.Role) (user.User, error) {
			storedHash = hash
			return user.User{ID: "u-1", Email: email, Name: name, Role: role}, nil
		},
	}

	h := newAuthHandler(repo, &capturingMailer{})
	r := setupRouter(http.MethodPost, "/signup", h.SignUp)

	w := postJSON(r, "/signup", `{"name": "Leo Gill", "email": "leo@example.com", "password": "pass1234", "passwordConfirm": "pass1234"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if storedHash == "pass1234" {
		t.Fatal("plaintext password reached the repo")
	}
	if err := security.CheckPassword(storedHash, "pass1234"); err != nil {
		t.Fatalf("stored hash does not verify the original password: %v", err)
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("pass1234")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	known := user.User{ID: "u-1", Email: "leo@example.com", Name: "Leo", Role: user.RoleUser, PasswordHash: hash}

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeUsersAuthRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"email": "leo@example.com", "password": "pass1234"}`,
			repoSetUp: func(f *fakeUsersAuthRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) { return known, nil }
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "wrong_password",
			body: `{"email": "leo@example.com", "password": "wrongpass"}`,
			repoSetUp: func(f *fakeUsersAuthRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) { return known, nil }
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "unknown_email",
			body:           `{"email": "nobody@example.com", "password": "pass1234"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "missing_password",
			body:           `{"email": "leo@example.com"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersAuthRepo{}
			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := newAuthHandler(repo, &capturingMailer{})
			r := setupRouter(http.MethodPost, "/login", h.Login)

			w := postJSON(r, "/login", tt.body)
			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// wrong password and unknown account must be indistinguishable to the client
func TestLoginFailuresShareOneMessage(t *testing.T) {
	hash, _ := security.HashPassword("pass1234")
	known := user.User{ID: "u-1", Email: "leo@example.com", PasswordHash: hash}

	wrongPass := &fakeUsersAuthRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) { return known, nil },
	}
	unknown := &fakeUsersAuthRepo{}

	var messages []string
	for _, repo := range []*fakeUsersAuthRepo{wrongPass, unknown} {
		h := newAuthHandler(repo, &capturingMailer{})
		r := setupRouter(http.MethodPost, "/login", h.Login)
		w := postJSON(r, "/login", `{"email": "leo@example.com", "password": "wrongpass"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got status %d", w.Code)
		}
		messages = append(messages, decodeBody(t, w)["message"].(string))
	}

	if messages[0] != messages[1] {
		t.Fatalf("login failure messages differ: %q vs %q", messages[0], messages[1])
	}
}

func TestForgotPasswordHandler(t *testing.T) {
	known := user.User{ID: "u-1", Email: "leo@example.com", Name: "Leo"}

	t.Run("success", func(t *testing.T) {
		var storedDigest string
		repo := &fakeUsersAuthRepo{
			getByEmailFn: func(ctx context.Context, email string) (user.User, error) { return known, nil },
			setResetTokenFn: func(ctx context.Context, id, digest string, expiresAt time.Time) error {
				storedDigest = digest
				return nil
			},
		}
		mailer := &capturingMailer{}

		h := newAuthHandler(repo, mailer)
		r := setupRouter(http.MethodPost, "/forgot-password", h.ForgotPassword)

		w := postJSON(r, "/forgot-password", `{"email": "leo@example.com"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
		if mailer.calls != 1 {
			t.Fatalf("expected one mail, got %d", mailer.calls)
		}

		// the link carries the raw token, storage only ever sees the digest
		idx := strings.LastIndex(mailer.last.ResetURL, "/")
		rawToken := mailer.last.ResetURL[idx+1:]
		if rawToken == "" || rawToken == storedDigest {
			t.Fatalf("raw token %q must differ from stored digest %q", rawToken, storedDigest)
		}
		if security.HashResetToken(rawToken) != storedDigest {
			t.Fatal("stored digest is not the hash of the mailed token")
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		h := newAuthHandler(&fakeUsersAuthRepo{}, &capturingMailer{})
		r := setupRouter(http.MethodPost, "/forgot-password", h.ForgotPassword)

		w := postJSON(r, "/forgot-password", `{"email": "nobody@example.com"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("mail_failure_withdraws_token", func(t *testing.T) {
		cleared := false
		repo := &fakeUsersAuthRepo{
			getByEmailFn: func(ctx context.Context, email string) (user.User, error) { return known, nil },
			clearResetTokenFn: func(ctx context.Context, id string) error {
				cleared = true
				return nil
			},
		}
		mailer := &capturingMailer{
			sendFn: func(ctx context.Context, msg mail.ResetMessage) error { return errors.New("smtp down") },
		}

		h := newAuthHandler(repo, mailer)
		r := setupRouter(http.MethodPost, "/forgot-password", h.ForgotPassword)

		w := postJSON(r, "/forgot-password", `{"email": "leo@example.com"}`)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
		if msg := decodeBody(t, w)["message"]; msg != "There was an error sending the email. Try again later!" {
			t.Fatalf("unexpected message %q", msg)
		}
		if !cleared {
			t.Fatal("reset token must be cleared when the email cannot be sent")
		}
	})
}

func TestResetPasswordHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var newHash string
		repo := &fakeUsersAuthRepo{
			getByResetFn: func(ctx context.Context, digest string) (user.User, error) {
				return user.User{ID: "u-1", Email: "leo@example.com"}, nil
			},
			updatePasswordFn: func(ctx context.Context, id, passwordHash string) error {
				newHash = passwordHash
				return nil
			},
		}

		h := newAuthHandler(repo, &capturingMailer{})
		r := setupRouter(http.MethodPatch, "/reset-password/:token", h.ResetPassword)

		req := httptest.NewRequest(http.MethodPatch, "/reset-password/sometoken", bytes.NewBufferString(`{"password": "newpass123", "passwordConfirm": "newpass123"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
		if err := security.CheckPassword(newHash, "newpass123"); err != nil {
			t.Fatalf("stored hash does not match the new password: %v", err)
		}
		if decodeBody(t, w)["token"] == nil {
			t.Fatal("reset response must log the user in with a fresh token")
		}
	})

	t.Run("bad_token", func(t *testing.T) {
		h := newAuthHandler(&fakeUsersAuthRepo{}, &capturingMailer{})
		r := setupRouter(http.MethodPatch, "/reset-password/:token", h.ResetPassword)

		req := httptest.NewRequest(http.MethodPatch, "/reset-password/expired", bytes.NewBufferString(`{"password": "newpass123", "passwordConfirm": "newpass123"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
		if msg := decodeBody(t, w)["message"]; msg != "Token is invalid or has expired" {
			t.Fatalf("unexpected message %q", msg)
		}
	})
}

func withPrincipal(u user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxPrincipal, u)
		c.Next()
	}
}

func TestUpdatePasswordHandler(t *testing.T) {
	hash, _ := security.HashPassword("oldpass123")
	principal := user.User{ID: "u-1", Email: "leo@example.com", PasswordHash: hash}

	t.Run("success", func(t *testing.T) {
		var newHash string
		repo := &fakeUsersAuthRepo{
			updatePasswordFn: func(ctx context.Context, id, passwordHash string) error {
				newHash = passwordHash
				return nil
			},
		}

		h := newAuthHandler(repo, &capturingMailer{})
		r := gin.New()
		r.PATCH("/update-password", withPrincipal(principal), h.UpdatePassword)

		req := httptest.NewRequest(http.MethodPatch, "/update-password", bytes.NewBufferString(`{"currentPassword": "oldpass123", "password": "newpass123", "passwordConfirm": "newpass123"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
		if err := security.CheckPassword(newHash, "newpass123"); err != nil {
			t.Fatalf("stored hash does not match the new password: %v", err)
		}
	})

	t.Run("wrong_current_password", func(t *testing.T) {
		repo := &fakeUsersAuthRepo{
			updatePasswordFn: func(ctx context.Context, id, passwordHash string) error {
				t.Fatal("password must not change when the current one is wrong")
				return nil
			},
		}

		h := newAuthHandler(repo, &capturingMailer{})
		r := gin.New()
		r.PATCH("/update-password", withPrincipal(principal), h.UpdatePassword)

		req := httptest.NewRequest(http.MethodPatch, "/update-password", bytes.NewBufferString(`{"currentPassword": "wrongone1", "password": "newpass123", "passwordConfirm": "newpass123"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
		if msg := decodeBody(t, w)["message"]; msg != "Your current password is wrong." {
			t.Fatalf("unexpected message %q", msg)
		}
	})

	t.Run("no_principal", func(t *testing.T) {
		h := newAuthHandler(&fakeUsersAuthRepo{}, &capturingMailer{})
		r := setupRouter(http.MethodPatch, "/update-password", h.UpdatePassword)

		req := httptest.NewRequest(http.MethodPatch, "/update-password", bytes.NewBufferString(`{"currentPassword": "oldpass123", "password": "newpass123", "passwordConfirm": "newpass123"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
	})
}
