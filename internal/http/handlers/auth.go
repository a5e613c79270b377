package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Trishit-H/tourhub/internal/apperr"
	"github.com/Trishit-H/tourhub/internal/domain/user"
	"github.com/Trishit-H/tourhub/internal/http/middlewares"
	"github.com/Trishit-H/tourhub/internal/mail"
	"github.com/Trishit-H/tourhub/internal/security"
)

// AuthUsersRepository is the slice of the users repo the auth flows need.
type AuthUsersRepository interface {
	Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, digest string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, digest string) (user.User, error)
	ClearResetToken(ctx context.Context, id string) error
}

// TokenSigner issues a session token for an authenticated user.
type TokenSigner interface {
	Sign(userID string) (string, error)
}

type AuthHandler struct {
	repo          AuthUsersRepository
	signer        TokenSigner
	mailer        mail.Mailer
	resetTokenTTL time.Duration
	appBaseURL    string
}

func NewAuthHandler(repo AuthUsersRepository, signer TokenSigner, mailer mail.Mailer, resetTokenTTL time.Duration, appBaseURL string) *AuthHandler {
	return &AuthHandler{
		repo:          repo,
		signer:        signer,
		mailer:        mailer,
		resetTokenTTL: resetTokenTTL,
		appBaseURL:    strings.TrimRight(appBaseURL, "/"),
	}
}

type signUpRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

func (h *AuthHandler) respondWithToken(ctx *gin.Context, status int, u user.User) {
	token, err := h.signer.Sign(u.ID)
	if err != nil {
		RespondError(ctx, apperr.Internal(err))
		return
	}

	ctx.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": u},
	})
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req signUpRequest
	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondError(ctx, apperr.Internal(err))
		return
	}

	u, err := h.repo.Create(ctx.Request.Context(), req.Email, hash, req.Name, user.RoleUser)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	h.respondWithToken(ctx, http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req loginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	// same message whether the email is unknown or the password is wrong
	u, err := h.repo.GetByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		RespondError(ctx, apperr.Unauthorized("Incorrect email or password"))
		return
	}
	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		RespondError(ctx, apperr.Unauthorized("Incorrect email or password"))
		return
	}

	h.respondWithToken(ctx, http.StatusOK, u)
}

func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req forgotPasswordRequest
	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.repo.GetByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	raw, digest, err := security.NewResetToken()
	if err != nil {
		RespondError(ctx, apperr.Internal(err))
		return
	}

	expiresAt := time.Now().Add(h.resetTokenTTL)
	if err := h.repo.SetResetToken(ctx.Request.Context(), u.ID, digest, expiresAt); err != nil {
		RespondError(ctx, err)
		return
	}

	msg := mail.ResetMessage{
		UserID:   u.ID,
		To:       u.Email,
		Name:     u.Name,
		ResetURL: fmt.Sprintf("%s/api/v1/auth/reset-password/%s", h.appBaseURL, raw),
	}
	if err := h.mailer.SendPasswordReset(ctx.Request.Context(), msg); err != nil {
		// the token is useless if the email never leaves, withdraw it
		_ = h.repo.ClearResetToken(ctx.Request.Context(), u.ID)
		RespondError(ctx, apperr.InternalMessage(fmt.Errorf("send reset email: %w", err), "There was an error sending the email. Try again later!"))
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{"message": "Token sent to email!"})
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req resetPasswordRequest
	if !BindJSON(ctx, &req) {
		return
	}

	digest := security.HashResetToken(ctx.Param("token"))
	u, err := h.repo.GetByResetToken(ctx.Request.Context(), digest)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondError(ctx, apperr.Internal(err))
		return
	}
	if err := h.repo.UpdatePassword(ctx.Request.Context(), u.ID, hash); err != nil {
		RespondError(ctx, err)
		return
	}

	h.respondWithToken(ctx, http.StatusOK, u)
}

func (h *AuthHandler) UpdatePassword(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, apperr.Unauthorized("You are not logged in! Please log in to get access."))
		return
	}

	var req updatePasswordRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if err := security.CheckPassword(principal.PasswordHash, req.CurrentPassword); err != nil {
		RespondError(ctx, apperr.Unauthorized("Your current password is wrong."))
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondError(ctx, apperr.Internal(err))
		return
	}
	if err := h.repo.UpdatePassword(ctx.Request.Context(), principal.ID, hash); err != nil {
		RespondError(ctx, err)
		return
	}

	h.respondWithToken(ctx, http.StatusOK, principal)
}
