package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Trishit-H/tourhub/internal/apperr"
	"github.com/Trishit-H/tourhub/internal/domain/user"
	"github.com/Trishit-H/tourhub/internal/http/middlewares"
	"github.com/Trishit-H/tourhub/internal/query"
	"github.com/Trishit-H/tourhub/internal/repo/postgres"
)

type UsersRepository interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context, spec query.Spec) ([]user.User, int, error)
	UpdateProfile(ctx context.Context, id string, name, email *string) (user.User, error)
	AdminUpdate(ctx context.Context, id string, req postgres.AdminUpdateUserRequest) (user.User, error)
	SoftDelete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	repo UsersRepository
}

func NewUsersHandler(repo UsersRepository) *UsersHandler {
	return &UsersHandler{repo: repo}
}

type updateMeRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=80"`
	Email *string `json:"email" binding:"omitempty,email"`

	// caught explicitly so password changes can't slip through this route
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

func (h *UsersHandler) Me(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, apperr.Unauthorized("You are not logged in! Please log in to get access."))
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{"user": principal})
}

func (h *UsersHandler) UpdateMe(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, apperr.Unauthorized("You are not logged in! Please log in to get access."))
		return
	}

	var req updateMeRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if req.Password != nil || req.PasswordConfirm != nil {
		RespondError(ctx, apperr.BadRequest("This route is not for password updates. Please use /auth/update-password."))
		return
	}

	u, err := h.repo.UpdateProfile(ctx.Request.Context(), principal.ID, req.Name, req.Email)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) DeleteMe(ctx *gin.Context) {
	principal, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		RespondError(ctx, apperr.Unauthorized("You are not logged in! Please log in to get access."))
		return
	}

	if err := h.repo.SoftDelete(ctx.Request.Context(), principal.ID); err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusNoContent, nil)
}

// admin surface below

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	spec := query.Parse(ctx.Request.URL.Query())

	users, total, err := h.repo.List(ctx.Request.Context(), spec)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondList(ctx, len(users), total, gin.H{"users": shapeDocs(users, spec)})
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	u, err := h.repo.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req postgres.AdminUpdateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.repo.AdminUpdate(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	if err := h.repo.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusNoContent, nil)
}
