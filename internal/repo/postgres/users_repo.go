package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Trishit-H/tourhub/internal/apperr"
	"github.com/Trishit-H/tourhub/internal/observability"
	"github.com/Trishit-H/tourhub/internal/query"

	"github.com/Trishit-H/tourhub/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumnsSQL = `id, email, name, role, password_hash,
	password_changed_at, reset_token_hash, reset_token_expires_at,
	active, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row interface{ Scan(dest ...any) error }, u *user.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.PasswordHash,
		&u.PasswordChangedAt,
		&u.ResetTokenHash,
		&u.ResetTokenExpiresAt,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users(id, email, name, role, password_hash, active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Email, u.Name, u.Role, u.PasswordHash, u.Active, u.CreatedAt, u.UpdatedAt)
		return err
	})

	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return user.User{}, apperr.Duplicate("email", u.Email)
		}
		return user.User{}, apperr.FromDB(err, "User not found")
	}

	return u, nil
}

// GetByEmail is the authentication lookup; it is the only read that hands
// the password hash back on purpose. Inactive accounts are invisible.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+userColumnsSQL+` FROM users WHERE email = $1 AND active = TRUE`,
			strings.ToLower(strings.TrimSpace(email)))
		return scanUser(row, &u)
	})

	if err != nil {
		return user.User{}, apperr.FromDB(err, "No user found with that email address")
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+userColumnsSQL+` FROM users WHERE id = $1 AND active = TRUE`, id)
		return scanUser(row, &u)
	})

	if err != nil {
		return user.User{}, apperr.FromDB(err, "No user found with that ID")
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, spec query.Spec) ([]user.User, int, error) {
	conds, args, err := whereFromSpec(spec, userColumns, 1)

	if err != nil {
		return nil, 0, err
	}

	conds = append(conds, "active = TRUE")

	sql := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total
		FROM users
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		userColumnsSQL,
		strings.Join(conds, " AND "),
		orderFromSpec(spec, userColumns),
		len(args)+1, len(args)+2,
	)

	args = append(args, spec.Limit, spec.Offset())

	var output []user.User
	total := 0

	err = r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, sql, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]user.User, 0, spec.Limit)

		for rows.Next() {
			var u user.User

			err = rows.Scan(
				&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash,
				&u.PasswordChangedAt, &u.ResetTokenHash, &u.ResetTokenExpiresAt,
				&u.Active, &u.CreatedAt, &u.UpdatedAt, &total,
			)

			if err != nil {
				return err
			}

			output = append(output, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, apperr.FromDB(err, "User not found")
	}

	return output, total, nil
}

// UpdateProfile touches name/email only, the self-service path.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, name, email *string) (user.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	pos := 2

	if name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", pos))
		args = append(args, *name)
		pos++
	}
	if email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", pos))
		args = append(args, strings.ToLower(strings.TrimSpace(*email)))
		pos++
	}

	if len(sets) == 1 {
		return user.User{}, apperr.BadRequest("Nothing to update")
	}

	sql := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 AND active = TRUE RETURNING %s`,
		strings.Join(sets, ", "), userColumnsSQL)

	var u user.User

	err := r.observe("users.update_profile", func() error {
		row := r.pool.QueryRow(ctx, sql, args...)
		return scanUser(row, &u)
	})

	if err != nil {
		if apperr.IsUniqueViolation(err) && email != nil {
			return user.User{}, apperr.Duplicate("email", *email)
		}
		return user.User{}, apperr.FromDB(err, "No user found with that ID")
	}

	return u, nil
}

type AdminUpdateUserRequest struct {
	Name   *string    `json:"name" binding:"omitempty,min=1,max=80"`
	Email  *string    `json:"email" binding:"omitempty,email"`
	Role   *user.Role `json:"role" binding:"omitempty,oneof=user guide lead-guide admin"`
	Active *bool      `json:"active"`
}

func (r *UsersRepo) AdminUpdate(ctx context.Context, id string, req AdminUpdateUserRequest) (user.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	pos := 2

	set := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, pos))
		args = append(args, val)
		pos++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Email != nil {
		set("email", strings.ToLower(strings.TrimSpace(*req.Email)))
	}
	if req.Role != nil {
		set("role", *req.Role)
	}
	if req.Active != nil {
		set("active", *req.Active)
	}

	if len(sets) == 1 {
		return user.User{}, apperr.BadRequest("Nothing to update")
	}

	sql := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), userColumnsSQL)

	var u user.User

	err := r.observe("users.admin_update", func() error {
		row := r.pool.QueryRow(ctx, sql, args...)
		return scanUser(row, &u)
	})

	if err != nil {
		if apperr.IsUniqueViolation(err) && req.Email != nil {
			return user.User{}, apperr.Duplicate("email", *req.Email)
		}
		return user.User{}, apperr.FromDB(err, "No user found with that ID")
	}

	return u, nil
}

// UpdatePassword stores the new hash and stamps password_changed_at a second
// in the past, so a token issued in the same instant still validates. Any
// outstanding reset token dies with the old password.
func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	var affected int64

	err := r.observe("users.update_password", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users
			SET password_hash = $2,
				password_changed_at = NOW() - interval '1 second',
				reset_token_hash = NULL,
				reset_token_expires_at = NULL,
				updated_at = NOW()
			WHERE id = $1 AND active = TRUE`, id, passwordHash)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return apperr.FromDB(err, "No user found with that ID")
	}

	if affected == 0 {
		return apperr.NotFound("No user found with that ID")
	}

	return nil
}

func (r *UsersRepo) SetResetToken(ctx context.Context, id, digest string, expiresAt time.Time) error {
	var affected int64

	err := r.observe("users.set_reset_token", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users
			SET reset_token_hash = $2,
				reset_token_expires_at = $3,
				updated_at = NOW()
			WHERE id = $1 AND active = TRUE`, id, digest, expiresAt)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return apperr.FromDB(err, "No user found with that ID")
	}

	if affected == 0 {
		return apperr.NotFound("No user found with that ID")
	}

	return nil
}

// GetByResetToken resolves an unexpired reset digest. Invalid and expired
// look identical from the outside, no oracle for token probing.
func (r *UsersRepo) GetByResetToken(ctx context.Context, digest string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_reset_token", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+userColumnsSQL+` FROM users
			WHERE reset_token_hash = $1
			  AND reset_token_expires_at > NOW()
			  AND active = TRUE`, digest)
		return scanUser(row, &u)
	})

	if err != nil {
		appErr := apperr.FromDB(err, "")
		if appErr.Code == apperr.CodeNotFound {
			return user.User{}, apperr.BadRequest("Token is invalid or has expired")
		}
		return user.User{}, appErr
	}

	return u, nil
}

func (r *UsersRepo) ClearResetToken(ctx context.Context, id string) error {
	err := r.observe("users.clear_reset_token", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users
			SET reset_token_hash = NULL,
				reset_token_expires_at = NULL,
				updated_at = NOW()
			WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return apperr.FromDB(err, "No user found with that ID")
	}

	return nil
}

// SoftDelete marks the account inactive; the row stays.
func (r *UsersRepo) SoftDelete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("users.soft_delete", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active = TRUE`, id)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return apperr.FromDB(err, "No user found with that ID")
	}

	if affected == 0 {
		return apperr.NotFound("No user found with that ID")
	}

	return nil
}

// Delete removes the row for real, admin only.
func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return apperr.FromDB(err, "No user found with that ID")
	}

	if affected == 0 {
		return apperr.NotFound("No user found with that ID")
	}

	return nil
}
