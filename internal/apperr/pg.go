package apperr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FromDB normalizes a storage-layer failure into a typed error at the point
// of failure, so nothing above the repo layer inspects driver error shapes.
// notFoundMsg is used when the row simply is not there.
func FromDB(err error, notFoundMsg string) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(notFoundMsg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			field, value := parseDuplicateDetail(pgErr.Detail)
			return Duplicate(field, value)
		case "22P02":
			// bad uuid/number text hit the driver
			return Cast("id", "")
		case "23514":
			return Validation([]string{checkConstraintMessage(pgErr.ConstraintName)})
		}
	}

	return Internal(err)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// parseDuplicateDetail pulls field and value out of postgres detail text of
// the form `Key (email)=(a@b.com) already exists.`
func parseDuplicateDetail(detail string) (field, value string) {
	open := strings.Index(detail, "(")
	if open == -1 {
		return "", ""
	}
	close := strings.Index(detail[open:], ")")
	if close == -1 {
		return "", ""
	}
	field = detail[open+1 : open+close]

	rest := detail[open+close:]
	open = strings.Index(rest, "(")
	if open == -1 {
		return field, ""
	}
	close = strings.LastIndex(rest, ")")
	if close == -1 || close <= open {
		return field, ""
	}
	value = rest[open+1 : close]

	return field, value
}

func checkConstraintMessage(constraint string) string {
	switch constraint {
	case "tours_ratings_average_check":
		return "Rating must be between 1.0 and 5.0"
	case "tours_price_discount_check":
		return "Discount price should be below regular price"
	case "tours_name_length_check":
		return "A tour name must have between 10 and 40 characters"
	default:
		if constraint != "" {
			return "Constraint " + constraint + " violated"
		}
		return "Constraint violated"
	}
}
