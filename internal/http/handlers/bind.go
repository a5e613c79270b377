package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Trishit-H/tourhub/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON decodes and validates the request body. On failure it writes one
// normalized client-input error and reports false, the handler just returns.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondError(ctx, bindError(err))
		return false
	}

	return true
}

func bindError(err error) *apperr.Error {
	// validator errors (struct bind tags)

	var validatorErrs validator.ValidationErrors

	if errors.As(err, &validatorErrs) {
		messages := make([]string, 0, len(validatorErrs))

		for _, fe := range validatorErrs {
			messages = append(messages, fieldName(fe)+" "+validationMessage(fe.Tag(), fe.Param()))
		}
		return apperr.Validation(messages)
	}

	// bad json

	var syntaxErr *json.SyntaxError

	if errors.As(err, &syntaxErr) {
		return apperr.BadRequest("Request body is not valid JSON")
	}

	// type mismatch on a field

	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperr.BadRequest(fmt.Sprintf("Field %s must be of type %s", field, typeErr.Type.String()))
	}

	// empty body, EOF and friends
	return apperr.BadRequest("Invalid request body")
}

// fieldName lowercases the first rune so the message reads like the JSON key.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "field"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "eqfield":
		return "must match " + param
	case "ltfield":
		return "must be below " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
