package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Trishit-H/tourhub/internal/apperr"
	"github.com/Trishit-H/tourhub/internal/query"
)

// The spec carries client field names verbatim; this layer maps them onto
// real columns through a per-resource allow-list. Unknown fields are dropped
// rather than rejected, and client input never reaches the SQL text itself,
// only the bind args.

type colKind int

const (
	colText colKind = iota
	colNumeric
	colBool
)

type column struct {
	name string
	kind colKind
}

var tourColumns = map[string]column{
	"name":            {"name", colText},
	"duration":        {"duration", colNumeric},
	"maxGroupSize":    {"max_group_size", colNumeric},
	"difficulty":      {"difficulty", colText},
	"ratingsAverage":  {"ratings_average", colNumeric},
	"ratingsQuantity": {"ratings_quantity", colNumeric},
	"price":           {"price", colNumeric},
	"priceDiscount":   {"price_discount", colNumeric},
	"summary":         {"summary", colText},
	"createdAt":       {"created_at", colText},
	"updatedAt":       {"updated_at", colText},
}

var userColumns = map[string]column{
	"email":     {"email", colText},
	"name":      {"name", colText},
	"role":      {"role", colText},
	"active":    {"active", colBool},
	"createdAt": {"created_at", colText},
	"updatedAt": {"updated_at", colText},
}

func sqlOp(op query.Op) string {
	switch op {
	case query.OpGt:
		return ">"
	case query.OpGte:
		return ">="
	case query.OpLt:
		return "<"
	case query.OpLte:
		return "<="
	default:
		return "="
	}
}

// whereFromSpec renders the filter predicates starting at bind position
// startPos. A value that does not fit the column type is the one place the
// pipeline fails instead of degrading (malformed filter input).
func whereFromSpec(spec query.Spec, cols map[string]column, startPos int) (conds []string, args []any, err error) {
	pos := startPos

	for _, c := range spec.Conditions {
		col, ok := cols[c.Field]

		if !ok {
			// unknown field names are probe noise, not errors
			continue
		}

		val, err := castValue(col, c.Field, c.Value)

		if err != nil {
			return nil, nil, err
		}

		conds = append(conds, fmt.Sprintf("%s %s $%d", col.name, sqlOp(c.Op), pos))
		args = append(args, val)
		pos++
	}

	return conds, args, nil
}

func castValue(col column, field, raw string) (any, error) {
	switch col.kind {
	case colNumeric:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperr.BadRequest(fmt.Sprintf("Invalid filter value for %s: %s", field, raw))
		}
		return f, nil
	case colBool:
		switch strings.ToLower(raw) {
		case "true", "t", "1":
			return true, nil
		case "false", "f", "0":
			return false, nil
		default:
			return nil, apperr.BadRequest(fmt.Sprintf("Invalid filter value for %s: %s", field, raw))
		}
	default:
		return raw, nil
	}
}

// orderFromSpec renders the tie-break chain, always ending on id for a
// stable ordering.
func orderFromSpec(spec query.Spec, cols map[string]column) string {
	parts := make([]string, 0, len(spec.Sorts)+1)

	for _, o := range spec.Sorts {
		col, ok := cols[o.Field]
		if !ok {
			continue
		}

		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}

		parts = append(parts, col.name+" "+dir)
	}

	parts = append(parts, "id ASC")

	return strings.Join(parts, ", ")
}
