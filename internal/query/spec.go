// Package query turns raw query-string parameters into a bounded,
// storage-agnostic retrieval specification. The builder is pure: every step
// returns a fresh Spec, so a Spec can be handed around without anything
// mutating it behind the caller's back.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// the four control keys are never treated as filter fields
var reservedKeys = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

type Condition struct {
	Field string
	Op    Op
	Value string
}

type Order struct {
	Field string
	Desc  bool
}

type Spec struct {
	Conditions []Condition
	Sorts      []Order
	// Include is the explicit projection list; Exclude holds minus-prefixed
	// fields. They are never both populated.
	Include []string
	Exclude []string
	Page    int
	Limit   int
}

func New() Spec {
	return Spec{Page: DefaultPage, Limit: DefaultLimit}
}

// Parse runs the canonical chain. The steps compose in any order; this is
// the documented one.
func Parse(values url.Values) Spec {
	return New().
		Filter(values).
		Sort(values.Get("sort")).
		Fields(values.Get("fields")).
		Paginate(values.Get("page"), values.Get("limit"))
}

// Filter copies every non-reserved parameter into a predicate. Keys shaped
// like `price[gte]` become range conditions; everything else is an exact
// match. Unrecognized field names pass through here untouched, the storage
// layer drops the ones it does not know.
func (s Spec) Filter(values url.Values) Spec {
	conds := make([]Condition, 0, len(values))

	for key, vals := range values {
		if _, ok := reservedKeys[key]; ok {
			continue
		}
		if len(vals) == 0 || vals[0] == "" {
			continue
		}

		field, op := splitFilterKey(key)

		conds = append(conds, Condition{
			Field: field,
			Op:    op,
			Value: vals[0],
		})
	}

	// url.Values is a map; order the predicates so the spec is deterministic
	sort.Slice(conds, func(i, j int) bool {
		if conds[i].Field != conds[j].Field {
			return conds[i].Field < conds[j].Field
		}
		return conds[i].Op < conds[j].Op
	})

	out := s
	out.Conditions = conds
	return out
}

// splitFilterKey maps `field[gte]` onto (field, OpGte). A key without a
// recognized suffix is an equality match on the raw key.
func splitFilterKey(key string) (string, Op) {
	open := strings.Index(key, "[")

	if open == -1 || !strings.HasSuffix(key, "]") {
		return key, OpEq
	}

	field := key[:open]
	suffix := key[open+1 : len(key)-1]

	switch suffix {
	case "gt":
		return field, OpGt
	case "gte":
		return field, OpGte
	case "lt":
		return field, OpLt
	case "lte":
		return field, OpLte
	default:
		return key, OpEq
	}
}

// Sort splits a comma list into a tie-break chain; a leading '-' means
// descending. Absent sort defaults to descending rating average.
func (s Spec) Sort(raw string) Spec {
	out := s

	if raw == "" {
		out.Sorts = []Order{{Field: "ratingsAverage", Desc: true}}
		return out
	}

	parts := strings.Split(raw, ",")
	orders := make([]Order, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(p, "-") {
			orders = append(orders, Order{Field: p[1:], Desc: true})
		} else {
			orders = append(orders, Order{Field: p})
		}
	}

	if len(orders) == 0 {
		orders = []Order{{Field: "ratingsAverage", Desc: true}}
	}

	out.Sorts = orders
	return out
}

// Fields parses the projection list. Minus-prefixed entries form an
// exclusion projection; plain entries an inclusion one. When both appear the
// inclusion list wins, the two are never mixed in one spec.
func (s Spec) Fields(raw string) Spec {
	out := s
	out.Include = nil
	out.Exclude = nil

	if raw == "" {
		return out
	}

	var include, exclude []string

	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(p, "-") {
			exclude = append(exclude, p[1:])
		} else {
			include = append(include, p)
		}
	}

	if len(include) > 0 {
		out.Include = include
		return out
	}

	out.Exclude = exclude
	return out
}

// Paginate parses page and limit as positive integers. Anything that does
// not parse coerces to the default rather than erroring, listing endpoints
// stay permissive.
func (s Spec) Paginate(pageRaw, limitRaw string) Spec {
	out := s
	out.Page = DefaultPage
	out.Limit = DefaultLimit

	if n, err := strconv.Atoi(pageRaw); err == nil && n > 0 {
		out.Page = n
	}

	if n, err := strconv.Atoi(limitRaw); err == nil && n > 0 {
		out.Limit = n
	}

	return out
}

func (s Spec) Offset() int {
	return (s.Page - 1) * s.Limit
}
