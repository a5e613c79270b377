package handlers

import (
	"encoding/json"

	"github.com/Trishit-H/tourhub/internal/query"
)

// bookkeeping fields dropped when the client asks for no explicit projection
var defaultExcluded = []string{"createdAt", "updatedAt"}

// shapeDocs applies the spec's field projection to a list response. The repo
// returns full records; the shaping happens at the JSON boundary so the SQL
// stays static. The record id is always kept.
func shapeDocs(items any, spec query.Spec) any {
	raw, err := json.Marshal(items)
	if err != nil {
		return items
	}

	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return items
	}

	if len(spec.Include) > 0 {
		keep := map[string]struct{}{"id": {}}
		for _, f := range spec.Include {
			keep[f] = struct{}{}
		}

		for _, doc := range docs {
			for k := range doc {
				if _, ok := keep[k]; !ok {
					delete(doc, k)
				}
			}
		}
		return docs
	}

	exclude := spec.Exclude
	if len(exclude) == 0 {
		exclude = defaultExcluded
	}

	for _, doc := range docs {
		for _, f := range exclude {
			if f == "id" {
				continue
			}
			delete(doc, f)
		}
	}

	return docs
}
