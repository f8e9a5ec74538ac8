package claims

import (
	"claims-backend/internal/extract"
	"claims-backend/internal/shared/telemetry"
)

// Part is one record entering aggregation, tagged with its source for
// collision reporting.
type Part struct {
	Source string
	Record extract.Record
}

// Aggregate performs a left-to-right union over the given parts. On key
// collision the later part wins; collisions are flagged in the log since the
// per-category schemas are meant to keep key names disjoint.
func Aggregate(parts ...Part) extract.Record {
	merged := extract.Record{}
	owner := map[string]string{}

	for _, part := range parts {
		for k, v := range part.Record {
			if prev, ok := owner[k]; ok {
				telemetry.Warn("aggregate.key_collision", map[string]any{
					"key":        k,
					"overridden": prev,
					"winner":     part.Source,
				})
			}
			merged[k] = v
			owner[k] = part.Source
		}
	}
	return merged
}
