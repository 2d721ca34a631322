package stats

import (
	"sort"

	"github.com/verte-zerg/injurydash/internal/model"
)

// Count is one bucket of a value-count histogram.
type Count struct {
	Key   string
	Count int
}

// CountBy builds a value-count histogram ordered by descending count.
// Ties keep first-seen order.
func CountBy(records []model.InjuryRecord, key func(model.InjuryRecord) string) []Count {
	idx := map[string]int{}
	out := make([]Count, 0)
	for _, r := range records {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Count{Key: k})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// LocationCounts counts records per location.
func LocationCounts(records []model.InjuryRecord) []Count {
	return CountBy(records, func(r model.InjuryRecord) string { return r.Location })
}

// DiagnosisCounts counts records per diagnosis.
func DiagnosisCounts(records []model.InjuryRecord) []Count {
	return CountBy(records, func(r model.InjuryRecord) string { return r.Diagnosis })
}

// BodyPartCounts counts records per injured body part.
func BodyPartCounts(records []model.InjuryRecord) []Count {
	return CountBy(records, func(r model.InjuryRecord) string { return r.BodyPart })
}
