package feed

import "unhcr-feed-engine/internal/domain"

// Merge reconciles freshly accepted entries with the previously published
// set. The result is existing (order untouched) followed by the incoming
// entries whose GUID is not already present, in incoming order. Duplicate
// GUIDs within the incoming batch keep the first occurrence. Existing
// entries are never dropped, reordered or overwritten.
func Merge(existing, incoming []domain.Entry) []domain.Entry {
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, e := range existing {
		seen[e.GUID] = true
	}

	out := make([]domain.Entry, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	for _, e := range incoming {
		if e.GUID == "" || seen[e.GUID] {
			continue
		}
		seen[e.GUID] = true
		out = append(out, e)
	}
	return out
}
