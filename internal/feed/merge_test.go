package feed_test

import (
	"testing"

	"unhcr-feed-engine/internal/domain"
	"unhcr-feed-engine/internal/feed"
)

func entries(guids ...string) []domain.Entry {
	out := make([]domain.Entry, 0, len(guids))
	for _, g := range guids {
		out = append(out, domain.Entry{GUID: g, Title: "t-" + g, Link: "https://example.org/" + g})
	}
	return out
}

func guids(es []domain.Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.GUID)
	}
	return out
}

func TestMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing []string
		incoming []string
		want     []string
	}{
		{"both empty", nil, nil, nil},
		{"empty existing", nil, []string{"A", "B"}, []string{"A", "B"}},
		{"empty incoming", []string{"A", "B"}, nil, []string{"A", "B"}},
		{"new entries appended in order", []string{"A"}, []string{"C", "B"}, []string{"A", "C", "B"}},
		{"duplicate of existing dropped", []string{"A"}, []string{"A", "C"}, []string{"A", "C"}},
		{"duplicate within incoming batch", nil, []string{"A", "A", "B"}, []string{"A", "B"}},
		{"all duplicates", []string{"A", "B"}, []string{"B", "A"}, []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feed.Merge(entries(tt.existing...), entries(tt.incoming...))
			gotIDs := guids(got)
			if len(gotIDs) != len(tt.want) {
				t.Fatalf("Merge = %v, want %v", gotIDs, tt.want)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.want[i] {
					t.Fatalf("Merge = %v, want %v", gotIDs, tt.want)
				}
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()

	existing := entries("A", "B")
	incoming := entries("B", "C", "D")

	once := feed.Merge(existing, incoming)
	twice := feed.Merge(once, incoming)

	if len(once) != len(twice) {
		t.Fatalf("second merge changed length: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].GUID != twice[i].GUID {
			t.Fatalf("second merge changed order: %v vs %v", guids(once), guids(twice))
		}
	}
}

func TestMergeDoesNotOverwrite(t *testing.T) {
	t.Parallel()

	existing := []domain.Entry{{GUID: "A", Title: "original title"}}
	incoming := []domain.Entry{{GUID: "A", Title: "changed title"}}

	got := feed.Merge(existing, incoming)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Title != "original title" {
		t.Errorf("existing entry was overwritten: %q", got[0].Title)
	}
}

func TestMergeSkipsEmptyGUID(t *testing.T) {
	t.Parallel()

	got := feed.Merge(nil, []domain.Entry{{GUID: "", Title: "no id"}, {GUID: "A"}})
	if len(got) != 1 || got[0].GUID != "A" {
		t.Fatalf("Merge = %v, want just A", guids(got))
	}
}
