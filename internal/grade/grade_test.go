package grade_test

import (
	"testing"

	"unhcr-feed-engine/internal/grade"
)

func TestAcceptsAllowList(t *testing.T) {
	t.Parallel()

	accepted := []string{
		"P-1", "P-2", "P-3", "P-4", "P-5",
		"D-1", "D-2",
		"Internship", "Fellowship",
		"p-3", "d-2", "INTERNSHIP",
	}
	for _, label := range accepted {
		if !grade.Accepts(label) {
			t.Errorf("Accepts(%q) = false, want true", label)
		}
	}
}

func TestAcceptsRejectList(t *testing.T) {
	t.Parallel()

	rejected := []string{
		"Consultant", "Consultancy", "consultant",
		"G-1", "G-2", "G-3", "G-4", "G-5", "G-6", "G-7",
		"NOA", "NOB", "NOC", "NOD",
		"SB-1", "SB-2", "SB-3", "SB-4",
		"LSC-1", "LSC-2", "LSC-3", "LSC-4", "LSC-5", "LSC-6",
		"LSC-7", "LSC-8", "LSC-9", "LSC-10", "LSC-11",
	}
	for _, label := range rejected {
		if grade.Accepts(label) {
			t.Errorf("Accepts(%q) = true, want false", label)
		}
	}
}

func TestAcceptsUnrecognized(t *testing.T) {
	t.Parallel()

	// Allow-list semantics: anything not explicitly recognized rejects,
	// and exact-segment matching keeps lookalikes out.
	unrecognized := []string{
		"", "   ", "Intern-X", "P-10", "P10", "X-1", "Senior Officer",
		"GS", "LSC", "NO",
	}
	for _, label := range unrecognized {
		if grade.Accepts(label) {
			t.Errorf("Accepts(%q) = true, want false", label)
		}
	}
}

func TestAcceptsPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		label string
		want  bool
	}{
		{"consultant beats included grade", "Consultant (P-4)", false},
		{"excluded grade beats included grade", "Programme Assistant G-5 / P-2", false},
		{"consultant beats internship", "Internship (consultancy basis)", false},
		{"included grade in longer text", "Senior Protection Officer, P-4, Geneva", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grade.Accepts(tt.label); got != tt.want {
				t.Errorf("Accepts(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"compact professional grade", "Officer P4 Geneva", "OFFICER P-4 GENEVA"},
		{"compact two digit grade", "LSC10 contract", "LSC-10 CONTRACT"},
		{"en dash", "P–3 position", "P-3 POSITION"},
		{"minus sign", "D−1", "D-1"},
		{"whitespace collapsed", "  P-2   role ", "P-2 ROLE"},
		{"lowercase", "sb2", "SB-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grade.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single grade", "Protection Officer (P-3)", []string{"P-3"}},
		{"multiple grades sorted", "P-4 or D-1 depending on experience", []string{"D-1", "P-4"}},
		{"compact form", "Officer P4", []string{"P-4"}},
		{"no included grade", "Driver G-4", nil},
		{"lookalike excluded", "P-10 is not a real grade", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grade.Detect(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Detect(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Detect(%q) = %v, want %v", tt.in, got, tt.want)
				}
			}
		})
	}
}

func TestIsConsultant(t *testing.T) {
	t.Parallel()

	if !grade.IsConsultant("International Consultant, home-based") {
		t.Error("expected consultant match")
	}
	if !grade.IsConsultant("Consultancy: data analysis") {
		t.Error("expected consultancy match")
	}
	if grade.IsConsultant("Senior Protection Officer") {
		t.Error("unexpected consultant match")
	}
}
