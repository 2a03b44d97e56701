// Package grade classifies UNHCR job-grade labels against the fixed
// contract taxonomy. International professional grades (P-1..P-5), director
// grades (D-1, D-2) and internships/fellowships are in; consultancies,
// general service (G), national officer (NO), service contracts (SB) and
// local service contracts (LSC) are out. Anything unrecognized is out.
package grade

import (
	"regexp"
	"sort"
	"strings"
)

// compactRe expands compact grade forms like P4 -> P-4, LSC10 -> LSC-10.
var compactRe = regexp.MustCompile(`(?i)\b(P|D|G|SB|LSC|NO)(\d{1,2})\b`)

var included = tokenSet(
	"P-1", "P-2", "P-3", "P-4", "P-5",
	"D-1", "D-2",
)

var excluded = tokenSet(
	"G-1", "G-2", "G-3", "G-4", "G-5", "G-6", "G-7",
	"NOA", "NOB", "NOC", "NOD",
	"SB-1", "SB-2", "SB-3", "SB-4",
	"LSC-1", "LSC-2", "LSC-3", "LSC-4", "LSC-5", "LSC-6",
	"LSC-7", "LSC-8", "LSC-9", "LSC-10", "LSC-11",
)

var internLike = tokenSet("INTERN", "INTERNSHIP", "FELLOWSHIP")

func tokenSet(toks ...string) map[string]bool {
	m := make(map[string]bool, len(toks))
	for _, t := range toks {
		m[t] = true
	}
	return m
}

// Normalize prepares text for grade matching: unicode dashes become ASCII
// hyphens, compact grade forms gain their hyphen, everything is uppercased
// and whitespace collapsed.
func Normalize(text string) string {
	text = strings.Map(foldDash, text)
	text = compactRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := compactRe.FindStringSubmatch(m)
		return strings.ToUpper(sub[1]) + "-" + sub[2]
	})
	return strings.Join(strings.Fields(strings.ToUpper(text)), " ")
}

func foldDash(r rune) rune {
	switch r {
	case '‐', '‑', '‒', '–', '—', '―',
		'−', '﹘', '﹣', '－':
		return '-'
	}
	return r
}

// tokens splits normalized text into candidate grade tokens, trimming
// surrounding punctuation so "(P-4)," still matches P-4. Hyphens are part of
// grade tokens and are never trimmed, which keeps P-10 distinct from P-1.
func tokens(text string) []string {
	fields := strings.Fields(Normalize(text))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, `.,;:!?"'()[]{}/`)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// IsConsultant reports whether the text mentions consultant or consultancy.
func IsConsultant(text string) bool {
	for _, tok := range tokens(text) {
		if strings.HasPrefix(tok, "CONSULTAN") {
			return true
		}
	}
	return false
}

// HasExcluded reports whether the text carries any excluded grade
// (G-1..G-7, NOA..NOD, SB-1..SB-4, LSC-1..LSC-11).
func HasExcluded(text string) bool {
	for _, tok := range tokens(text) {
		if excluded[tok] {
			return true
		}
	}
	return false
}

// Detect returns the included grades present in the text, sorted.
func Detect(text string) []string {
	seen := map[string]bool{}
	for _, tok := range tokens(text) {
		if included[tok] && !seen[tok] {
			seen[tok] = true
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// IsInternOrFellowship reports whether the text marks an internship or
// fellowship posting.
func IsInternOrFellowship(text string) bool {
	for _, tok := range tokens(text) {
		if internLike[tok] {
			return true
		}
	}
	return false
}

// Accepts is the allow-list classifier for a grade label. Priority order:
// consultant out, excluded grade out, included grade in, intern/fellowship
// in, everything else out. Total: never fails, unknown labels reject.
func Accepts(label string) bool {
	switch {
	case IsConsultant(label):
		return false
	case HasExcluded(label):
		return false
	case len(Detect(label)) > 0:
		return true
	case IsInternOrFellowship(label):
		return true
	default:
		return false
	}
}
