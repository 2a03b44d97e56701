package scrape

import (
	"strings"

	"unhcr-feed-engine/internal/domain"
	"unhcr-feed-engine/internal/grade"
)

// ListingText joins the posting fields available without a detail fetch.
func ListingText(p domain.Posting) string {
	parts := append([]string{p.Title, p.LocationsText}, p.BulletFields...)
	return strings.Join(parts, " ")
}

// DecideListing classifies a posting from its listing text alone.
// decided=false means the listing text carries neither an accepted nor a
// rejected marker and the detail page has to settle it.
func DecideListing(text string) (keep bool, decided bool, reason string) {
	switch {
	case grade.IsConsultant(text):
		return false, true, "consultant"
	case grade.HasExcluded(text):
		return false, true, "excluded_grade"
	case len(grade.Detect(text)) > 0:
		return true, true, "included_grade"
	case grade.IsInternOrFellowship(text):
		return true, true, "intern_fellowship"
	}
	return false, false, ""
}

// Decide is the total decision over combined listing+detail text. Priority
// order matches the taxonomy: consultant and excluded grades always win over
// included grades; anything unrecognized is rejected.
func Decide(text string) (keep bool, reason string) {
	switch {
	case grade.IsConsultant(text):
		return false, "consultant"
	case grade.HasExcluded(text):
		return false, "excluded_grade"
	case len(grade.Detect(text)) > 0:
		return true, "included_grade"
	case grade.IsInternOrFellowship(text):
		return true, "intern_fellowship"
	}
	return false, "no_grade_match"
}
