package domain

import "time"

// Posting is one raw listing as returned by the Workday CXS jobs endpoint.
// It lives only between the fetcher and the normalizer.
type Posting struct {
	ID            string
	Title         string
	ExternalPath  string
	ExternalURL   string
	LocationsText string
	PostedOn      string
	PostedOnDate  string
	BulletFields  []string
}

// Entry is one canonical posting in the published feed. GUID is the dedup
// key: unique across the whole document and stable across runs for the same
// posting URL.
type Entry struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Location    string
	PublishedAt time.Time
}
