package feed

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"unhcr-feed-engine/internal/domain"
	"unhcr-feed-engine/internal/grade"
	"unhcr-feed-engine/internal/scrape/util"
)

// ErrMalformedPosting marks a raw posting missing a required field. Callers
// skip the record and keep processing the rest of the batch.
var ErrMalformedPosting = errors.New("malformed posting")

// Normalizer turns raw Workday postings into canonical feed entries.
type Normalizer struct {
	// BoardURL is the public career board, used to resolve relative
	// externalPath values into absolute job URLs.
	BoardURL string
	// MinTitleLen rejects junk rows the portal sometimes emits (default 5).
	MinTitleLen int
}

// Normalize converts one posting. now is used as publishedAt when the
// posting carries no usable date.
func (n *Normalizer) Normalize(p domain.Posting, now time.Time) (domain.Entry, error) {
	title := util.CleanText(p.Title)
	minLen := n.MinTitleLen
	if minLen <= 0 {
		minLen = 5
	}
	if len(title) < minLen {
		return domain.Entry{}, fmt.Errorf("%w: title %q too short", ErrMalformedPosting, title)
	}

	link := n.absoluteURL(p)
	if link == "" {
		return domain.Entry{}, fmt.Errorf("%w: no job URL for %q", ErrMalformedPosting, title)
	}

	loc := util.CleanText(p.LocationsText)
	if loc == "" {
		loc = "Unknown"
	}

	published := now
	if t := parsePostedAt(p.PostedOnDate); t != nil {
		published = *t
	} else if t := parsePostedAt(p.PostedOn); t != nil {
		published = *t
	}

	return domain.Entry{
		GUID:        GUIDFromURL(link),
		Title:       title,
		Link:        link,
		Description: n.describe(p, title, loc),
		Location:    loc,
		PublishedAt: published,
	}, nil
}

func (n *Normalizer) absoluteURL(p domain.Posting) string {
	if u := strings.TrimSpace(p.ExternalURL); u != "" {
		return u
	}
	path := strings.TrimSpace(p.ExternalPath)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(n.BoardURL, "/") + path
}

func (n *Normalizer) describe(p domain.Posting, title, loc string) string {
	parts := []string{
		fmt.Sprintf("UNHCR has a vacancy for the position of %s.", title),
		fmt.Sprintf("Location: %s.", loc),
	}

	text := strings.Join(append([]string{title, loc}, p.BulletFields...), " ")
	if grades := grade.Detect(text); len(grades) > 0 {
		parts = append(parts, fmt.Sprintf("Grade: %s.", strings.Join(grades, ", ")))
	}
	if posted := util.CleanText(p.PostedOn); posted != "" {
		parts = append(parts, fmt.Sprintf("Posted: %s.", posted))
	}
	return strings.Join(parts, " ")
}

// GUIDFromURL derives the 16-digit zero-padded numeric identifier used as
// the feed-wide dedup key. It must stay stable across runs for the same URL;
// published feeds depend on the exact scheme.
func GUIDFromURL(u string) string {
	sum := md5.Sum([]byte(u))
	n, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:16], 16, 64)
	return fmt.Sprintf("%016d", n%10000000000000000)
}

func parsePostedAt(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return nil
}
