package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"unhcr-feed-engine/internal/config"
	"unhcr-feed-engine/internal/domain"
	"unhcr-feed-engine/internal/feed"
	"unhcr-feed-engine/internal/metrics"
)

// Fetcher is the upstream listing source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Posting, error)
	// DetailText is consulted only for postings the listing text cannot
	// classify. Best effort: errors degrade to an empty detail.
	DetailText(ctx context.Context, p domain.Posting) (string, error)
}

// Status is the last-run summary served on /status.
type Status struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	Entries   int    `json:"entries"`
	Running   bool   `json:"running"`
}

// RunOnce executes one full cycle: load the published feed, fetch current
// postings, classify and normalize them, merge, render, save. A fetch
// failure aborts before anything is written, so a broken upstream can never
// truncate the accumulated feed. A fetch that legitimately returns zero
// postings still writes (the channel pubDate moves forward).
func RunOnce(ctx context.Context, cfg config.Config, st *feed.Store, f Fetcher, m *metrics.Collector) (added int, total int, err error) {
	existing, err := st.Load()
	if err != nil {
		if !errors.Is(err, feed.ErrCorruptFeed) {
			m.RecordRun("load_error")
			return 0, 0, err
		}
		// Losing the accumulation start point is worse than rebuilding
		// from scratch: proceed with an empty set.
		log.Printf("[run] existing feed unreadable, starting empty: %v", err)
		existing = nil
	}

	known := make(map[string]bool, 2*len(existing))
	for _, e := range existing {
		known[e.GUID] = true
		known[e.Link] = true
	}

	postings, err := f.Fetch(ctx)
	if err != nil {
		m.RecordRun("fetch_error")
		return 0, 0, fmt.Errorf("fetch %s: %w", f.Name(), err)
	}
	m.RecordPostings(len(postings))

	n := &feed.Normalizer{
		BoardURL:    cfg.Source.BoardURL,
		MinTitleLen: cfg.Feed.MinTitleLen,
	}
	now := time.Now().UTC()

	var incoming []domain.Entry
	for _, p := range postings {
		if len(incoming) >= cfg.Source.MaxNewEntries {
			break
		}

		entry, nerr := n.Normalize(p, now)
		if nerr != nil {
			log.Printf("[run] skipped: %v", nerr)
			m.RecordMalformed()
			continue
		}
		if known[entry.GUID] || known[entry.Link] {
			continue
		}

		text := ListingText(p)
		keep, decided, reason := DecideListing(text)
		if decided && !keep {
			log.Printf("[filter] skipped (%s) title=%q", reason, entry.Title)
			continue
		}
		if !decided {
			detail, derr := f.DetailText(ctx, p)
			if derr != nil {
				log.Printf("[run] detail fetch failed title=%q: %v", entry.Title, derr)
			}
			keep, reason = Decide(text + " " + detail)
			if !keep {
				log.Printf("[filter] skipped (%s) title=%q", reason, entry.Title)
				continue
			}
		}

		incoming = append(incoming, entry)
		known[entry.GUID] = true
		known[entry.Link] = true
		log.Printf("[run] included (%s) title=%q", reason, entry.Title)
	}

	merged := feed.Merge(existing, incoming)

	doc, err := feed.Render(channelFrom(cfg), merged, now)
	if err != nil {
		m.RecordRun("render_error")
		return 0, 0, err
	}
	if err := st.Save(doc); err != nil {
		m.RecordRun("save_error")
		return 0, 0, err
	}

	m.RecordRun("ok")
	m.RecordAdded(len(incoming))
	m.SetFeedSize(len(merged))
	log.Printf("[run] ok postings=%d added=%d entries=%d", len(postings), len(incoming), len(merged))
	return len(incoming), len(merged), nil
}

func channelFrom(cfg config.Config) feed.Channel {
	return feed.Channel{
		Title:       cfg.Feed.Title,
		Link:        cfg.Feed.Link,
		Description: cfg.Feed.Description,
		Language:    cfg.Feed.Language,
		SelfURL:     cfg.Feed.SelfURL,
	}
}
