package feed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcdole/gofeed"

	"unhcr-feed-engine/internal/domain"
)

// ErrCorruptFeed marks a feed document that exists but cannot be parsed.
// Policy: the caller logs it and proceeds with an empty set rather than
// aborting the run.
var ErrCorruptFeed = errors.New("corrupt feed document")

// Store owns reading and writing the single persisted feed document. Nothing
// else touches the file.
type Store struct {
	Path string
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load returns the previously published entries in document order. A missing
// file is not an error: it returns an empty set.
func (s *Store) Load() ([]domain.Entry, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	parsed, err := gofeed.NewParser().ParseString(string(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFeed, err)
	}

	var out []domain.Entry
	for _, it := range parsed.Items {
		guid := strings.TrimSpace(it.GUID)
		if guid == "" {
			guid = strings.TrimSpace(it.Link)
		}
		if guid == "" {
			continue
		}
		e := domain.Entry{
			GUID:        guid,
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
		}
		if it.PublishedParsed != nil {
			e.PublishedAt = *it.PublishedParsed
		}
		out = append(out, e)
	}
	return out, nil
}

// Save writes the rendered document atomically: temp file in the same
// directory, then rename over the target.
func (s *Store) Save(doc string) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".feed-*.xml")
	if err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write feed: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write feed: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write feed: %w", err)
	}
	return nil
}
