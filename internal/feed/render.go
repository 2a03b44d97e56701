package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"unhcr-feed-engine/internal/domain"
)

// Channel is the fixed metadata of the published feed.
type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
	SelfURL     string
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	AtomLink    *atomLink `xml:"atom:link,omitempty"`
	PubDate     string    `xml:"pubDate"`
	Items       []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description cdata      `xml:"description"`
	GUID        rssGUID    `xml:"guid"`
	PubDate     string     `xml:"pubDate"`
	Source      *rssSource `xml:"source,omitempty"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssSource struct {
	URL  string `xml:"url,attr"`
	Text string `xml:",chardata"`
}

// Render serializes the entry set as an RSS 2.0 document. Deterministic for
// identical arguments: now only feeds the channel-level pubDate and the
// pubDate of entries that carry no date of their own.
func Render(ch Channel, entries []domain.Entry, now time.Time) (string, error) {
	doc := rssDoc{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:       ch.Title,
			Link:        ch.Link,
			Description: ch.Description,
			Language:    ch.Language,
			PubDate:     now.UTC().Format(time.RFC1123Z),
		},
	}
	if ch.SelfURL != "" {
		doc.Channel.AtomLink = &atomLink{
			Href: ch.SelfURL,
			Rel:  "self",
			Type: "application/rss+xml",
		}
	}

	doc.Channel.Items = make([]rssItem, 0, len(entries))
	for _, e := range entries {
		pub := e.PublishedAt
		if pub.IsZero() {
			pub = now
		}
		item := rssItem{
			Title:       cleanXMLText(e.Title),
			Link:        e.Link,
			Description: cdata{Text: cleanXMLText(e.Description)},
			GUID:        rssGUID{IsPermaLink: "false", Value: e.GUID},
			PubDate:     pub.UTC().Format(time.RFC1123Z),
		}
		if ch.Link != "" {
			item.Source = &rssSource{URL: ch.Link, Text: ch.Title}
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}

	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render feed: %w", err)
	}
	return xml.Header + string(b) + "\n", nil
}

// cleanXMLText drops characters that are illegal in XML 1.0 documents;
// escaping of markup characters is left to the encoder.
func cleanXMLText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20, r >= 0x7f && r <= 0x84, r >= 0x86 && r <= 0x9f:
			return -1
		case r >= 0xfdd0 && r <= 0xfdef, r == 0xfffe, r == 0xffff:
			return -1
		}
		return r
	}, s)
}
