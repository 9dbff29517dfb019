// Package feed implements the generic Atom/RSS-consuming selection rule
// §4.7 describes for Mercurial, Gitea, Codeberg, SourceForge and the
// explicit "website-feed" adapter: fetch a feed, extract a tag from each
// entry, sanitize, and keep the highest-parsing one. GitHub's adapter reuses
// ParseAtom directly for its own releases.atom feed pass.
package feed

import (
	"context"
	"encoding/xml"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// Entry is one feed item, normalized across Atom and RSS shapes.
type Entry struct {
	Title   string
	Link    string
	Updated time.Time
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Updated string     `xml:"updated"`
	Links   []atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// ParseAtom decodes an Atom feed body into normalized Entries, newest first
// (as the feed itself is ordered).
func ParseAtom(r io.Reader) ([]Entry, error) {
	var f atomFeed
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decoding atom feed")
	}
	entries := make([]Entry, 0, len(f.Entries))
	for _, e := range f.Entries {
		link := ""
		for _, l := range e.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		updated, _ := time.Parse(time.RFC3339, e.Updated)
		entries = append(entries, Entry{Title: e.Title, Link: link, Updated: updated})
	}
	return entries, nil
}

// ParseRSS decodes an RSS 2.0 feed body into normalized Entries.
func ParseRSS(r io.Reader) ([]Entry, error) {
	var f rssFeed
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decoding rss feed")
	}
	entries := make([]Entry, 0, len(f.Channel.Items))
	for _, it := range f.Channel.Items {
		updated, _ := time.Parse(time.RFC1123Z, it.PubDate)
		entries = append(entries, Entry{Title: it.Title, Link: it.Link, Updated: updated})
	}
	return entries, nil
}

// Parse tries Atom first, then RSS, returning the first that decodes with
// at least one entry (or a non-empty feed body).
func Parse(body []byte) ([]Entry, error) {
	entries, err := ParseAtom(strings.NewReader(string(body)))
	if err == nil && len(entries) > 0 {
		return entries, nil
	}
	return ParseRSS(strings.NewReader(string(body)))
}

// TagFromLink extracts a candidate tag from a feed entry's link, taking the
// last non-empty path segment and URL-decoding it, falling back to Title
// when the link carries no usable segment.
func TagFromLink(e Entry) string {
	if e.Link != "" {
		if u, err := url.Parse(e.Link); err == nil {
			seg := path.Base(strings.TrimSuffix(u.Path, "/"))
			if unescaped, err := url.PathUnescape(seg); err == nil {
				seg = unescaped
			}
			if seg != "" && seg != "." && seg != "/" {
				return seg
			}
		}
	}
	return e.Title
}

// Holder implements holder.Holder for a single Atom/RSS feed URL: the
// §4.7 rule shared by Mercurial, Gitea, Codeberg, SourceForge and the
// explicit website-feed adapter.
type Holder struct {
	holder.Base
	FeedURL string
	Client  httpx.BasicClient
	Type    release.Type
}

var _ holder.Holder = &Holder{}

// GetLatest fetches FeedURL, parses it, and keeps the highest-sanitizing
// entry under the configured filters.
func (h *Holder) GetLatest(_ context.Context, preOk bool, major string) (*release.Release, error) {
	resp, err := holder.Get(h.Client, h.FeedURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetching feed")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading feed body")
	}
	entries, err := Parse(body)
	if err != nil {
		return nil, err
	}
	h.Filters.Major = major
	h.Filters.PreOk = preOk

	var best *release.Release
	for _, e := range entries {
		tag := TagFromLink(e)
		if tag == "" {
			continue
		}
		v, ok := h.Filters.SanitizeVersion(tag, "", false)
		if !ok {
			continue
		}
		cand := &release.Release{
			Version: v,
			TagName: tag,
			TagDate: e.Updated,
			Type:    h.Type,
		}
		if best == nil || cand.Newer(best) {
			best = cand
		}
	}
	return best, nil
}

// ReleaseDownloadURL fills the generic "https://{hostname}/{repo}/archive/
// {tag}.{ext}" template. Adapters that wrap a feed Holder (Gitea, ...)
// supply their own ReleaseDownloadURL.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	return holder.ReleaseDownloadURL("https://{hostname}/{repo}/archive/{tag}.{ext}", r, h.Hostname, h.Repo, short)
}
