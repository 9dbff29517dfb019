// Package wikipedia implements the §4.7 Wikipedia adapter: fetch an
// article page and read the infobox's "Latest release"/"Stable release"
// row, using golang.org/x/net/html the same way pkg/factory does for
// homepage feed/link discovery (§4.5 step 5).
package wikipedia

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// Holder is the Wikipedia adapter. Repo is the article title (e.g.
// "Nginx"); Hostname defaults to en.wikipedia.org.
type Holder struct {
	holder.Base
	Client httpx.BasicClient
}

var _ holder.Holder = &Holder{}

func (h *Holder) hostname() string {
	if h.Hostname == "" {
		return "en.wikipedia.org"
	}
	return h.Hostname
}

func (h *Holder) pageURL() string {
	return "https://" + h.hostname() + "/wiki/" + h.Repo
}

var infoboxRowLabels = []string{"Stable release", "Latest release"}

// extractInfoboxVersion walks the parsed document for a table row (<tr>)
// whose first cell text matches one of infoboxRowLabels, and returns the
// text of the row's second cell (trimmed) — the version string the
// infobox reports.
func extractInfoboxVersion(n *html.Node) string {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	for _, row := range rows {
		var cells []*html.Node
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "th" || c.Data == "td") {
				cells = append(cells, c)
			}
		}
		if len(cells) < 2 {
			continue
		}
		label := strings.TrimSpace(textContent(cells[0]))
		for _, want := range infoboxRowLabels {
			if strings.EqualFold(label, want) {
				return strings.TrimSpace(textContent(cells[1]))
			}
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// GetLatest fetches the article page and extracts the infobox version.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	resp, err := holder.Get(h.Client, h.pageURL())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	tag := extractInfoboxVersion(doc)
	if tag == "" {
		return nil, nil
	}
	h.Filters.PreOk = preOk
	h.Filters.Major = major
	v, ok := h.Filters.SanitizeVersion(tag, "", false)
	if !ok {
		return nil, nil
	}
	return &release.Release{Version: v, TagName: tag, Type: release.TypeSource}, nil
}

// ReleaseDownloadURL has no generic archive shape on Wikipedia; it returns
// the article page itself.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	return h.pageURL()
}
