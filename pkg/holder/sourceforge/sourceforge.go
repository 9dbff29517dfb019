// Package sourceforge implements the §4.7 SourceForge adapter: an RSS feed
// of file releases, with download URLs pointing at SourceForge's
// /files/{tag}/download redirector.
package sourceforge

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/internal/urlx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/feed"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// Holder is the SourceForge adapter.
type Holder struct {
	holder.Base
	Client httpx.BasicClient
}

var _ holder.Holder = &Holder{}

func (h *Holder) feedURL() string {
	return "https://sourceforge.net/projects/" + h.Repo + "/rss?path=/"
}

// GetLatest implements §4.7's Mercurial/Gitea/SourceForge rule, reading the
// tag straight from the entry title: SourceForge's feed titles carry the
// release-directory name (e.g. "myapp-2.1.0") directly, whereas its item
// links are file-download redirectors whose last path segment is just
// "download" and carries no version information.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	resp, err := holder.Get(h.Client, h.feedURL())
	if err != nil {
		return nil, errors.Wrap(err, "fetching sourceforge feed")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	entries, err := feed.Parse(body)
	if err != nil {
		return nil, err
	}
	h.Filters.PreOk = preOk
	h.Filters.Major = major

	var best *release.Release
	for _, e := range entries {
		tag := e.Title
		if tag == "" {
			continue
		}
		v, ok := h.Filters.SanitizeVersion(tag, h.Repo, false)
		if !ok {
			continue
		}
		cand := &release.Release{Version: v, TagName: tag, TagDate: e.Updated, Type: release.TypeFeed}
		if best == nil || cand.Newer(best) {
			best = cand
		}
	}
	return best, nil
}

// ReleaseDownloadURL returns the project's /files/{tag}/download redirector
// URL, parsed and re-serialized via urlx; it is not rewritten into a direct
// mirror URL.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	tmpl := "https://sourceforge.net/projects/{repo}/files/{tag}/download"
	raw := holder.ReleaseDownloadURL(tmpl, r, "sourceforge.net", h.Repo, short)
	u := urlx.MustParse(raw)
	return u.String()
}
