// Package mercurial implements the §4.7 Mercurial adapter: hgweb's
// "tags" Atom feed (`/<repo>/atom-tags`), consumed through the generic
// feed.Holder selection rule.
package mercurial

import (
	"context"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/feed"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// Holder is the Mercurial adapter.
type Holder struct {
	holder.Base
	Client httpx.BasicClient
}

var _ holder.Holder = &Holder{}

func (h *Holder) feedURL() string {
	return "https://" + h.Hostname + "/" + h.Repo + "/atom-tags"
}

func (h *Holder) inner() *feed.Holder {
	return &feed.Holder{
		Base:    holder.Base{Hostname: h.Hostname, Repo: h.Repo, Filters: h.Filters},
		FeedURL: h.feedURL(),
		Client:  h.Client,
		Type:    release.TypeFeed,
	}
}

// GetLatest delegates to the generic Atom feed rule.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	return h.inner().GetLatest(ctx, preOk, major)
}

// ReleaseDownloadURL mirrors hgweb's tag-archive URL shape.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	tmpl := "https://{hostname}/{repo}/archive/{tag}.{ext}"
	return holder.ReleaseDownloadURL(tmpl, r, h.Hostname, h.Repo, short)
}
