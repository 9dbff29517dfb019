// Package gitea implements the §4.7 Gitea adapter (also the base for
// Codeberg, a Gitea instance): consumes the project's tags.rss feed and can
// self-host-probe a hostname by checking that this feed answers 200 OK; the
// project page and its <link> elements are not inspected.
package gitea

import (
	"context"
	"net/http"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/feed"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// TokenEnvVars lists the environment variable Gitea's adapter checks (§6).
var TokenEnvVars = []string{"GITEA_API_TOKEN"}

// DefaultHostname is Codeberg's well-known Gitea instance; a bare Gitea
// Holder with no Hostname override targets it, matching the teacher-style
// convention of a sane default rather than requiring configuration for the
// common case.
const DefaultHostname = "codeberg.org"

// Holder is the Gitea/Codeberg adapter. CAN_BE_SELF_HOSTED: true.
type Holder struct {
	holder.Base
	Client httpx.BasicClient
}

var _ holder.Holder = &Holder{}

func (h *Holder) hostname() string {
	if h.Hostname == "" {
		return DefaultHostname
	}
	return h.Hostname
}

func (h *Holder) feedURL() string {
	return "https://" + h.hostname() + "/" + h.Repo + "/tags.rss"
}

func (h *Holder) inner() *feed.Holder {
	return &feed.Holder{
		Base:    holder.Base{Hostname: h.hostname(), Repo: h.Repo, Filters: h.Filters},
		FeedURL: h.feedURL(),
		Client:  h.Client,
		Type:    release.TypeFeed,
	}
}

// GetLatest delegates to a generic feed.Holder pointed at this instance's
// tags.rss endpoint.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	return h.inner().GetLatest(ctx, preOk, major)
}

// ReleaseDownloadURL mirrors Gitea's archive download URL shape.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	tmpl := "https://{hostname}/{repo}/archive/{tag}.{ext}"
	return holder.ReleaseDownloadURL(tmpl, r, h.hostname(), h.Repo, short)
}

// IsInstance probes whether hostname runs a Gitea instance by checking that
// the project's tags.rss feed answers 200 OK (§4.5 step 4); the body is not
// parsed.
func (h *Holder) IsInstance(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.feedURL(), nil)
	if err != nil {
		return false
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
