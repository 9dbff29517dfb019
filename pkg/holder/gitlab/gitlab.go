// Package gitlab implements the §4.7 GitLab adapter: a tags listing
// (newest-first, a 365-day staleness cutoff) overlaid with the matching
// /releases/{tag} record when one exists, grounded on the teacher's own
// encoding/json-over-httpx.BasicClient registry client shape (pkg/registry/
// pypi.HTTPRegistry).
package gitlab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// TokenEnvVars lists the environment variables GitLab adapters check, in
// priority order (§6 "Environment variables").
var TokenEnvVars = []string{"GITLAB_PA_TOKEN"}

type tag struct {
	Name   string `json:"name"`
	Commit struct {
		CommittedDate time.Time `json:"committed_date"`
	} `json:"commit"`
}

type releaseAsset struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type apiRelease struct {
	TagName string `json:"tag_name"`
	Assets  struct {
		Links []releaseAsset `json:"links"`
	} `json:"assets"`
	ReleasedAt time.Time `json:"released_at"`
}

// Holder is the GitLab adapter. Hostname defaults to gitlab.com but
// self-hosted GitLab instances work identically (GitLab's API shape is
// stable across self-hosted/SaaS).
type Holder struct {
	holder.Base
	Client httpx.BasicClient
}

var _ holder.Holder = &Holder{}

func (h *Holder) hostname() string {
	if h.Hostname == "" {
		return "gitlab.com"
	}
	return h.Hostname
}

func (h *Holder) apiGet(ctx context.Context, pathAndQuery string, out interface{}) error {
	u := &url.URL{Scheme: "https", Host: h.hostname(), Path: "/api/v4/projects/" + url.PathEscape(h.Repo) + pathAndQuery}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("gitlab registry error: %v", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetLatest implements §4.7's GitLab selection rule.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	h.Filters.PreOk = preOk
	h.Filters.Major = major

	var tags []tag
	if err := h.apiGet(ctx, "/repository/tags?per_page=100", &tags); err != nil {
		return nil, err
	}

	var best *release.Release
	for _, t := range tags {
		v, ok := h.Filters.SanitizeVersion(t.Name, "", false)
		if !ok {
			continue
		}
		cand := &release.Release{Version: v, TagName: t.Name, TagDate: t.Commit.CommittedDate, Type: release.TypeTag}
		if best != nil && !cand.Newer(best) && best.TagDate.Sub(cand.TagDate) > 365*24*time.Hour {
			break
		}
		if best == nil || cand.Newer(best) {
			best = cand
		}
	}
	if best == nil {
		return nil, nil
	}

	var rel apiRelease
	if err := h.apiGet(ctx, "/releases/"+url.PathEscape(best.TagName), &rel); err == nil && rel.TagName == best.TagName {
		best.Type = release.TypeRelease
		if !rel.ReleasedAt.IsZero() {
			best.TagDate = rel.ReleasedAt
		}
		for _, a := range rel.Assets.Links {
			best.Assets = append(best.Assets, release.Asset{Name: a.Name, URL: a.URL})
		}
	}
	return best, nil
}

// ReleaseDownloadURL uses GitLab's source-archive endpoint.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	tmpl := "https://{hostname}/{repo}/-/archive/{tag}/{name}-{tag}.{ext}"
	return holder.ReleaseDownloadURL(tmpl, r, h.hostname(), h.Repo, short)
}
