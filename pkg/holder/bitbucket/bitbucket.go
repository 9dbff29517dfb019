// Package bitbucket implements the §4.7 BitBucket adapter: prefer the
// /downloads endpoint (populated on paid-plan projects that upload release
// archives directly); fall back to paginated /refs/tags when /downloads is
// empty or non-JSON, picking the highest-parsing tag.
package bitbucket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// KnownRepoURLs/KnownReposByName cover mmonit.com, whose Monit releases are
// published as a "prepared" tarball rather than relying on BitBucket's
// downloads endpoint.
var KnownRepoURLs = map[string]holder.KnownRepo{
	"mmonit.com": {
		Repo:             "tildeslash/monit",
		ReleaseURLFormat: "https://mmonit.com/{name}/dist/{name}-{version}.tar.gz",
	},
}

var KnownReposByName = map[string]holder.KnownRepo{
	"monit": KnownRepoURLs["mmonit.com"],
}

type downloadsResponse struct {
	Values []struct {
		Name string `json:"name"`
		Links struct {
			Self struct {
				Href string `json:"href"`
			} `json:"self"`
		} `json:"links"`
	} `json:"values"`
}

type tagsResponse struct {
	Values []struct {
		Name   string `json:"name"`
		Target struct {
			Date time.Time `json:"date"`
		} `json:"target"`
	} `json:"values"`
	Next string `json:"next"`
}

// Holder is the BitBucket adapter.
type Holder struct {
	holder.Base
	Client httpx.BasicClient

	// ReleaseURLFormat overrides the default get-archive URL shape for
	// known repos with a better "prepared" source tarball.
	ReleaseURLFormat string
}

var _ holder.Holder = &Holder{}

func (h *Holder) apiGet(ctx context.Context, rawURL string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, errors.Wrap(err, "decoding bitbucket response")
	}
	return resp.StatusCode, nil
}

func (h *Holder) baseURL() string {
	return "https://api.bitbucket.org/2.0/repositories/" + h.Repo
}

// GetLatest implements §4.7's BitBucket selection rule.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	h.Filters.PreOk = preOk
	h.Filters.Major = major

	var downloads downloadsResponse
	if status, err := h.apiGet(ctx, h.baseURL()+"/downloads", &downloads); err == nil && status == http.StatusOK {
		var best *release.Release
		for _, d := range downloads.Values {
			v, ok := h.Filters.SanitizeVersion(d.Name, "", false)
			if !ok {
				continue
			}
			cand := &release.Release{
				Version: v,
				TagName: d.Name,
				Type:    release.TypeRelease,
				Assets:  []release.Asset{{Name: d.Name, URL: d.Links.Self.Href}},
			}
			if best == nil || cand.Newer(best) {
				best = cand
			}
		}
		if best != nil {
			return best, nil
		}
	}

	next := h.baseURL() + "/refs/tags?pagelen=100"
	var best *release.Release
	for next != "" {
		var tags tagsResponse
		if _, err := h.apiGet(ctx, next, &tags); err != nil {
			return nil, err
		}
		for _, t := range tags.Values {
			v, ok := h.Filters.SanitizeVersion(t.Name, "", false)
			if !ok {
				continue
			}
			cand := &release.Release{Version: v, TagName: t.Name, TagDate: t.Target.Date, Type: release.TypeTag}
			if best == nil || cand.Newer(best) {
				best = cand
			}
		}
		next = tags.Next
	}
	return best, nil
}

// SetReleaseURLFormat implements holder.ReleaseURLFormatSetter.
func (h *Holder) SetReleaseURLFormat(f string) { h.ReleaseURLFormat = f }

// ReleaseDownloadURL uses BitBucket's source-archive endpoint, unless a
// known repo override supplies a better URL.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	tmpl := h.ReleaseURLFormat
	if tmpl == "" {
		tmpl = "https://bitbucket.org/{repo}/get/{tag}.{ext}"
	}
	return holder.ReleaseDownloadURL(tmpl, r, "bitbucket.org", h.Repo, short)
}

