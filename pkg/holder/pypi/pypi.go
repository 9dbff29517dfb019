// Package pypi implements the §4.7 PyPI adapter: fetch
// https://pypi.org/pypi/<name>/json, and either trust info.version (no
// major filter) or scan the releases map's keys under sanitization.
package pypi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

var registryURL, _ = url.Parse("https://pypi.org")

// project mirrors the subset of PyPI's JSON API response this adapter
// needs: the currently-installable version plus the full release history
// for major-filtered lookups.
type project struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	Releases map[string][]struct {
		UploadTimeISO8601 time.Time `json:"upload_time_iso_8601"`
	} `json:"releases"`
}

// Holder is the PyPI adapter. Hostname defaults to pypi.org but a
// self-hosted index (any URL serving the same JSON shape) can be supplied
// via Base.Hostname, matching §4.5 step 4's self-hosting probe for PyPI.
type Holder struct {
	holder.Base
	Client httpx.BasicClient
}

var _ holder.Holder = &Holder{}

func (h *Holder) apiURL() string {
	scheme := "https"
	host := h.Hostname
	if host == "" {
		host = registryURL.Host
	}
	return scheme + "://" + host + path.Join("/pypi", h.Repo, "json")
}

func (h *Holder) fetch(ctx context.Context) (*project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.apiURL(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("pypi registry error: %v", resp.Status)
	}
	var p project
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decoding pypi json")
	}
	return &p, nil
}

// GetLatest implements §4.7: info.version wins outright when no major
// filter is set (PyPI itself already reports "the" current version); a
// major filter forces a scan of every release key under sanitization.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	p, err := h.fetch(ctx)
	if err != nil {
		return nil, err
	}
	h.Filters.PreOk = preOk
	h.Filters.Major = major
	if major == "" {
		v, ok := h.Filters.SanitizeVersion(p.Info.Version, "", false)
		if !ok {
			return nil, nil
		}
		return &release.Release{Version: v, TagName: p.Info.Version, Type: release.TypeSource}, nil
	}
	var best *release.Release
	for tag, files := range p.Releases {
		v, ok := h.Filters.SanitizeVersion(tag, "", false)
		if !ok {
			continue
		}
		var tagDate time.Time
		for _, f := range files {
			if f.UploadTimeISO8601.After(tagDate) {
				tagDate = f.UploadTimeISO8601
			}
		}
		cand := &release.Release{Version: v, TagName: tag, TagDate: tagDate, Type: release.TypeSource}
		if best == nil || cand.Newer(best) {
			best = cand
		}
	}
	return best, nil
}

// IsInstance probes whether hostname serves a PyPI-shaped JSON index, per
// §4.5 step 4 (PyPI is CAN_BE_SELF_HOSTED via devpi/warehouse mirrors).
func (h *Holder) IsInstance(ctx context.Context) bool {
	p, err := h.fetch(ctx)
	return err == nil && p.Info.Version != ""
}

// ReleaseDownloadURL has no generic archive URL on PyPI (artifacts are
// per-file, not per-tag archives); this returns the project's page.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	return "https://pypi.org/project/" + h.Repo + "/" + r.TagName + "/"
}
