// Package helmchart implements the §4.7 Helm Chart adapter: fetch a
// Chart.yaml and parse its "version" field with gopkg.in/yaml.v3, the same
// decoder the teacher's own config loader uses. A github.com/.../blob/...
// URL is rewritten to raw.githubusercontent.com first, per §6's "Chart URL"
// rule.
package helmchart

import (
	"context"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/internal/urlx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

type chart struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	AppVersion  string `yaml:"appVersion"`
}

// Holder is the Helm Chart adapter. Repo holds the full Chart.yaml URL
// (already normalized by RewriteBlobURL).
type Holder struct {
	holder.Base
	Client httpx.BasicClient
}

var _ holder.Holder = &Holder{}

// RewriteBlobURL rewrites a "github.com/owner/repo/blob/ref/path" URL to
// its raw.githubusercontent.com equivalent, per §6's Chart URL rule.
func RewriteBlobURL(raw string) string {
	u := urlx.MustParse(raw)
	if u.Host != "github.com" {
		return raw
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 5)
	if len(parts) < 5 || parts[2] != "blob" {
		return raw
	}
	owner, repo, ref, rest := parts[0], parts[1], parts[3], parts[4]
	u.Host = "raw.githubusercontent.com"
	u.Path = "/" + strings.Join([]string{owner, repo, ref, rest}, "/")
	return u.String()
}

// GetLatest fetches the Chart.yaml at h.Repo (a full URL) and parses its
// declared chart version.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	chartURL := RewriteBlobURL(h.Repo)
	resp, err := holder.Get(h.Client, chartURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var c chart
	if err := yaml.NewDecoder(resp.Body).Decode(&c); err != nil {
		return nil, errors.Wrap(err, "decoding Chart.yaml")
	}
	if c.Version == "" {
		return nil, nil
	}
	h.Filters.PreOk = preOk
	h.Filters.Major = major
	v, ok := h.Filters.SanitizeVersion(c.Version, "", false)
	if !ok {
		return nil, nil
	}
	return &release.Release{Version: v, TagName: c.Version, Type: release.TypeHelm}, nil
}

// ReleaseDownloadURL returns the Chart.yaml URL itself; chart tarballs are
// published separately per-repository and are out of this adapter's scope.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	return RewriteBlobURL(h.Repo)
}
