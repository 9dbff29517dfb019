// Package wordpress implements the §4.7 WordPress adapter: a single JSON
// call to the plugins info API, reporting the "version" field directly
// (WordPress.org, like PyPI, already names the current release). Theme
// slugs are not looked up.
package wordpress

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

type infoResponse struct {
	Version     string `json:"version"`
	DownloadURL string `json:"download_link"`
}

// Holder is the WordPress plugin adapter. Repo is the plugin slug.
type Holder struct {
	holder.Base
	Client httpx.BasicClient
}

var _ holder.Holder = &Holder{}

func (h *Holder) apiURL() string {
	v := url.Values{}
	v.Set("action", "plugin_information")
	v.Set("request[slug]", h.Repo)
	return "https://api.wordpress.org/plugins/info/1.2/?" + v.Encode()
}

// GetLatest fetches the plugin info blob and trusts its "version" field.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	resp, err := holder.Get(h.Client, h.apiURL())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var info infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "decoding wordpress plugin info")
	}
	if info.Version == "" {
		return nil, nil
	}
	h.Filters.PreOk = preOk
	h.Filters.Major = major
	v, ok := h.Filters.SanitizeVersion(info.Version, "", false)
	if !ok {
		return nil, nil
	}
	return &release.Release{
		Version: v,
		TagName: info.Version,
		Type:    release.TypeSource,
		Assets:  []release.Asset{{Name: h.Repo + ".zip", URL: info.DownloadURL}},
	}, nil
}

// ReleaseDownloadURL returns the plugin's canonical download link directly
// from the last-fetched release assets when present, else the plugin page.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	if len(r.Assets) > 0 {
		return r.Assets[0].URL
	}
	return "https://wordpress.org/plugins/" + h.Repo + "/"
}
