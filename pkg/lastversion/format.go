package lastversion

import (
	"encoding/json"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
	"github.com/dvershinin/lastversion-sub000/pkg/version"
)

// Format selects one of §6's `--format` output shapes.
type Format string

const (
	FormatVersion Format = "version"
	FormatAssets  Format = "assets"
	FormatSource  Format = "source"
	FormatJSON    Format = "json"
	FormatTag     Format = "tag"
)

// displayVersion applies the --sem truncation (§6 --sem={major|minor|patch|any})
// ahead of String(); level 0 (the zero value) means "any" — no truncation.
func displayVersion(v *version.Version, level version.SemLevel) *version.Version {
	if v == nil || level == 0 {
		return v
	}
	return v.SemExtractBase(level)
}

// Render produces the printable string for r under format, applying sem
// truncation to version/json but never to tag (§8 scenario 9: `--format
// tag` returns the original un-truncated tag).
func Render(r *release.Release, format Format, assetFilter string, sem version.SemLevel) (string, error) {
	if r == nil {
		return "", nil
	}
	switch format {
	case FormatTag:
		return r.TagName, nil
	case FormatSource:
		return r.SourceURL, nil
	case FormatAssets:
		urls := holder.GetAssets(r, assetFilter, func() string { return r.SourceURL })
		b, err := json.Marshal(urls)
		return string(b), err
	case FormatJSON:
		return renderJSON(r, sem)
	default:
		return displayVersion(r.Version, sem).String(), nil
	}
}

// jsonRelease is the §4.6 "Assets enrichment" dict shape: assets (URL list,
// post platform-filtering), the untransformed asset records, and the
// license/readme/source_url/changelog enrichments.
type jsonRelease struct {
	Version   string   `json:"version"`
	Tag       string   `json:"tag_name"`
	Assets    []string `json:"assets"`
	AssetsRaw []asset  `json:"assets_with_digests,omitempty"`
	SourceURL string   `json:"source_url,omitempty"`
	License   string   `json:"license,omitempty"`
	Readme    string   `json:"readme,omitempty"`
	Changelog string   `json:"changelog,omitempty"`
}

func renderJSON(r *release.Release, sem version.SemLevel) (string, error) {
	jr := jsonRelease{
		Version:   displayVersion(r.Version, sem).String(),
		Tag:       r.TagName,
		Assets:    holder.GetAssets(r, "", func() string { return r.SourceURL }),
		SourceURL: r.SourceURL,
		License:   r.License,
		Readme:    r.Readme,
		Changelog: r.Changelog,
	}
	for _, a := range r.Assets {
		jr.AssetsRaw = append(jr.AssetsRaw, asset{Name: a.Name, URL: a.URL, Label: a.Label, Digest: a.Digest, Size: a.Size})
	}
	b, err := json.MarshalIndent(jr, "", "  ")
	return string(b), err
}

// ParseSemLevel maps the --sem flag's string values to a version.SemLevel;
// "any" and "" both mean "no truncation" (the zero value).
func ParseSemLevel(s string) version.SemLevel {
	switch s {
	case "major":
		return version.SemMajor
	case "minor":
		return version.SemMinor
	case "patch":
		return version.SemPatch
	default:
		return 0
	}
}
