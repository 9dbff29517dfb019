package holder

import (
	"regexp"
	"strings"

	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// URLTemplateVars are the substitution variables RELEASE_URL_FORMAT
// templates reference (§4.4 release_download_url): {hostname, repo, name,
// tag, ext, version}.
type URLTemplateVars struct {
	Hostname string
	Repo     string
	Name     string
	Tag      string
	Ext      string
	Version  string
}

// releaseExt returns "zip" on Windows, else "tar.gz", per §4.4.
func releaseExt(short bool) string {
	if short {
		return ""
	}
	if isWindows() {
		return "zip"
	}
	return "tar.gz"
}

// ReleaseDownloadURL renders tmpl (a RELEASE_URL_FORMAT like
// "https://{hostname}/{repo}/archive/{tag}.{ext}") against release r.
func ReleaseDownloadURL(tmpl string, r *release.Release, hostname, repo string, short bool) string {
	name := repo
	if idx := strings.LastIndex(repo, "/"); idx >= 0 {
		name = repo[idx+1:]
	}
	vars := URLTemplateVars{
		Hostname: hostname,
		Repo:     repo,
		Name:     name,
		Tag:      r.TagName,
		Ext:      releaseExt(short),
	}
	if r.Version != nil {
		vars.Version = r.Version.String()
	}
	out := tmpl
	for _, sub := range [][2]string{
		{"{hostname}", vars.Hostname},
		{"{repo}", vars.Repo},
		{"{name}", vars.Name},
		{"{tag}", vars.Tag},
		{"{ext}", vars.Ext},
		{"{version}", vars.Version},
	} {
		out = strings.ReplaceAll(out, sub[0], sub[1])
	}
	return out
}

// assetArchHint is a best-effort signal for platform.go's distro-exclusive
// rule; we don't attempt distro detection (no distro database is part of
// this module's scope), so it is always "" (unknown ⇒ rule 3 never rejects).
const assetArchHint = ""

// machineArch mirrors platform.machine() in the original: "x86_64"/"amd64"
// are the only values this module special-cases, via runtime.GOARCH.
func machineArch() string {
	return normalizeArch()
}

// GetAssets implements §4.4 get_assets: start from release.assets; if the
// machine is x86_64/AMD64 and no filter is given, prefer assets whose name
// contains "x86_64"; drop assets failing the §4.8 platform predicate; fall
// back to releaseURLFn() if nothing survives; apply filter as a regex over
// whatever candidate set results.
func GetAssets(r *release.Release, filter string, releaseURLFn func() string) []string {
	candidates := r.Assets
	if filter == "" && (machineArch() == "x86_64" || machineArch() == "amd64") {
		var preferred []release.Asset
		for _, a := range candidates {
			if strings.Contains(a.Name, "x86_64") {
				preferred = append(preferred, a)
			}
		}
		if len(preferred) > 0 {
			candidates = preferred
		}
	}
	var kept []release.Asset
	for _, a := range candidates {
		if !AssetDoesNotBelongToMachine(a.Name, assetArchHint) {
			kept = append(kept, a)
		}
	}
	var urls []string
	if len(kept) == 0 {
		if releaseURLFn != nil {
			return []string{releaseURLFn()}
		}
		return nil
	}
	for _, a := range kept {
		urls = append(urls, a.URL)
	}
	if filter == "" {
		return urls
	}
	re, err := regexp.Compile(filter)
	if err != nil {
		return urls
	}
	var filtered []string
	for _, a := range kept {
		if re.MatchString(a.Name) {
			filtered = append(filtered, a.URL)
		}
	}
	return filtered
}
