package holder

import (
	"context"
	"net/url"
	"strings"

	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// Holder is the capability set every provider adapter satisfies (§9 "Model
// adapters as a closed variant ... satisfying one capability set").
// GetLatest is the only required operation; the rest are optional
// extensions an adapter may or may not support.
type Holder interface {
	GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error)
	ReleaseDownloadURL(r *release.Release, short bool) string
}

// LicenseProvider is implemented by adapters that can report the project's
// declared license (GitHub).
type LicenseProvider interface {
	RepoLicense(ctx context.Context) (string, error)
}

// ReadmeProvider is implemented by adapters that can fetch a README body.
type ReadmeProvider interface {
	RepoReadme(ctx context.Context) (string, error)
}

// InstanceProber is implemented by adapters with CAN_BE_SELF_HOSTED=true
// (§4.4 is_instance, §4.5 step 4): a tentative instance can probe whether
// the configured hostname actually runs this kind of forge.
type InstanceProber interface {
	IsInstance(ctx context.Context) bool
}

// FilterSetter is implemented by every concrete adapter (via the promoted
// Base.SetFilters) and lets callers outside the package install filters
// without knowing the adapter's concrete type.
type FilterSetter interface {
	SetFilters(Filters)
}

// FilterGetter lets a caller read back the filters currently installed on
// a holder before replacing them, so construction-time-only fields (like
// the Branches a known-repo override sets) survive a later SetFilters
// call that only knows about the orchestrator's own options.
type FilterGetter interface {
	CurrentFilters() Filters
}

// ReleaseURLFormatSetter is implemented by adapters whose
// ReleaseDownloadURL can be overridden by a known-repo's ReleaseURLFormat
// (§3 "Known-repos table"), e.g. nginx.org's own prepared tarballs instead
// of GitHub's archive-by-tag URL.
type ReleaseURLFormatSetter interface {
	SetReleaseURLFormat(string)
}

// KnownRepo is one entry in an adapter's KNOWN_REPOS_BY_NAME/KNOWN_REPO_URLS
// tables (§3 "Known-repos table"): a short alias or hostname resolves to a
// canonical repo identifier plus optional overrides.
type KnownRepo struct {
	Repo              string
	Hostname          string
	ReleaseURLFormat  string
	Branches          map[string]string // major -> regex source
	Only              string
	FixLetterPost     bool
}

// Base holds the per-instance configuration every adapter embeds (§3
// "Holder configuration"): hostname, repo, filters, and the static
// discovery metadata used by pkg/factory.
type Base struct {
	Hostname string
	Repo     string
	Filters  Filters
	Token    string

	// Discovery metadata (§4.4 "Instance discovery helpers"), set per
	// adapter type (constants, not per-instance state).
	DefaultHostname          string
	SubdomainIndicator       string
	RepoURLProjectComponents int
	RepoURLProjectOffset     int
	CanBeSelfHosted          bool
	KnownReposByName         map[string]KnownRepo
	KnownRepoURLs            map[string]KnownRepo
}

// SetFilters installs the orchestrator-level filter set (only/exclude/
// having-asset/even/formal/branches) ahead of GetLatest, which itself only
// takes preOk/major (§4.4 set_only/set_exclude/set_having_asset/set_even/
// set_formal/set_branches, folded into one call for the Go port).
func (b *Base) SetFilters(f Filters) { b.Filters = f }

// CurrentFilters implements FilterGetter.
func (b Base) CurrentFilters() Filters { return b.Filters }

// IsMatchingHostname compares h against DefaultHostname and, if set, a
// SubdomainIndicator prefix, ignoring port (§4.4).
func (b Base) IsMatchingHostname(h string) bool {
	if h == "" {
		return false
	}
	host := stripPort(h)
	if strings.EqualFold(host, b.DefaultHostname) {
		return true
	}
	if b.SubdomainIndicator != "" {
		suffix := "." + strings.TrimPrefix(b.DefaultHostname, b.SubdomainIndicator+".")
		if strings.HasPrefix(strings.ToLower(host), strings.ToLower(b.SubdomainIndicator)) &&
			strings.HasSuffix(strings.ToLower(host), strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func stripPort(h string) string {
	if i := strings.LastIndex(h, ":"); i >= 0 {
		if _, err := url.Parse("//" + h); err == nil {
			return h[:i]
		}
	}
	return h
}

// IsOfficialForRepo consults the known-repos tables for repo/hostname,
// returning the matched record (§4.4 is_official_for_repo).
func (b Base) IsOfficialForRepo(repo, hostname string) (KnownRepo, bool) {
	if kr, ok := b.KnownReposByName[strings.ToLower(repo)]; ok {
		return kr, true
	}
	if hostname != "" {
		if kr, ok := b.KnownRepoURLs[strings.ToLower(stripPort(hostname))]; ok {
			return kr, true
		}
	}
	return KnownRepo{}, false
}

// GetBaseRepoFromRepoArg normalizes a user input to the adapter's
// REPO_URL_PROJECT_COMPONENTS count, optionally offset by
// REPO_URL_PROJECT_OFFSET (§4.4).
func (b Base) GetBaseRepoFromRepoArg(arg string) string {
	arg = strings.Trim(arg, "/")
	parts := strings.Split(arg, "/")
	offset := b.RepoURLProjectOffset
	if offset < 0 {
		offset = 0
	}
	if offset > len(parts) {
		offset = len(parts)
	}
	parts = parts[offset:]
	n := b.RepoURLProjectComponents
	if n <= 0 || n > len(parts) {
		n = len(parts)
	}
	return strings.Join(parts[:n], "/")
}
