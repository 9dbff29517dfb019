// Package github implements the §4.6 GitHub adapter — the most complex
// provider: a releases.atom feed pass, a formal-releases overlay, and a
// deep tag search (GraphQL when a token is available, paginated REST tags
// otherwise), combined into one monotonically-improving selection.
// Grounded on go-github's client shape (github.com/google/go-github/v57,
// per other_examples/faetools-go-github-selfupdate's detect.go and
// flanksource-deps' github.go) and shurcooL/githubv4's query-struct idiom
// (per other_examples/cli-cli's fetch.go).
package github

import (
	"context"
	"net/http"
	"os"

	"github.com/google/go-github/v57/github"
	"github.com/shurcooL/githubv4"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// TokenEnvVars lists the environment variables checked for a GitHub API
// token, in priority order (§4.6 "Token discovery").
var TokenEnvVars = []string{"LASTVERSION_GITHUB_API_TOKEN", "GITHUB_API_TOKEN", "GITHUB_TOKEN"}

// DiscoverToken returns the first non-empty value among TokenEnvVars.
func DiscoverToken() string {
	for _, name := range TokenEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// DefaultHostname is github.com; GitHub Enterprise instances override
// Base.Hostname and use the v3 REST API under /api/v3.
const DefaultHostname = "github.com"

// KnownReposByName lists one-word aliases and popular repos that skip the
// GitHub search API entirely, plus any per-repo overrides they carry.
// Grounded on the upstream tool's KNOWN_REPOS_BY_NAME table.
var KnownReposByName = map[string]holder.KnownRepo{
	"php": {
		Repo:             "php/php-src",
		ReleaseURLFormat: "https://www.php.net/distributions/php-{version}.tar.gz",
	},
	"linux":   {Repo: "torvalds/linux"},
	"kernel":  {Repo: "torvalds/linux"},
	"openssl": {Repo: "openssl/openssl", FixLetterPost: true},
	"python":  {Repo: "python/cpython"},
	"cmake":   {Repo: "kitware/cmake"},
	"kodi":    {Repo: "xbmc/xbmc"},
	"quictls": {Repo: "quictls/openssl", FixLetterPost: true},
	"nginx": {
		Repo:             "nginx/nginx",
		Branches:         map[string]string{"stable": `\.\d?[02468]\.`, "mainline": `\.\d?[13579]\.`},
		ReleaseURLFormat: "https://nginx.org/download/{name}-{version}.{ext}",
	},
	"freenginx": {
		Repo:             "freenginx/nginx",
		Branches:         map[string]string{"stable": `\.\d?[02468]\.`, "mainline": `\.\d?[13579]\.`},
		ReleaseURLFormat: "https://freenginx.org/download/freenginx-{version}.{ext}",
	},
}

// KnownRepoURLs maps a hostname straight to one of the KnownReposByName
// entries, for projects whose own domain is recognizable on sight.
var KnownRepoURLs = map[string]holder.KnownRepo{
	"nginx.org": KnownReposByName["nginx"],
}

// fixLetterPostRepos is LAST_CHAR_FIX_REQUIRED_ON: repos whose trailing
// release letter (e.g. "1.1.1b") is part of the version scheme rather
// than a pre-release marker.
var fixLetterPostRepos = map[string]bool{
	"openssl/openssl": true,
	"quictls/openssl": true,
}

// roundTripper adapts an httpx.BasicClient (our own caching/retry/auth
// session) to http.RoundTripper so go-github and githubv4, which both
// require a concrete *http.Client, transparently get the same caching and
// rate-limit handling every other adapter's requests go through.
type roundTripper struct{ inner httpx.BasicClient }

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.inner.Do(req)
}

// Holder is the GitHub adapter. Repo is "owner/name"; Token, when set, is
// sent as "Authorization: token <Token>" by the underlying session.
type Holder struct {
	holder.Base
	Token      string
	session    httpx.BasicClient
	rest       *github.Client
	graphql    *githubv4.Client
	formalSeen map[string]*github.RepositoryRelease

	// FixLetterPost mirrors LAST_CHAR_FIX_REQUIRED_ON: a handful of
	// repos (openssl/openssl, quictls/openssl) suffix a trailing release
	// letter that is part of the version scheme, not a beta marker
	// (1.1.1b is not a beta of 1.1.1), so it gets rewritten to a post-
	// release segment instead of being stripped as a pre-release marker.
	FixLetterPost bool

	// ReleaseURLFormat overrides the default archive-by-tag URL shape,
	// set for known repos whose upstream publishes a "prepared" source
	// tarball better than GitHub's auto-generated archive.
	ReleaseURLFormat string
}

var _ holder.Holder = &Holder{}

// NewHolder constructs a GitHub adapter instance. cacheDir is this
// adapter's dedicated slice of the on-disk HTTP cache.
func NewHolder(repo, hostname, cacheDir string) (*Holder, error) {
	token := DiscoverToken()
	authValue := ""
	if token != "" {
		authValue = "token " + token
	}
	session, err := holder.NewSession(cacheDir, "Authorization", authValue)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Transport: roundTripper{inner: session}}
	h := &Holder{
		Base: holder.Base{
			Repo: repo, Hostname: hostname, DefaultHostname: DefaultHostname, CanBeSelfHosted: false,
			KnownReposByName: KnownReposByName, KnownRepoURLs: KnownRepoURLs,
		},
		FixLetterPost: fixLetterPostRepos[repo],
		Token:         token,
		session: session,
		rest:    github.NewClient(httpClient),
	}
	h.graphql = githubv4.NewClient(httpClient)
	if hostname != "" && hostname != DefaultHostname {
		if c, err := h.rest.WithEnterpriseURLs("https://"+hostname+"/api/v3/", "https://"+hostname+"/api/uploads/"); err == nil {
			h.rest = c
		}
	}
	return h, nil
}

// sessionClient exposes the adapter's raw caching/retry/auth session for
// calls that don't go through go-github or githubv4 (e.g. releases.atom).
func (h *Holder) sessionClient() httpx.BasicClient {
	return h.session
}

func (h *Holder) ownerRepo() (string, string) {
	owner, name := "", h.Repo
	for i := len(h.Repo) - 1; i >= 0; i-- {
		if h.Repo[i] == '/' {
			owner, name = h.Repo[:i], h.Repo[i+1:]
			break
		}
	}
	return owner, name
}

// GetLatest runs the full §4.6 state machine: feed, formal overlay, deep
// tag search, never regressing the best candidate found so far.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	h.Filters.PreOk = preOk
	h.Filters.Major = major
	h.formalSeen = nil

	var ret *release.Release
	if !h.Filters.Formal {
		feedRet, fromFeedRecently, err := h.feedPass(ctx)
		if err != nil {
			return nil, err
		}
		ret = feedRet
		if ret != nil && fromFeedRecently {
			return ret, nil
		}
	}

	formalRet, err := h.formalPass(ctx, ret)
	if err != nil {
		return nil, err
	}
	ret = formalRet

	if h.Filters.HavingAsset != "" || h.Filters.Formal {
		return ret, nil
	}

	deepRet, err := h.deepTagSearch(ctx, ret)
	if err != nil {
		return nil, err
	}
	return deepRet, nil
}

// ReleaseDownloadURL uses GitHub's archive-by-tag URL shape, unless a known
// repo override supplies a better "prepared" source URL (e.g. nginx.org).
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	tmpl := h.ReleaseURLFormat
	if tmpl == "" {
		tmpl = "https://{hostname}/{repo}/archive/{tag}.{ext}"
	}
	return holder.ReleaseDownloadURL(tmpl, r, h.hostname(), h.Repo, short)
}

// SetReleaseURLFormat implements holder.ReleaseURLFormatSetter.
func (h *Holder) SetReleaseURLFormat(f string) { h.ReleaseURLFormat = f }

func (h *Holder) hostname() string {
	if h.Hostname == "" {
		return DefaultHostname
	}
	return h.Hostname
}

// RepoLicense implements holder.LicenseProvider.
func (h *Holder) RepoLicense(ctx context.Context) (string, error) {
	owner, name := h.ownerRepo()
	repo, _, err := h.rest.Repositories.Get(ctx, owner, name)
	if err != nil {
		return "", err
	}
	if repo.GetLicense() != nil {
		return repo.GetLicense().GetSPDXID(), nil
	}
	return "", nil
}

// RepoReadme implements holder.ReadmeProvider.
func (h *Holder) RepoReadme(ctx context.Context) (string, error) {
	owner, name := h.ownerRepo()
	rc, err := h.rest.Repositories.GetReadme(ctx, owner, name, nil)
	if err != nil {
		return "", err
	}
	return rc.GetContent()
}
