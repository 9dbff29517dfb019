// Package factory implements the §4.5 Holder Factory: given a user-supplied
// project string (a URL, an "owner/name" slug, a bare one-word name, or an
// explicit adapter override), dispatch to the matching provider adapter.
// Grounded on original_source/lastversion/holder_factory.py's dispatch
// order (fixed-hostname match, known-repo override, self-hosting probe,
// homepage-feed fallback, default-to-GitHub-search).
package factory

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/alpine"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/bitbucket"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/feed"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/gitea"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/github"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/gitlab"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/helmchart"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/local"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/mercurial"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/pypi"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/sourceforge"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/system"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/wikipedia"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/wordpress"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// BadProjectError is raised when a hostname was given but no adapter
// claims it, and the homepage-feed/GitHub-link fallback also found
// nothing usable (§4.5 "Errors").
type BadProjectError struct {
	Input string
}

func (e *BadProjectError) Error() string {
	return fmt.Sprintf("lastversion: could not determine a project type for %q", e.Input)
}

// Options configures dispatch. At, when non-empty, names an adapter
// directly (bypassing every other dispatch rule), matching §4.5 step 2.
type Options struct {
	At       string
	CacheDir string
}

// registryEntry is the factory's static metadata for one adapter: enough
// to match a hostname (§4.5 step 3) or run a self-hosting probe (step 4)
// without constructing the concrete holder.Holder until a match is found.
type registryEntry struct {
	name               string
	defaultHostname    string
	subdomainIndicator string
	canBeSelfHosted    bool
	construct          func(repo, hostname, cacheDir string) (holder.Holder, error)

	// knownReposByName/knownRepoURLs mirror the adapter's own
	// KNOWN_REPOS_BY_NAME/KNOWN_REPO_URLS tables (§3 "Known-repos
	// table"), consulted by New for a bare one-word name (before the
	// GitHub search) and, entry by entry, inside the hostname-match loop
	// (ahead of the self-hosting probe).
	knownReposByName map[string]holder.KnownRepo
	knownRepoURLs    map[string]holder.KnownRepo
}

func registry() []registryEntry {
	return []registryEntry{
		{name: "github", defaultHostname: github.DefaultHostname, construct: constructGitHub,
			knownReposByName: github.KnownReposByName, knownRepoURLs: github.KnownRepoURLs},
		{name: "gitlab", defaultHostname: "gitlab.com", construct: constructGitLab},
		{name: "bitbucket", defaultHostname: "bitbucket.org", construct: constructBitBucket,
			knownReposByName: bitbucket.KnownReposByName, knownRepoURLs: bitbucket.KnownRepoURLs},
		{name: "gitea", defaultHostname: gitea.DefaultHostname, canBeSelfHosted: true, construct: constructGitea},
		{name: "pypi", defaultHostname: "pypi.org", canBeSelfHosted: true, construct: constructPyPI},
		{name: "sourceforge", defaultHostname: "sourceforge.net", construct: constructSourceForge},
		{name: "wikipedia", defaultHostname: "en.wikipedia.org", subdomainIndicator: "wikipedia.org", construct: constructWikipedia},
		{name: "wordpress", defaultHostname: "wordpress.org", construct: constructWordPress},
	}
}

// lookupKnownRepo checks e's known-repo tables for an override matching
// hostname (if any) first, then the bare repo name (§4.4 is_official_for_repo).
func lookupKnownRepo(e registryEntry, repo, hostname string) (holder.KnownRepo, bool) {
	if hostname != "" {
		if kr, ok := e.knownRepoURLs[strings.ToLower(hostname)]; ok {
			return kr, true
		}
	}
	if repo != "" {
		if kr, ok := e.knownReposByName[strings.ToLower(repo)]; ok {
			return kr, true
		}
	}
	return holder.KnownRepo{}, false
}

// createHolderFromKnownRepo constructs the holder for a matched known-repo
// record, applying its branch-regex/release-URL overrides (§3 "Known-repos
// table" overrides, mirroring create_holder_from_known_repo).
func createHolderFromKnownRepo(e registryEntry, kr holder.KnownRepo, cacheDir string) (holder.Holder, error) {
	h, err := e.construct(kr.Repo, kr.Hostname, cacheDir)
	if err != nil {
		return nil, err
	}
	if kr.ReleaseURLFormat != "" {
		if s, ok := h.(holder.ReleaseURLFormatSetter); ok {
			s.SetReleaseURLFormat(kr.ReleaseURLFormat)
		}
	}
	if kr.Only != "" || len(kr.Branches) > 0 {
		branches := map[string]*regexp.Regexp{}
		for major, src := range kr.Branches {
			if re, cerr := regexp.Compile(src); cerr == nil {
				branches[major] = re
			}
		}
		if fs, ok := h.(holder.FilterSetter); ok {
			fs.SetFilters(holder.Filters{Only: kr.Only, Branches: branches})
		}
	}
	return h, nil
}

func namedRegistry() map[string]registryEntry {
	m := map[string]registryEntry{}
	for _, e := range registry() {
		m[e.name] = e
	}
	m["mercurial"] = registryEntry{name: "mercurial", construct: constructMercurial}
	m["helmchart"] = registryEntry{name: "helmchart", construct: constructHelmChart}
	m["alpine"] = registryEntry{name: "alpine", construct: constructAlpine}
	m["system"] = registryEntry{name: "system", construct: constructSystem}
	m["local"] = registryEntry{name: "local", construct: constructLocal}
	m["feed"] = registryEntry{name: "feed", construct: constructFeed}
	return m
}

// New dispatches input to the matching provider adapter, per §4.5.
func New(ctx context.Context, input string, opts Options) (holder.Holder, error) {
	repo, hostname := parseInput(input)

	if opts.At != "" {
		entry, ok := namedRegistry()[opts.At]
		if !ok {
			return nil, fmt.Errorf("lastversion: unknown adapter %q", opts.At)
		}
		return entry.construct(repo, hostname, opts.CacheDir)
	}

	if hostname == "" {
		for _, e := range registry() {
			if kr, ok := lookupKnownRepo(e, repo, ""); ok {
				return createHolderFromKnownRepo(e, kr, opts.CacheDir)
			}
		}
		if h, err := constructGitHubOneWord(ctx, repo, opts.CacheDir); err == nil && h != nil {
			return h, nil
		}
		return nil, &BadProjectError{Input: input}
	}

	for _, e := range registry() {
		if matchesHostname(e, hostname) {
			return e.construct(repo, hostname, opts.CacheDir)
		}
		if kr, ok := lookupKnownRepo(e, repo, hostname); ok {
			return createHolderFromKnownRepo(e, kr, opts.CacheDir)
		}
	}

	for _, e := range registry() {
		if !e.canBeSelfHosted {
			continue
		}
		h, err := e.construct(repo, hostname, opts.CacheDir)
		if err != nil {
			continue
		}
		if prober, ok := h.(holder.InstanceProber); ok && prober.IsInstance(ctx) {
			return h, nil
		}
	}

	if h, err := homepageFeedFallback(ctx, hostname, repo, opts.CacheDir); err == nil && h != nil {
		return h, nil
	}

	return nil, &BadProjectError{Input: input}
}

func matchesHostname(e registryEntry, hostname string) bool {
	b := holder.Base{DefaultHostname: e.defaultHostname, SubdomainIndicator: e.subdomainIndicator}
	return b.IsMatchingHostname(hostname)
}

// parseInput implements §4.5 step 1: a URL keeps its netloc as hostname
// and its path (leading slash stripped) as repo; anything else is a bare
// repo string with no hostname.
func parseInput(input string) (repo, hostname string) {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		if u, err := url.Parse(input); err == nil {
			hostname = u.Host
			repo = strings.TrimPrefix(u.Path, "/")
			repo = strings.TrimSuffix(repo, "/")
			return repo, hostname
		}
	}
	return input, ""
}

func constructGitHub(repo, hostname, cacheDir string) (holder.Holder, error) {
	return github.NewHolder(repo, hostname, cacheDir)
}

func constructGitHubOneWord(ctx context.Context, name, cacheDir string) (holder.Holder, error) {
	if strings.Contains(name, "/") {
		return github.NewHolder(name, "", cacheDir)
	}
	h, err := github.NewHolder(name, "", cacheDir)
	if err != nil {
		return nil, err
	}
	resolved, err := h.ResolveOneWordRepo(ctx, name, cacheDir)
	if err != nil || resolved == "" {
		return nil, err
	}
	return github.NewHolder(resolved, "", cacheDir)
}

func constructGitLab(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "PRIVATE-TOKEN", os.Getenv("GITLAB_PA_TOKEN"))
	if err != nil {
		return nil, err
	}
	return &gitlab.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructBitBucket(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	return &bitbucket.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructGitea(repo, hostname, cacheDir string) (holder.Holder, error) {
	token := os.Getenv("GITEA_API_TOKEN")
	authValue := ""
	if token != "" {
		authValue = "token " + token
	}
	session, err := holder.NewSession(cacheDir, "Authorization", authValue)
	if err != nil {
		return nil, err
	}
	return &gitea.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructPyPI(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	return &pypi.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructSourceForge(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	return &sourceforge.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructWikipedia(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	return &wikipedia.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructWordPress(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	return &wordpress.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructMercurial(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	return &mercurial.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructHelmChart(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	return &helmchart.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructAlpine(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	return &alpine.Holder{Base: holder.Base{Repo: repo, Hostname: hostname}, Client: session}, nil
}

func constructSystem(repo, _ string, _ string) (holder.Holder, error) {
	return system.NewHolder(repo), nil
}

func constructLocal(repo, _ string, _ string) (holder.Holder, error) {
	return &local.Holder{Base: holder.Base{Repo: repo}}, nil
}

// constructFeed builds a holder for an explicit --at website-feed override,
// reassembling the feed's own URL from the split repo/hostname pair (§4.5
// step 2 bypasses the homepage-scraping fallback of html.go entirely when
// the adapter is forced).
func constructFeed(repo, hostname, cacheDir string) (holder.Holder, error) {
	session, err := holder.NewSession(cacheDir, "", "")
	if err != nil {
		return nil, err
	}
	feedURL := repo
	if hostname != "" {
		feedURL = "https://" + hostname + "/" + repo
	}
	return &feed.Holder{
		Base:    holder.Base{Hostname: hostname, Repo: repo},
		FeedURL: feedURL,
		Client:  session,
		Type:    release.TypeFeed,
	}, nil
}
