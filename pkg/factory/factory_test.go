package factory

import (
	"context"
	"testing"

	"github.com/dvershinin/lastversion-sub000/pkg/holder/bitbucket"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/github"
)

func TestParseInputURL(t *testing.T) {
	repo, hostname := parseInput("https://github.com/dvershinin/lastversion")
	if hostname != "github.com" || repo != "dvershinin/lastversion" {
		t.Fatalf("parseInput URL = %q, %q", repo, hostname)
	}
}

func TestParseInputURLWithPort(t *testing.T) {
	repo, hostname := parseInput("https://git.example.com:8443/group/project")
	if hostname != "git.example.com:8443" || repo != "group/project" {
		t.Fatalf("parseInput URL with port = %q, %q", repo, hostname)
	}
}

func TestParseInputBareRepo(t *testing.T) {
	repo, hostname := parseInput("dvershinin/lastversion")
	if hostname != "" || repo != "dvershinin/lastversion" {
		t.Fatalf("parseInput bare repo = %q, %q", repo, hostname)
	}
}

func TestMatchesHostname(t *testing.T) {
	e := registryEntry{defaultHostname: "gitlab.com"}
	if !matchesHostname(e, "gitlab.com") {
		t.Error("expected gitlab.com to match")
	}
	if matchesHostname(e, "github.com") {
		t.Error("expected github.com not to match gitlab entry")
	}
}

func TestGitHubRepoFromLink(t *testing.T) {
	cases := map[string]string{
		"https://github.com/dvershinin/lastversion":      "dvershinin/lastversion",
		"https://github.com/dvershinin/lastversion/":     "dvershinin/lastversion",
		"https://github.com/dvershinin/lastversion#readme": "dvershinin/lastversion",
		"https://example.com":                             "",
	}
	for link, want := range cases {
		if got := githubRepoFromLink(link); got != want {
			t.Errorf("githubRepoFromLink(%q) = %q, want %q", link, got, want)
		}
	}
}

func TestNewKnownRepoByName(t *testing.T) {
	h, err := New(context.Background(), "nginx", Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gh, ok := h.(*github.Holder)
	if !ok {
		t.Fatalf("expected a *github.Holder, got %T", h)
	}
	if gh.Repo != "nginx/nginx" {
		t.Errorf("repo = %q, want %q", gh.Repo, "nginx/nginx")
	}
	if _, ok := gh.CurrentFilters().Branches["stable"]; !ok {
		t.Error("expected the nginx known-repo's \"stable\" branch regex to be installed")
	}
}

func TestNewKnownRepoByNameBitbucket(t *testing.T) {
	h, err := New(context.Background(), "monit", Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bb, ok := h.(*bitbucket.Holder)
	if !ok {
		t.Fatalf("expected a *bitbucket.Holder, got %T", h)
	}
	if bb.Repo != "tildeslash/monit" {
		t.Errorf("repo = %q, want %q", bb.Repo, "tildeslash/monit")
	}
}

func TestNewAtOverrideBypassesKnownRepos(t *testing.T) {
	h, err := New(context.Background(), "nginx", Options{CacheDir: t.TempDir(), At: "gitlab"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gh, ok := h.(*github.Holder); ok {
		t.Fatalf("expected --at=gitlab to skip the github known-repo table, got %+v", gh)
	}
}
