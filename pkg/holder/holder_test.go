package holder

import "testing"

func TestBaseIsMatchingHostname(t *testing.T) {
	b := Base{DefaultHostname: "gitea.com", SubdomainIndicator: "codeberg"}
	b.DefaultHostname = "gitea.com"
	cases := []struct {
		host string
		want bool
	}{
		{"gitea.com", true},
		{"gitea.com:443", true},
		{"example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := b.IsMatchingHostname(tc.host); got != tc.want {
			t.Errorf("IsMatchingHostname(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}

func TestBaseIsOfficialForRepo(t *testing.T) {
	b := Base{
		KnownReposByName: map[string]KnownRepo{
			"nginx": {Repo: "nginx/nginx", Hostname: "github.com"},
		},
		KnownRepoURLs: map[string]KnownRepo{
			"gitlab.gnome.org": {Repo: "GNOME/glib", Hostname: "gitlab.gnome.org"},
		},
	}
	if kr, ok := b.IsOfficialForRepo("nginx", ""); !ok || kr.Repo != "nginx/nginx" {
		t.Errorf("expected nginx lookup by name to succeed, got %+v, %v", kr, ok)
	}
	if kr, ok := b.IsOfficialForRepo("", "gitlab.gnome.org"); !ok || kr.Repo != "GNOME/glib" {
		t.Errorf("expected lookup by hostname to succeed, got %+v, %v", kr, ok)
	}
	if _, ok := b.IsOfficialForRepo("unknown/repo", "unknown.example"); ok {
		t.Error("expected unknown repo/hostname to not match")
	}
}

func TestBaseGetBaseRepoFromRepoArg(t *testing.T) {
	b := Base{RepoURLProjectComponents: 2}
	if got := b.GetBaseRepoFromRepoArg("foo/bar/baz"); got != "foo/bar" {
		t.Errorf("got %q, want foo/bar", got)
	}

	b2 := Base{RepoURLProjectComponents: 2, RepoURLProjectOffset: 1}
	if got := b2.GetBaseRepoFromRepoArg("owner/foo/bar/baz"); got != "foo/bar" {
		t.Errorf("got %q, want foo/bar", got)
	}

	b3 := Base{}
	if got := b3.GetBaseRepoFromRepoArg("foo/bar"); got != "foo/bar" {
		t.Errorf("got %q, want passthrough foo/bar", got)
	}
}
