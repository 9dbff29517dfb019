package main

import "testing"

func TestSplitRepoArg(t *testing.T) {
	cases := []struct {
		in        string
		wantRepo  string
		wantMajor string
	}{
		{"dvershinin/lastversion", "dvershinin/lastversion", ""},
		{"dvershinin/lastversion:1", "dvershinin/lastversion", "1"},
		{"nginx:1.18", "nginx", "1.18"},
		{"https://github.com/dvershinin/lastversion", "https://github.com/dvershinin/lastversion", ""},
		{"https://gitlab.example.com:9000/group/project", "https://gitlab.example.com:9000/group/project", ""},
		{"repo", "repo", ""},
	}
	for _, c := range cases {
		repo, major := splitRepoArg(c.in)
		if repo != c.wantRepo || major != c.wantMajor {
			t.Errorf("splitRepoArg(%q) = (%q, %q), want (%q, %q)", c.in, repo, major, c.wantRepo, c.wantMajor)
		}
	}
}
