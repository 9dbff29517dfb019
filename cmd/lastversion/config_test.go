package main

import "testing"

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"valid sem", Config{Sem: "minor"}, false},
		{"invalid sem", Config{Sem: "weekly"}, true},
		{"valid format", Config{Format: "json"}, false},
		{"invalid format", Config{Format: "xml"}, true},
		{"valid at", Config{At: "github"}, false},
		{"invalid at", Config{At: "svn"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := c.cfg
			err := cfg.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestKnownAdaptersCoversAtChoices(t *testing.T) {
	for _, name := range []string{
		"github", "gitlab", "bitbucket", "hg", "pip", "wp", "sf",
		"wiki", "helm_chart", "alpine", "gitea", "website-feed", "local", "system",
	} {
		if _, ok := knownAdapters[name]; !ok {
			t.Errorf("knownAdapters missing entry for --at %q", name)
		}
	}
}
