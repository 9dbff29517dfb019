package rpmspec

import (
	"strings"
	"testing"
)

const sampleSpec = `Name:           widget
Version:        1.2.3
License:        MIT
URL:            https://github.com/acme/widget
Source0:        https://github.com/acme/widget/archive/v%{version}.tar.gz
%global upstream_github acme
%global lastversion_major 1
%global lastversion_formal yes
`

func TestParseBasic(t *testing.T) {
	d, err := Parse(strings.NewReader(sampleSpec))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Name != "widget" {
		t.Errorf("Name = %q, want widget", d.Name)
	}
	if d.SpecTag != "%{name}" {
		t.Errorf("SpecTag = %q, want %%{name}", d.SpecTag)
	}
	if d.CurrentVersion != "1.2.3" {
		t.Errorf("CurrentVersion = %q, want 1.2.3", d.CurrentVersion)
	}
	if d.Repo != "acme/widget" {
		t.Errorf("Repo = %q, want acme/widget", d.Repo)
	}
	if d.Major != "1" {
		t.Errorf("Major = %q, want 1", d.Major)
	}
	if !d.Formal || !d.FormalSet {
		t.Errorf("Formal = %v FormalSet = %v, want true/true", d.Formal, d.FormalSet)
	}
	if d.License != "MIT" {
		t.Errorf("License = %q, want MIT", d.License)
	}
}

func TestParseUpstreamNameAndVersion(t *testing.T) {
	spec := `Name:           widget-module
%global upstream_name widget
%global upstream_version 2.0.0
Version:        2.0.0
%global lastversion_repo acme/widget
`
	d, err := Parse(strings.NewReader(spec))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Name != "widget" {
		t.Errorf("Name = %q, want widget", d.Name)
	}
	if d.SpecTag != "%{upstream_name}" {
		t.Errorf("SpecTag = %q, want %%{upstream_name}", d.SpecTag)
	}
	if !d.ModuleOf {
		t.Error("ModuleOf should be true when upstream_version is set")
	}
	if d.Repo != "acme/widget" {
		t.Errorf("Repo = %q, want acme/widget (from lastversion_repo)", d.Repo)
	}
}

func TestParseCommitBased(t *testing.T) {
	spec := `Name:           widget
Version:        0.0.0
URL:            https://example.com/widget
%global commit  deadbeefcafebabe
`
	d, err := Parse(strings.NewReader(spec))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !d.CommitBased {
		t.Error("CommitBased should be true")
	}
	if d.CurrentCommit != "deadbeefcafebabe" {
		t.Errorf("CurrentCommit = %q, want deadbeefcafebabe", d.CurrentCommit)
	}
}

func TestFindPreferredURL(t *testing.T) {
	urls := []string{"https://example.com/widget", "https://github.com/acme/widget"}
	isKnown := func(host string) bool { return host == "github.com" }
	if got := FindPreferredURL(urls, isKnown); got != "https://github.com/acme/widget" {
		t.Errorf("FindPreferredURL = %q, want the github.com URL", got)
	}
	if got := FindPreferredURL(urls, nil); got != urls[0] {
		t.Errorf("FindPreferredURL with nil isKnownHost = %q, want first URL", got)
	}
	if got := FindPreferredURL(nil, isKnown); got != "" {
		t.Errorf("FindPreferredURL(nil, ...) = %q, want empty", got)
	}
}
