package lastversion

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dvershinin/lastversion-sub000/pkg/release"
	"github.com/dvershinin/lastversion-sub000/pkg/version"
)

func mustVersion(t *testing.T, s string) *version.Version {
	t.Helper()
	v, err := version.Parse(s)
	if err != nil {
		t.Fatalf("version.Parse(%q): %v", s, err)
	}
	return v
}

func TestRenderVersion(t *testing.T) {
	r := &release.Release{Version: mustVersion(t, "2.41.0rc2"), TagName: "v2.41.0-rc2"}
	got, err := Render(r, FormatVersion, "", 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "2.41.0rc2" {
		t.Errorf("Render version = %q, want 2.41.0rc2", got)
	}
}

func TestRenderTagIgnoresSemTruncation(t *testing.T) {
	r := &release.Release{Version: mustVersion(t, "2.3.4"), TagName: "2.3.4-p2"}
	got, err := Render(r, FormatTag, "", version.SemMajor)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "2.3.4-p2" {
		t.Errorf("Render tag = %q, want original tag 2.3.4-p2", got)
	}
}

func TestRenderVersionSemTruncation(t *testing.T) {
	r := &release.Release{Version: mustVersion(t, "2.41.0"), TagName: "v2.41.0"}
	got, err := Render(r, FormatVersion, "", version.SemMajor)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "2" {
		t.Errorf("Render with --sem major = %q, want 2", got)
	}
}

func TestRenderSource(t *testing.T) {
	r := &release.Release{Version: mustVersion(t, "1.0.0"), TagName: "v1.0.0", SourceURL: "https://example.com/archive/v1.0.0.tar.gz"}
	got, err := Render(r, FormatSource, "", 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != r.SourceURL {
		t.Errorf("Render source = %q, want %q", got, r.SourceURL)
	}
}

func TestRenderAssetsFallsBackToSourceURL(t *testing.T) {
	r := &release.Release{
		Version:   mustVersion(t, "1.0.0"),
		TagName:   "v1.0.0",
		SourceURL: "https://example.com/archive/v1.0.0.tar.gz",
	}
	got, err := Render(r, FormatAssets, "", 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var urls []string
	if err := json.Unmarshal([]byte(got), &urls); err != nil {
		t.Fatalf("unmarshal assets: %v", err)
	}
	if len(urls) != 1 || urls[0] != r.SourceURL {
		t.Fatalf("assets = %v, want [%s]", urls, r.SourceURL)
	}
}

func TestRenderJSONIncludesEnrichments(t *testing.T) {
	r := &release.Release{
		Version: mustVersion(t, "1.0.0"),
		TagName: "v1.0.0",
		License: "MIT",
		Readme:  "# Widget",
	}
	got, err := Render(r, FormatJSON, "", 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, `"license": "MIT"`) {
		t.Errorf("json output missing license: %s", got)
	}
	if !strings.Contains(got, `"readme": "# Widget"`) {
		t.Errorf("json output missing readme: %s", got)
	}
}

func TestParseSemLevel(t *testing.T) {
	cases := map[string]version.SemLevel{
		"major": version.SemMajor,
		"minor": version.SemMinor,
		"patch": version.SemPatch,
		"any":   0,
		"":      0,
		"bogus": 0,
	}
	for in, want := range cases {
		if got := ParseSemLevel(in); got != want {
			t.Errorf("ParseSemLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
