package holder

import (
	"testing"

	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

func TestReleaseDownloadURL(t *testing.T) {
	r := &release.Release{TagName: "v1.2.3"}
	tmpl := "https://{hostname}/{repo}/archive/{tag}.{ext}"
	got := ReleaseDownloadURL(tmpl, r, "github.com", "foo/bar", false)
	want := "https://github.com/foo/bar/archive/v1.2.3." + releaseExt(false)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReleaseDownloadURLShort(t *testing.T) {
	r := &release.Release{TagName: "v1.2.3"}
	tmpl := "https://{hostname}/{repo}/archive/{tag}{ext}"
	got := ReleaseDownloadURL(tmpl, r, "github.com", "foo/bar", true)
	want := "https://github.com/foo/bar/archive/v1.2.3"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetAssetsFallsBackToReleaseURL(t *testing.T) {
	r := &release.Release{Assets: nil}
	urls := GetAssets(r, "", func() string { return "https://example.com/archive.tar.gz" })
	if len(urls) != 1 || urls[0] != "https://example.com/archive.tar.gz" {
		t.Errorf("got %v, want fallback release URL", urls)
	}
}

func TestGetAssetsFiltersByRegex(t *testing.T) {
	r := &release.Release{Assets: []release.Asset{
		{Name: "tool-linux-amd64.tar.gz", URL: "https://x/linux"},
		{Name: "tool.sha256", URL: "https://x/sha256"},
	}}
	urls := GetAssets(r, "tar.gz$", nil)
	if len(urls) != 1 || urls[0] != "https://x/linux" {
		t.Errorf("got %v, want only the tar.gz asset", urls)
	}
}

func TestGetAssetsDropsAssetsForOtherPlatforms(t *testing.T) {
	r := &release.Release{Assets: []release.Asset{
		{Name: "tool-windows-amd64.zip", URL: "https://x/win"},
	}}
	urls := GetAssets(r, "", func() string { return "https://example.com/fallback.tar.gz" })
	if len(urls) != 1 || urls[0] != "https://example.com/fallback.tar.gz" {
		t.Errorf("got %v, want fallback after windows asset is dropped", urls)
	}
}
