package github

import (
	"testing"

	"github.com/google/go-github/v57/github"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/version"
)

func mustParse(t *testing.T, s string) *version.Version {
	t.Helper()
	v, err := version.Parse(s)
	if err != nil {
		t.Fatalf("version.Parse(%q): %v", s, err)
	}
	return v
}

func TestApplyFormalReleaseRejectsDraft(t *testing.T) {
	h := &Holder{}
	rel := &github.RepositoryRelease{
		TagName: github.String("v1.0.0"),
		Draft:   github.Bool(true),
	}
	ret, accepted := h.applyFormalRelease(nil, rel, mustParse(t, "1.0.0"), "release")
	if accepted || ret != nil {
		t.Fatalf("draft release should be rejected, got accepted=%v ret=%v", accepted, ret)
	}
}

func TestApplyFormalReleaseRejectsPrereleaseWithoutPreOk(t *testing.T) {
	h := &Holder{}
	rel := &github.RepositoryRelease{
		TagName:    github.String("v1.0.0-rc1"),
		Prerelease: github.Bool(true),
	}
	_, accepted := h.applyFormalRelease(nil, rel, mustParse(t, "1.0.0rc1"), "release")
	if accepted {
		t.Fatal("prerelease without PreOk should be rejected")
	}
}

func TestApplyFormalReleaseAcceptsPrereleaseWithPreOk(t *testing.T) {
	h := &Holder{Base: holder.Base{Filters: holder.Filters{PreOk: true}}}
	rel := &github.RepositoryRelease{
		TagName:    github.String("v1.0.0-rc1"),
		Prerelease: github.Bool(true),
	}
	ret, accepted := h.applyFormalRelease(nil, rel, mustParse(t, "1.0.0rc1"), "release")
	if !accepted || ret == nil {
		t.Fatal("prerelease with PreOk should be accepted")
	}
}

func TestApplyFormalReleaseHavingAssetFilter(t *testing.T) {
	h := &Holder{Base: holder.Base{Filters: holder.Filters{HavingAsset: "linux"}}}
	rel := &github.RepositoryRelease{
		TagName: github.String("v1.0.0"),
		Assets: []*github.ReleaseAsset{
			{Name: github.String("app-darwin-amd64.tar.gz")},
		},
	}
	_, accepted := h.applyFormalRelease(nil, rel, mustParse(t, "1.0.0"), "release")
	if accepted {
		t.Fatal("release with no matching asset should be rejected")
	}

	rel.Assets = append(rel.Assets, &github.ReleaseAsset{Name: github.String("app-linux-amd64.tar.gz")})
	ret, accepted := h.applyFormalRelease(nil, rel, mustParse(t, "1.0.0"), "release")
	if !accepted || ret == nil {
		t.Fatal("release with a matching asset should be accepted")
	}
	if len(ret.Assets) != 2 {
		t.Fatalf("expected 2 assets carried onto the release, got %d", len(ret.Assets))
	}
}

func TestApplyFormalReleaseOnlyReplacesWhenNewer(t *testing.T) {
	h := &Holder{}
	older := mustParse(t, "1.0.0")
	newer := mustParse(t, "2.0.0")
	relOld := &github.RepositoryRelease{TagName: github.String("v1.0.0")}
	relNew := &github.RepositoryRelease{TagName: github.String("v2.0.0")}

	ret, accepted := h.applyFormalRelease(nil, relNew, newer, "release")
	if !accepted || ret.TagName != "v2.0.0" {
		t.Fatalf("first candidate should be accepted, got %v", ret)
	}
	ret, accepted = h.applyFormalRelease(ret, relOld, older, "release")
	if accepted {
		t.Fatal("an older release should not replace a newer one")
	}
}
