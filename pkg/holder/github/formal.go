package github

import (
	"context"

	"github.com/google/go-github/v57/github"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
	"github.com/dvershinin/lastversion-sub000/pkg/version"
)

// loadFormalReleases lazily fetches the first page of /releases and indexes
// it by tag name, per §4.6 step 3. An empty map after this call means the
// listing failed or the repo has no formal releases; both are non-fatal.
func (h *Holder) loadFormalReleases(ctx context.Context) {
	if h.formalSeen != nil {
		return
	}
	h.formalSeen = map[string]*github.RepositoryRelease{}
	owner, name := h.ownerRepo()
	opts := &github.ListOptions{PerPage: 100}
	rels, _, err := h.rest.Repositories.ListReleases(ctx, owner, name, opts)
	if err != nil {
		return
	}
	for _, rel := range rels {
		h.formalSeen[rel.GetTagName()] = rel
	}
}

// lookupFormalRelease returns the formal release matching tag, if one
// exists among the releases already indexed by loadFormalReleases.
func (h *Holder) lookupFormalRelease(ctx context.Context, tag string) (*github.RepositoryRelease, bool) {
	h.loadFormalReleases(ctx)
	rel, ok := h.formalSeen[tag]
	return rel, ok
}

// releaseHasMatchingAsset implements the HavingAsset half of §4.6's
// set_matching_formal_release: a plain substring or "~"-prefixed regex
// matched against each asset's name or label.
func releaseHasMatchingAsset(rel *github.RepositoryRelease, filter string) bool {
	if filter == "" {
		return true
	}
	f := holder.Filters{Only: filter}
	for _, a := range rel.Assets {
		if f.PassesOnlyExclude(a.GetName()) || f.PassesOnlyExclude(a.GetLabel()) {
			return true
		}
	}
	return false
}

// applyFormalRelease implements §4.6's set_matching_formal_release: a
// formal release is rejected outright if it is a draft, or a prerelease
// without PreOk, or (when HavingAsset is set) has no matching asset. Its
// tag_date is max(published_at, created_at). The candidate only replaces
// ret if it is newer.
func (h *Holder) applyFormalRelease(ret *release.Release, rel *github.RepositoryRelease, v *version.Version, typ release.Type) (*release.Release, bool) {
	if rel.GetDraft() {
		return ret, false
	}
	if rel.GetPrerelease() && !h.Filters.PreOk {
		return ret, false
	}
	if !releaseHasMatchingAsset(rel, h.Filters.HavingAsset) {
		return ret, false
	}

	tagDate := rel.GetPublishedAt().Time
	if rel.GetCreatedAt().Time.After(tagDate) {
		tagDate = rel.GetCreatedAt().Time
	}

	assets := make([]release.Asset, 0, len(rel.Assets))
	for _, a := range rel.Assets {
		assets = append(assets, release.Asset{
			Name: a.GetName(),
			URL:  a.GetBrowserDownloadURL(),
			Label: a.GetLabel(),
			Size: int64(a.GetSize()),
		})
	}

	cand := &release.Release{
		Version: v,
		TagName: rel.GetTagName(),
		TagDate: tagDate,
		Type:    typ,
		Assets:  assets,
		From:    rel.GetHTMLURL(),
	}
	if !cand.Newer(ret) {
		return ret, false
	}
	return cand, true
}

// formalPass implements §4.6 step 3 on its own: when feedPass found
// nothing usable (e.g. the repo has no releases.atom entries but does
// have formal /releases), enumerate the first page of formal releases
// directly and overlay the best one onto ret.
func (h *Holder) formalPass(ctx context.Context, ret *release.Release) (*release.Release, error) {
	h.loadFormalReleases(ctx)
	for tag, rel := range h.formalSeen {
		v, ok := h.Filters.SanitizeVersion(tag, "", h.FixLetterPost)
		if !ok {
			continue
		}
		if newRet, accepted := h.applyFormalRelease(ret, rel, v, release.TypeRelease); accepted {
			ret = newRet
		}
	}
	return ret, nil
}
