package github

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"time"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/holder/feed"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

func (h *Holder) feedURL() string {
	return "https://" + h.hostname() + "/" + h.Repo + "/releases.atom"
}

// updateStyleRE recognizes tags like "8u462"/"7u80" — Java-style
// major/update release names (§4.6 "update-style dominance").
var updateStyleRE = regexp.MustCompile(`\d{1,3}u\d{1,4}`)

// feedPass implements §4.6 step 1: walk releases.atom newest-first,
// applying update-style dominance, semver-consistency, and the 30-day
// staleness cutoff. Returns the chosen release and whether it is recent
// enough (tag_date within 365 days) to short-circuit the rest of the
// pipeline (§4.6 step 2).
func (h *Holder) feedPass(ctx context.Context) (*release.Release, bool, error) {
	resp, err := holder.Get(h.sessionClient(), h.feedURL())
	if err != nil {
		return nil, false, errors.Wrap(err, "fetching releases.atom")
	}
	defer resp.Body.Close()
	if resp.StatusCode == 404 {
		if renamed, ok := h.checkRename(ctx); ok {
			h.Repo = renamed
			return h.feedPass(ctx)
		}
		return nil, false, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	entries, err := feed.ParseAtom(bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}

	updateStyleDominant := false
	for _, e := range entries {
		if updateStyleRE.MatchString(feed.TagFromLink(e)) {
			updateStyleDominant = true
			break
		}
	}

	var ret *release.Release
	seenSemver := false
	for _, e := range entries {
		tag := feed.TagFromLink(e)
		if tag == "" {
			continue
		}
		if updateStyleDominant && !updateStyleRE.MatchString(tag) {
			continue
		}
		v, ok := h.Filters.SanitizeVersion(tag, "", h.FixLetterPost)
		if !ok {
			continue
		}
		isSemver := len(v.Release) >= 2
		if seenSemver && !isSemver {
			continue
		}
		cand := &release.Release{Version: v, TagName: tag, TagDate: e.Updated, Type: release.TypeFeed}
		if ret != nil && e.Updated.Before(ret.TagDate.Add(-30*24*time.Hour)) {
			break
		}
		if isSemver {
			if seenSemver && !cand.Newer(ret) {
				continue
			}
			seenSemver = true
		}

		if formalRel, ok := h.lookupFormalRelease(ctx, tag); ok {
			newRet, accepted := h.applyFormalRelease(ret, formalRel, v, release.TypeFeed)
			if accepted {
				ret = newRet
				holder.Logger.Printf("Selected version as current selection: %s", v)
			}
			continue
		}
		if h.Filters.HavingAsset == "" && (ret == nil || cand.Newer(ret)) {
			ret = cand
			holder.Logger.Printf("Selected version as current selection: %s", v)
		}
	}
	recent := ret != nil && !ret.TagDate.IsZero() && time.Since(ret.TagDate) < 365*24*time.Hour
	return ret, recent, nil
}

func (h *Holder) checkRename(ctx context.Context) (string, bool) {
	owner, name := h.ownerRepo()
	repo, _, err := h.rest.Repositories.Get(ctx, owner, name)
	if err != nil || repo == nil {
		return "", false
	}
	canonical := repo.GetFullName()
	if canonical != "" && canonical != h.Repo {
		return canonical, true
	}
	return "", false
}
