package github

import (
	"context"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/shurcooL/githubv4"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// tagSearchLookback bounds the deep tag search: once a page's oldest
// commit date falls further back than this, scanning stops (§4.6 step 5).
const tagSearchLookback = 365 * 24 * time.Hour

// deepTagSearch implements §4.6 step 5: when the feed and formal-release
// passes haven't turned up a usable candidate, walk the repository's tags
// directly — via GraphQL (commit-date sorted, cursor paginated) when a
// token is configured, else via paginated REST tags plus a per-tag commit
// lookup for its date.
func (h *Holder) deepTagSearch(ctx context.Context, ret *release.Release) (*release.Release, error) {
	if h.Token != "" {
		return h.deepTagSearchGraphQL(ctx, ret)
	}
	holder.Logger.Printf("Falling back to tags API for %s", h.Repo)
	return h.deepTagSearchREST(ctx, ret)
}

type tagRefQuery struct {
	Repository struct {
		Refs struct {
			Nodes []struct {
				Name   githubv4.String
				Target struct {
					Commit struct {
						CommittedDate githubv4.DateTime
					} `graphql:"... on Commit"`
				}
			}
			PageInfo struct {
				HasNextPage githubv4.Boolean
				EndCursor   githubv4.String
			}
		} `graphql:"refs(refPrefix: \"refs/tags/\", first: 100, after: $cursor, orderBy: {field: TAG_COMMIT_DATE, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

func (h *Holder) deepTagSearchGraphQL(ctx context.Context, ret *release.Release) (*release.Release, error) {
	owner, name := h.ownerRepo()
	var cursor githubv4.String
	hasCursor := false

	for {
		var q tagRefQuery
		vars := map[string]interface{}{
			"owner":  githubv4.String(owner),
			"name":   githubv4.String(name),
			"cursor": (*githubv4.String)(nil),
		}
		if hasCursor {
			vars["cursor"] = githubv4.NewString(cursor)
		}
		if err := h.graphql.Query(ctx, &q, vars); err != nil {
			return ret, err
		}

		stop := false
		for _, n := range q.Repository.Refs.Nodes {
			tag := string(n.Name)
			date := n.Target.Commit.CommittedDate.Time
			if time.Since(date) > tagSearchLookback && ret != nil {
				stop = true
				break
			}
			v, ok := h.Filters.SanitizeVersion(tag, "", h.FixLetterPost)
			if !ok {
				continue
			}
			if formalRel, fok := h.lookupFormalRelease(ctx, tag); fok {
				if newRet, accepted := h.applyFormalRelease(ret, formalRel, v, release.TypeGraphQL); accepted {
					ret = newRet
				}
				continue
			}
			if h.Filters.HavingAsset != "" {
				continue
			}
			cand := &release.Release{Version: v, TagName: tag, TagDate: date, Type: release.TypeGraphQL}
			if cand.Newer(ret) {
				ret = cand
			}
		}
		if stop || !bool(q.Repository.Refs.PageInfo.HasNextPage) {
			break
		}
		cursor = q.Repository.Refs.PageInfo.EndCursor
		hasCursor = true
	}
	return ret, nil
}

func (h *Holder) deepTagSearchREST(ctx context.Context, ret *release.Release) (*release.Release, error) {
	owner, name := h.ownerRepo()
	opts := &github.ListOptions{PerPage: 100}
	for {
		tags, resp, err := h.rest.Repositories.ListTags(ctx, owner, name, opts)
		if err != nil {
			return ret, err
		}
		for _, t := range tags {
			tagName := t.GetName()
			v, ok := h.Filters.SanitizeVersion(tagName, "", h.FixLetterPost)
			if !ok {
				continue
			}
			var date time.Time
			if commit := t.GetCommit(); commit != nil && commit.SHA != nil {
				if rc, _, err := h.rest.Repositories.GetCommit(ctx, owner, name, commit.GetSHA(), nil); err == nil && rc.GetCommit() != nil && rc.GetCommit().GetCommitter() != nil {
					date = rc.GetCommit().GetCommitter().GetDate().Time
				}
			}
			if formalRel, fok := h.lookupFormalRelease(ctx, tagName); fok {
				if newRet, accepted := h.applyFormalRelease(ret, formalRel, v, release.TypeTag); accepted {
					ret = newRet
				}
				continue
			}
			if h.Filters.HavingAsset != "" {
				continue
			}
			cand := &release.Release{Version: v, TagName: tagName, TagDate: date, Type: release.TypeTag}
			if cand.Newer(ret) {
				ret = cand
			}
		}
		if !date(ret).IsZero() && time.Since(date(ret)) > tagSearchLookback {
			break
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return ret, nil
}

func date(r *release.Release) time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.TagDate
}
