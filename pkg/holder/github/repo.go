package github

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/dvershinin/lastversion-sub000/internal/cache"
)

// nameCacheTTL is how long a resolved one-word repo name is trusted before
// ResolveOneWordRepo re-queries the GitHub search API (§4.6 "Repo
// resolution when input is one word").
const nameCacheTTL = 30 * 24 * time.Hour

// ResolveOneWordRepo turns a bare project name like "redis" into an
// "owner/name" slug, in the order: a 30-day on-disk name cache; the
// "<name>/<name>" self-named-repo convention (e.g. "redis/redis"); and
// finally the GitHub search API ranked by star count. An empty result is
// cached too, so a name that resolves to nothing doesn't re-hit the search
// API on every run.
func (h *Holder) ResolveOneWordRepo(ctx context.Context, name, cacheDir string) (string, error) {
	nc, err := cache.NewFileCache(filepath.Join(cacheDir, "names"), cache.WithTTL(nameCacheTTL))
	if err != nil {
		return "", err
	}
	if v, err := nc.Get(name); err == nil {
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
	}

	resolved, err := h.resolveOneWordRepoUncached(ctx, name)
	if err != nil {
		return "", err
	}
	_ = nc.Set(name, func() (any, error) { return []byte(resolved), nil })
	return resolved, nil
}

func (h *Holder) resolveOneWordRepoUncached(ctx context.Context, name string) (string, error) {
	if selfNamed := name + "/" + name; h.repoExists(ctx, selfNamed) {
		return selfNamed, nil
	}

	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: 1},
	}
	result, _, err := h.rest.Search.Repositories(ctx, name+" in:name", opts)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Repositories) == 0 {
		return "", nil
	}
	return result.Repositories[0].GetFullName(), nil
}

func (h *Holder) repoExists(ctx context.Context, slug string) bool {
	owner, name := "", slug
	for i := len(slug) - 1; i >= 0; i-- {
		if slug[i] == '/' {
			owner, name = slug[:i], slug[i+1:]
			break
		}
	}
	if owner == "" {
		return false
	}
	_, resp, err := h.rest.Repositories.Get(ctx, owner, name)
	return err == nil && resp != nil && resp.StatusCode == 200
}
