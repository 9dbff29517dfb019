package lastversion

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dvershinin/lastversion-sub000/pkg/factory"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// Result is what Latest returns: the selected release plus orchestrator-
// level bookkeeping the CLI needs for exit codes and freshness warnings.
type Result struct {
	Release *release.Release

	// Stale is set when the network path failed and this Result was served
	// from an expired cache entry (§4.3 "Stale-on-error fallback").
	Stale bool
}

// DefaultCacheDir returns the platform cache directory this library uses
// when Options.CacheDir is empty.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lastversion")
}

func cacheDir(opts Options) string {
	if opts.CacheDir != "" {
		return opts.CacheDir
	}
	return DefaultCacheDir()
}

// Latest resolves the latest release for input (a URL, "owner/name" slug,
// bare project name, or adapter-specific repo string), per §2's system
// overview: dispatch via pkg/factory, run the adapter's selection
// algorithm, and apply the result cache and stale-on-error fallback of
// §4.3.
func Latest(ctx context.Context, input string, opts Options) (*Result, error) {
	dir := cacheDir(opts)
	key := resultCacheKey(input, opts)

	var rc *resultCache
	if opts.UseCache {
		var err error
		rc, err = newResultCache(dir, opts.effectiveTTL())
		if err != nil {
			holder.Logger.Printf("warning: result cache unavailable: %v", err)
			rc = nil
		} else if !opts.NoCache {
			if r, ok := rc.get(key); ok {
				return &Result{Release: r}, nil
			}
		}
	}

	r, err := resolve(ctx, input, opts, dir)
	if err != nil {
		if rc != nil {
			if stale, ok := rc.getStale(key); ok {
				holder.Logger.Printf("warning: %v; serving stale cached release %s", err, stale.TagName)
				return &Result{Release: stale, Stale: true}, nil
			}
		}
		return nil, err
	}

	if rc != nil && r != nil {
		if serr := rc.set(key, r); serr != nil {
			holder.Logger.Printf("warning: failed to write result cache: %v", serr)
		}
	}
	return &Result{Release: r}, nil
}

// resolve runs the live adapter path with no cache involvement: dispatch,
// filter installation, GetLatest, and asset/license/readme enrichment.
func resolve(ctx context.Context, input string, opts Options, dir string) (*release.Release, error) {
	h, err := factory.New(ctx, input, factory.Options{At: opts.At, CacheDir: dir})
	if err != nil {
		return nil, err
	}

	if fs, ok := h.(holder.FilterSetter); ok {
		f := holder.Filters{
			Only:        opts.Only,
			Exclude:     opts.Exclude,
			HavingAsset: opts.HavingAsset,
			Even:        opts.Even,
			Formal:      opts.Formal,
		}
		// A known-repo override (e.g. nginx's stable/mainline branch
		// regexes) is installed on the holder at construction time;
		// preserve it here instead of wiping it with the zero value.
		if fg, ok := h.(holder.FilterGetter); ok {
			existing := fg.CurrentFilters()
			if f.Only == "" {
				f.Only = existing.Only
			}
			f.Branches = existing.Branches
		}
		fs.SetFilters(f)
	}

	r, err := h.GetLatest(ctx, opts.PreOk, opts.Major)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	r.SourceURL = h.ReleaseDownloadURL(r, opts.ShortURLs)
	if lp, ok := h.(holder.LicenseProvider); ok {
		if lic, lerr := lp.RepoLicense(ctx); lerr == nil {
			r.License = lic
		}
	}
	if rp, ok := h.(holder.ReadmeProvider); ok {
		if readme, rerr := rp.RepoReadme(ctx); rerr == nil {
			r.Readme = readme
		}
	}
	return r, nil
}
