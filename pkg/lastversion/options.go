// Package lastversion implements the orchestrator (§6 "External Interfaces"):
// Latest() dispatches a project string to the matching pkg/factory holder,
// applies the two-level cache and stale-on-error fallback of §4.3, and
// shapes the result into the output forms the CLI prints.
package lastversion

import "time"

// Options mirrors the CLI flags of §6 that affect resolution, not just
// presentation. Zero value resolves the latest stable release with no
// filtering and no result caching.
type Options struct {
	At       string // forces one named adapter, bypassing dispatch (§4.5 step 2)
	CacheDir string // root of the on-disk cache; "" selects the platform default

	PreOk       bool
	Major       string
	Only        string
	Exclude     string
	HavingAsset string
	Even        bool
	Formal      bool

	// ShortURLs requests the adapter's shorter download-URL form where one
	// exists (§6 -su/--shorter-urls): the {ext} placeholder of the
	// download-URL template renders empty.
	ShortURLs bool

	// UseCache enables the result cache (§4.3: "TTL configurable (default
	// off...")). NoCache forces a live lookup even when UseCache is set,
	// matching the CLI's --no-cache flag taking precedence over config.
	UseCache bool
	NoCache  bool
	CacheTTL time.Duration // 0 with UseCache true means the §4.3 default of 3600s
}

// DefaultCacheTTL is applied when UseCache is true and CacheTTL is zero.
const DefaultCacheTTL = 3600 * time.Second

func (o Options) effectiveTTL() time.Duration {
	if o.CacheTTL > 0 {
		return o.CacheTTL
	}
	return DefaultCacheTTL
}
