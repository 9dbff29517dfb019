package holder

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/dvershinin/lastversion-sub000/internal/cache"
	"github.com/dvershinin/lastversion-sub000/internal/httpx"
)

// UserAgent is sent on every outgoing request, mirroring the teacher's own
// fixed identification string convention.
const UserAgent = "lastversion-go (+https://github.com/dvershinin/lastversion)"

// sessionCache is the process-wide in-memory layer shared by every adapter
// session NewSession builds: a CoalescingMemoryCache base so a repeated GET
// anywhere in this process — even across different repos in a bulk run —
// never touches disk a second time. PushScope/PopScope let a caller
// processing a batch of independent resolutions (cmd/lastversion's
// -i/--input loop) isolate one item's writes behind a fresh layer, mirroring
// how the teacher scopes a per-rebuild memory cache over a shared batch base
// (pkg/rebuild/rebuild/rebuildmany.go's Push/Pop around each RebuildOne).
var sessionCache = cache.NewHierarchicalCache(&cache.CoalescingMemoryCache{})

// PushScope starts a fresh memory-cache layer on top of sessionCache,
// scoping subsequent writes to the current batch item until PopScope
// discards it.
func PushScope() {
	sessionCache.Push(&cache.CoalescingMemoryCache{})
}

// PopScope discards the layer most recently added by PushScope.
func PopScope() {
	sessionCache.Pop()
}

// NewSession assembles the §4.2 HTTP Session for one adapter instance: an
// in-process memory cache (sessionCache) wrapping conditional ETag/Expires
// caching on top of retry/rate-limit handling on top of auth-header
// injection on top of user-agent tagging. cacheDir is a subdirectory of the
// shared on-disk cache root dedicated to this adapter's responses (so
// GitHub and GitLab entries, say, never collide).
func NewSession(cacheDir, authHeader, authValue string) (httpx.BasicClient, error) {
	base := httpx.BasicClient(http.DefaultClient)
	var withAuth httpx.BasicClient = &httpx.WithAuthToken{
		BasicClient: &httpx.WithUserAgent{BasicClient: base, UserAgent: UserAgent},
		Header:      authHeader,
		Value:       authValue,
	}
	if authHeader == "" {
		withAuth = &httpx.WithUserAgent{BasicClient: base, UserAgent: UserAgent}
	}
	retrying := httpx.NewRetryingClient(withAuth)
	fc, err := cache.NewFileCache(filepath.Join(cacheDir, "http"), cache.WithTTL(0), cache.WithLockTimeout(5*time.Second))
	if err != nil {
		return nil, err
	}
	conditional := httpx.NewConditionalCachedClient(retrying, fc)
	return httpx.NewCachedClient(conditional, sessionCache), nil
}

// Get issues a GET request through client and returns the raw *http.Response
// for the adapter to decode (JSON body, Atom feed, etc.). Callers are
// responsible for closing resp.Body.
func Get(client httpx.BasicClient, url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}
