package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/lock"
)

// entry is the on-disk envelope for one cached value: the caller's raw byte
// payload (encoding/json base64-encodes a []byte automatically) plus the
// bookkeeping the release cache and HTTP cache both need (§3 "Release cache
// entry", §4.3 cleanup).
type entry struct {
	Value     []byte    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileCache is a TTL-aware, on-disk Cache keyed by an arbitrary string (the
// caller is responsible for building a stable key, e.g. a request URL or a
// release-cache composite key — see pkg/lastversion's cache key builder).
// Every fetch function given to Set/GetOrSet must return a []byte (the
// caller's own serialization of its value, exactly as
// ConditionalCachedClient already does with an HTTP response) — that is
// the one value type FileCache can round-trip without losing fidelity
// under JSON re-encoding. Writes are
// serialized per-key through a PID-based directory lock
// (internal/lock) so concurrent processes never corrupt an entry; readers
// never block.
type FileCache struct {
	dir        string
	ttl        time.Duration
	lockDir    string
	maxAge     time.Duration // cleanup-sentinel max age
	maxBytes   int64
	lockWait   time.Duration
	marshal    func(any) ([]byte, error)
	unmarshal  func([]byte, any) error
	nowFunc    func() time.Time
	cleanupRun bool
}

// Option configures a FileCache.
type Option func(*FileCache)

// WithTTL sets the time-to-live applied to every entry written via Set (the
// fetch function has no way to set an expiry of its own). Zero means
// entries never expire on their own (only explicit Del removes them).
func WithTTL(d time.Duration) Option {
	return func(f *FileCache) { f.ttl = d }
}

// WithCleanupMaxAge sets how long the ".last_cleanup" sentinel may go
// unrefreshed before NewFileCache walks the directory evicting expired and
// (if over WithMaxBytes) oldest entries (§4.3 Cleanup).
func WithCleanupMaxAge(d time.Duration) Option {
	return func(f *FileCache) { f.maxAge = d }
}

// WithMaxBytes caps the total on-disk size of cache entries; cleanup evicts
// oldest-first until the cache is back under the cap.
func WithMaxBytes(n int64) Option {
	return func(f *FileCache) { f.maxBytes = n }
}

// WithLockTimeout overrides the default ~5s PID-lock acquisition timeout.
func WithLockTimeout(d time.Duration) Option {
	return func(f *FileCache) { f.lockWait = d }
}

// NewFileCache creates (if needed) dir and its ".locks" child lock directory, and
// runs cleanup if the sentinel is stale.
func NewFileCache(dir string, opts ...Option) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating cache dir %s", dir)
	}
	f := &FileCache{
		dir:      dir,
		lockDir:  filepath.Join(dir, ".locks"),
		maxAge:   24 * time.Hour,
		lockWait: 5 * time.Second,
		nowFunc:  time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	if err := os.MkdirAll(f.lockDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating lock dir %s", f.lockDir)
	}
	f.maybeCleanup()
	return f, nil
}

func (f *FileCache) keyPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:])+".json")
}

func (f *FileCache) lockFor(key string) *lock.Lock {
	sum := sha256.Sum256([]byte(key))
	return lock.New(filepath.Join(f.lockDir, hex.EncodeToString(sum[:])))
}

func (f *FileCache) read(key string) (*entry, error) {
	b, err := os.ReadFile(f.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, ErrNotExist // corrupt entry: treat as absent, never fatal
	}
	return &e, nil
}

func keyString(key any) (string, error) {
	s, ok := key.(string)
	if !ok {
		return "", errors.Errorf("cache: key %v is not a string", key)
	}
	return s, nil
}

// Get returns the cached value for key, or ErrNotExist if absent or expired.
func (f *FileCache) Get(key any) (any, error) {
	k, err := keyString(key)
	if err != nil {
		return nil, err
	}
	e, err := f.read(k)
	if err != nil {
		return nil, err
	}
	if !e.ExpiresAt.IsZero() && f.nowFunc().After(e.ExpiresAt) {
		return nil, ErrNotExist
	}
	return e.Value, nil
}

// GetStale returns the cached value for key regardless of expiry — the
// ignore_expiry=true lookup the orchestrator performs on a transient-network
// error (§4.3 "Stale-on-error fallback").
func (f *FileCache) GetStale(key any) (any, error) {
	k, err := keyString(key)
	if err != nil {
		return nil, err
	}
	e, err := f.read(k)
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

// Set computes fetch() and stores it, overwriting any existing entry.
func (f *FileCache) Set(key any, fetch func() (any, error)) error {
	_, err := f.getOrSet(key, fetch, true)
	return err
}

// GetOrSet returns the cached value, computing and storing it via fetch if
// absent or expired.
func (f *FileCache) GetOrSet(key any, fetch func() (any, error)) (any, error) {
	return f.getOrSet(key, fetch, false)
}

func (f *FileCache) getOrSet(key any, fetch func() (any, error), force bool) (any, error) {
	k, err := keyString(key)
	if err != nil {
		return nil, err
	}
	if !force {
		if v, err := f.Get(k); err == nil {
			return v, nil
		} else if err != ErrNotExist {
			return nil, err
		}
	}
	val, err := fetch()
	if err != nil {
		return nil, err
	}
	raw, ok := val.([]byte)
	if !ok {
		return nil, errors.Errorf("cache: fetch returned %T, FileCache requires []byte", val)
	}
	now := f.nowFunc()
	e := entry{Value: raw, CreatedAt: now}
	if f.ttl > 0 {
		e.ExpiresAt = now.Add(f.ttl)
	}
	l := f.lockFor(k)
	if lerr := l.Acquire(f.lockWait); lerr != nil {
		// Per §4.2: cache writes must not fail the request on contention.
		return raw, nil
	}
	defer l.Release()
	b, merr := json.Marshal(e)
	if merr != nil {
		return raw, nil
	}
	_ = os.WriteFile(f.keyPath(k), b, 0o644)
	return raw, nil
}

// Del removes the entry for key.
func (f *FileCache) Del(key any) {
	k, err := keyString(key)
	if err != nil {
		return
	}
	os.Remove(f.keyPath(k))
}

// Clear removes every entry in the cache directory.
func (f *FileCache) Clear() {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return
	}
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		os.Remove(filepath.Join(f.dir, de.Name()))
	}
}

var _ Cache = &FileCache{}

func (f *FileCache) sentinelPath() string {
	return filepath.Join(f.dir, ".last_cleanup")
}

// maybeCleanup is the §4.3 "Cleanup" routine: best-effort. I/O errors are
// swallowed: they are neither returned nor logged, and no caller logs
// around this call.
func (f *FileCache) maybeCleanup() {
	info, err := os.Stat(f.sentinelPath())
	if err == nil && f.nowFunc().Sub(info.ModTime()) < f.maxAge {
		return
	}
	f.cleanupRun = true
	type fileInfo struct {
		path    string
		size    int64
		created time.Time
	}
	var files []fileInfo
	var total int64
	dirEntries, err := os.ReadDir(f.dir)
	if err != nil {
		return
	}
	now := f.nowFunc()
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		path := filepath.Join(f.dir, de.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(b, &e); err != nil {
			os.Remove(path)
			continue
		}
		if !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt) {
			os.Remove(path)
			continue
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path, fi.Size(), e.CreatedAt})
		total += fi.Size()
	}
	if f.maxBytes > 0 && total > f.maxBytes {
		sort.Slice(files, func(i, j int) bool { return files[i].created.Before(files[j].created) })
		for _, fi := range files {
			if total <= f.maxBytes {
				break
			}
			os.Remove(fi.path)
			total -= fi.size
		}
	}
	_ = os.WriteFile(f.sentinelPath(), []byte(fmt.Sprintf("%d", now.Unix())), 0o644)
}
