package lastversion

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/cache"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
	"github.com/dvershinin/lastversion-sub000/pkg/version"
)

// resultCacheKey builds the §4.3 composite key
// "(repo, pre_ok, major, only, at, having_asset, exclude, even, formal)".
// FileCache hashes whatever string it's given, so a delimited join is
// enough; the delimiter only needs to keep fields from colliding across a
// boundary, which \x1f (not a legal tag/filter character) guarantees.
func resultCacheKey(repo string, opts Options) string {
	fields := []string{
		repo,
		strconv.FormatBool(opts.PreOk),
		opts.Major,
		opts.Only,
		opts.At,
		opts.HavingAsset,
		opts.Exclude,
		strconv.FormatBool(opts.Even),
		strconv.FormatBool(opts.Formal),
	}
	return strings.Join(fields, "\x1f")
}

// cacheRecord is the on-disk shape of one result-cache entry. Version is
// kept as its canonical string form rather than the full *version.Version
// struct, per §4.3 "converting the stored string version back to a Version
// object" — round-tripping through String()/Parse is exactly what the spec
// describes, and it sidesteps Version's unexported bookkeeping fields,
// which JSON can't see anyway.
type cacheRecord struct {
	Version         string       `json:"version"`
	TagName         string       `json:"tag_name"`
	TagDate         time.Time    `json:"tag_date"`
	Type            string       `json:"type"`
	Assets          []asset      `json:"assets,omitempty"`
	License         string       `json:"license,omitempty"`
	Readme          string       `json:"readme,omitempty"`
	Changelog       string       `json:"changelog,omitempty"`
	SourceURL       string       `json:"source_url,omitempty"`
	From            string       `json:"from,omitempty"`
	SpecTag         string       `json:"spec_tag,omitempty"`
	SpecTagNoPrefix string       `json:"spec_tag_no_prefix,omitempty"`
	VPrefix         bool         `json:"v_prefix,omitempty"`
	Source          string       `json:"source,omitempty"`
}

type asset struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Label  string `json:"label,omitempty"`
	Digest string `json:"digest,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

func toRecord(r *release.Release) *cacheRecord {
	rec := &cacheRecord{
		TagName:         r.TagName,
		TagDate:         r.TagDate,
		Type:            string(r.Type),
		License:         r.License,
		Readme:          r.Readme,
		Changelog:       r.Changelog,
		SourceURL:       r.SourceURL,
		From:            r.From,
		SpecTag:         r.SpecTag,
		SpecTagNoPrefix: r.SpecTagNoPrefix,
		VPrefix:         r.VPrefix,
		Source:          r.Source,
	}
	if r.Version != nil {
		rec.Version = r.Version.String()
	}
	for _, a := range r.Assets {
		rec.Assets = append(rec.Assets, asset{Name: a.Name, URL: a.URL, Label: a.Label, Digest: a.Digest, Size: a.Size})
	}
	return rec
}

func fromRecord(rec *cacheRecord) (*release.Release, error) {
	r := &release.Release{
		TagName:         rec.TagName,
		TagDate:         rec.TagDate,
		Type:            release.Type(rec.Type),
		License:         rec.License,
		Readme:          rec.Readme,
		Changelog:       rec.Changelog,
		SourceURL:       rec.SourceURL,
		From:            rec.From,
		SpecTag:         rec.SpecTag,
		SpecTagNoPrefix: rec.SpecTagNoPrefix,
		VPrefix:         rec.VPrefix,
		Source:          rec.Source,
	}
	if rec.Version != "" {
		v, err := version.Parse(rec.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing cached version %q", rec.Version)
		}
		r.Version = v
	}
	for _, a := range rec.Assets {
		r.Assets = append(r.Assets, release.Asset{Name: a.Name, URL: a.URL, Label: a.Label, Digest: a.Digest, Size: a.Size})
	}
	return r, nil
}

// resultCache wraps internal/cache.FileCache with the JSON (de)serialization
// the generic []byte-valued Cache interface requires.
type resultCache struct {
	fc *cache.FileCache
}

func newResultCache(cacheDir string, ttl time.Duration) (*resultCache, error) {
	fc, err := cache.NewFileCache(filepath.Join(cacheDir, "release_cache"), cache.WithTTL(ttl))
	if err != nil {
		return nil, err
	}
	return &resultCache{fc: fc}, nil
}

func (c *resultCache) get(key string) (*release.Release, bool) {
	raw, err := c.fc.Get(key)
	if err != nil {
		return nil, false
	}
	return decodeCacheValue(raw)
}

// getStale implements §4.3's "ignore_expiry=true" stale-on-error lookup.
func (c *resultCache) getStale(key string) (*release.Release, bool) {
	raw, err := c.fc.GetStale(key)
	if err != nil {
		return nil, false
	}
	return decodeCacheValue(raw)
}

func decodeCacheValue(raw any) (*release.Release, bool) {
	b, ok := raw.([]byte)
	if !ok {
		return nil, false
	}
	var rec cacheRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, false
	}
	r, err := fromRecord(&rec)
	if err != nil {
		return nil, false
	}
	return r, true
}

func (c *resultCache) set(key string, r *release.Release) error {
	return c.fc.Set(key, func() (any, error) {
		return json.Marshal(toRecord(r))
	})
}
