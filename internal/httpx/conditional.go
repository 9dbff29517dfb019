package httpx

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/cache"
)

// condEntry is what ConditionalCachedClient stores per URL: the raw response
// bytes (serialized via http.Response.Write) plus the validators the §4.2
// conditional-caching contract needs.
type condEntry struct {
	Response  []byte    `json:"response"`
	ETag      string    `json:"etag,omitempty"`
	Expires   time.Time `json:"expires,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ConditionalCachedClient is a BasicClient that honors ETag/Expires the way
// §4.2 specifies: a fresh (unexpired) cache entry is returned with no
// request at all; a stale entry is revalidated with If-None-Match, and a 304
// response reuses the cached body. GET/HEAD only; other methods pass
// through.
type ConditionalCachedClient struct {
	BasicClient
	Cache cache.Cache
	Now   func() time.Time
}

var _ BasicClient = &ConditionalCachedClient{}

// NewConditionalCachedClient wraps client with ch for conditional GET/HEAD
// caching.
func NewConditionalCachedClient(client BasicClient, ch cache.Cache) *ConditionalCachedClient {
	return &ConditionalCachedClient{BasicClient: client, Cache: ch, Now: time.Now}
}

func (c *ConditionalCachedClient) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return c.BasicClient.Do(req)
	}
	key := req.URL.String()
	var prior *condEntry
	if raw, err := c.Cache.Get(key); err == nil {
		if e, ok := decodeCondEntry(raw); ok {
			prior = e
			if !e.Expires.IsZero() && c.Now().Before(e.Expires) {
				return readCondEntry(e, req)
			}
		}
	}
	if prior != nil && prior.ETag != "" {
		req.Header.Set("If-None-Match", prior.ETag)
	}
	resp, err := c.BasicClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotModified && prior != nil {
		drain(resp)
		prior.FetchedAt = c.Now()
		prior.Expires = parseExpires(resp.Header, c.Now())
		c.store(key, prior)
		return readCondEntry(prior, req)
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "reading response body for cache")
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	buf := new(bytes.Buffer)
	if err := resp.Write(buf); err != nil {
		return nil, errors.Wrap(err, "serializing response for cache")
	}
	entry := &condEntry{
		Response:  buf.Bytes(),
		ETag:      resp.Header.Get("ETag"),
		Expires:   parseExpires(resp.Header, c.Now()),
		FetchedAt: c.Now(),
	}
	c.store(key, entry)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (c *ConditionalCachedClient) store(key string, e *condEntry) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	c.Cache.Set(key, func() (any, error) { return b, nil })
}

func decodeCondEntry(raw any) (*condEntry, bool) {
	b, ok := raw.([]byte)
	if !ok {
		return nil, false
	}
	var e condEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, false
	}
	return &e, true
}

func readCondEntry(e *condEntry, req *http.Request) (*http.Response, error) {
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(e.Response)), req)
}

// parseExpires honors an explicit Expires header, else a Cache-Control
// max-age, else treats the response as immediately stale (always
// revalidated on the next request, which is the safe default).
func parseExpires(h http.Header, now time.Time) time.Time {
	if exp := h.Get("Expires"); exp != "" {
		if t, err := http.ParseTime(exp); err == nil {
			return t
		}
	}
	for _, d := range strings.Split(h.Get("Cache-Control"), ",") {
		d = strings.TrimSpace(d)
		if strings.HasPrefix(d, "max-age=") {
			if n, err := strconv.Atoi(strings.TrimPrefix(d, "max-age=")); err == nil {
				return now.Add(time.Duration(n) * time.Second)
			}
		}
	}
	return time.Time{}
}
