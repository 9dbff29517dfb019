// Package httpx provides a minimal BasicClient abstraction and the
// decorators every holder composes over it: user-agent tagging, auth-token
// injection, retry/rate-limit handling (session.go), conditional
// ETag/Expires caching (conditional.go), and an outer in-memory response
// cache (CachedClient below) — the §4.2 HTTP Session.
package httpx

import (
	"bufio"
	"bytes"
	"errors"
	"net/http"

	"github.com/dvershinin/lastversion-sub000/internal/cache"
)

// BasicClient is a simpler http.Client that only requires a Do method.
type BasicClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ BasicClient = http.DefaultClient

// WithUserAgent is a basic HTTP client that adds a User-Agent header.
type WithUserAgent struct {
	BasicClient
	UserAgent string
}

var _ BasicClient = &WithUserAgent{}

// Do adds the User-Agent header and sends the request.
func (c *WithUserAgent) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.UserAgent)
	return c.BasicClient.Do(req)
}

// CachedClient is a BasicClient that memoizes GET/HEAD responses in ch
// unconditionally (no ETag revalidation, no expiry) for as long as ch keeps
// the entry. It is meant to wrap an already disk-backed, conditionally
// cached client (see ConditionalCachedClient) with a cheap in-process
// layer: a repeat request for a URL already seen this process skips the
// conditional-cache disk read and any revalidation round trip entirely.
type CachedClient struct {
	BasicClient
	ch cache.Cache
}

// NewCachedClient returns a new CachedClient.
func NewCachedClient(client BasicClient, ch cache.Cache) *CachedClient {
	return &CachedClient{client, ch}
}

// Do attempts to fetch from cache (if applicable) or fulfills the request
// using the underlying client, coalescing concurrent callers for the same
// key when ch does (see cache.CoalescingMemoryCache).
func (cc *CachedClient) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return cc.BasicClient.Do(req)
	}
	respBytes, err := cc.ch.GetOrSet(req.URL.String(), func() (any, error) {
		resp, err := cc.BasicClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, errors.New(resp.Status)
		}
		defer resp.Body.Close()
		buf := new(bytes.Buffer)
		if err := resp.Write(buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(respBytes.([]byte))), req)
}

var _ BasicClient = &CachedClient{}
