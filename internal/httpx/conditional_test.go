package httpx

import (
	"net/http"
	"testing"
	"time"

	"github.com/dvershinin/lastversion-sub000/internal/cache"
	"github.com/dvershinin/lastversion-sub000/internal/httpx/httpxtest"
)

func TestConditionalCachedClientRevalidatesWithETag(t *testing.T) {
	h1 := http.Header{}
	h1.Set("ETag", `"v1"`)
	mock := &httpxtest.MockClient{
		SkipURLValidation: true,
		Calls: []httpxtest.Call{
			{Method: "GET", URL: "http://example.com", Response: &http.Response{StatusCode: http.StatusOK, Header: h1, Body: httpxtest.Body("body-v1")}},
			{Method: "GET", URL: "http://example.com", Response: &http.Response{StatusCode: http.StatusNotModified, Header: http.Header{}, Body: httpxtest.Body("")}},
		},
	}
	c := NewConditionalCachedClient(mock, &cache.CoalescingMemoryCache{})

	resp1, err := c.Do(httpxtest.Call{URL: "http://example.com"}.Request())
	if err != nil {
		t.Fatalf("first Do: %v", err)
	}
	if resp1.StatusCode != http.StatusOK {
		t.Fatalf("first StatusCode = %d, want 200", resp1.StatusCode)
	}

	resp2, err := c.Do(httpxtest.Call{URL: "http://example.com"}.Request())
	if err != nil {
		t.Fatalf("second Do: %v", err)
	}
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("second StatusCode = %d, want 200 (304 resolved from cache)", resp2.StatusCode)
	}
	if mock.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2 (revalidation always issues a request once stale)", mock.CallCount())
	}
}

func TestConditionalCachedClientFreshEntrySkipsRequest(t *testing.T) {
	h := http.Header{}
	h.Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	mock := &httpxtest.MockClient{
		SkipURLValidation: true,
		Calls: []httpxtest.Call{
			{Method: "GET", URL: "http://example.com", Response: &http.Response{StatusCode: http.StatusOK, Header: h, Body: httpxtest.Body("fresh")}},
		},
	}
	c := NewConditionalCachedClient(mock, &cache.CoalescingMemoryCache{})
	if _, err := c.Do(httpxtest.Call{URL: "http://example.com"}.Request()); err != nil {
		t.Fatalf("first Do: %v", err)
	}
	if _, err := c.Do(httpxtest.Call{URL: "http://example.com"}.Request()); err != nil {
		t.Fatalf("second Do: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1 (Expires in the future ⇒ no second request)", mock.CallCount())
	}
}
