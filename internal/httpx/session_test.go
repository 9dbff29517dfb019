package httpx

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/dvershinin/lastversion-sub000/internal/httpx/httpxtest"
)

func TestRetryingClientRetriesTransportErrors(t *testing.T) {
	mock := &httpxtest.MockClient{
		SkipURLValidation: true,
		Calls: []httpxtest.Call{
			{Method: "GET", URL: "http://example.com", Error: errTransient},
			{Method: "GET", URL: "http://example.com", Error: errTransient},
			{
				Method: "GET", URL: "http://example.com",
				Response: &http.Response{StatusCode: http.StatusOK, Body: httpxtest.Body("ok")},
			},
		},
	}
	c := NewRetryingClient(mock)
	c.Sleep = func(time.Duration) {} // no real sleeping in tests
	resp, err := c.Do(httpxtest.Call{URL: "http://example.com"}.Request())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if mock.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3 (2 failures + 1 success)", mock.CallCount())
	}
}

func TestRetryingClient401BecomesCredentialsError(t *testing.T) {
	mock := &httpxtest.MockClient{
		SkipURLValidation: true,
		Calls: []httpxtest.Call{
			{Method: "GET", URL: "http://example.com", Response: &http.Response{StatusCode: http.StatusUnauthorized, Body: httpxtest.Body("")}},
		},
	}
	c := NewRetryingClient(mock)
	_, err := c.Do(httpxtest.Call{URL: "http://example.com"}.Request())
	if !isCredentialsErr(err) {
		t.Errorf("Do error = %v, want wrapping ErrCredentials", err)
	}
}

func TestRetryingClientRateLimitWaitsAndRetries(t *testing.T) {
	resetAt := time.Now().Add(2 * time.Minute).Unix()
	mock := &httpxtest.MockClient{
		SkipURLValidation: true,
		Calls: []httpxtest.Call{
			{Method: "GET", URL: "http://example.com", Response: rateLimitedResponse(resetAt)},
			{Method: "GET", URL: "http://example.com", Response: &http.Response{StatusCode: http.StatusOK, Body: httpxtest.Body("ok")}},
		},
	}
	c := NewRetryingClient(mock)
	var slept time.Duration
	c.Sleep = func(d time.Duration) { slept = d }
	resp, err := c.Do(httpxtest.Call{URL: "http://example.com"}.Request())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200 after rate-limit wait+retry", resp.StatusCode)
	}
	if slept <= 0 {
		t.Errorf("expected a sleep before retrying, got %v", slept)
	}
}

func TestRetryingClient403WithoutRateLimitHeadersPassesThrough(t *testing.T) {
	mock := &httpxtest.MockClient{
		SkipURLValidation: true,
		Calls: []httpxtest.Call{
			{Method: "GET", URL: "http://example.com", Response: &http.Response{StatusCode: http.StatusForbidden, Header: http.Header{}, Body: httpxtest.Body("nope")}},
		},
	}
	c := NewRetryingClient(mock)
	resp, err := c.Do(httpxtest.Call{URL: "http://example.com"}.Request())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403 passed through untouched", resp.StatusCode)
	}
}

func rateLimitedResponse(resetUnix int64) *http.Response {
	h := http.Header{}
	h.Set("X-RateLimit-Remaining", "0")
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetUnix, 10))
	return &http.Response{StatusCode: http.StatusForbidden, Header: h, Body: httpxtest.Body("")}
}

func isCredentialsErr(err error) bool {
	return err != nil && (err == ErrCredentials || errorsIsWrap(err))
}

func errorsIsWrap(err error) bool {
	type causer interface{ Cause() error }
	for err != nil {
		if err == ErrCredentials {
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

var errTransient = &transientErr{}

type transientErr struct{}

func (e *transientErr) Error() string { return "transient: connection refused" }
