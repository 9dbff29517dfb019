package httpx

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// ErrCredentials is the §7 "Credentials" taxonomy item: the adapter got a
// 401, or a 403 after its rate-limit retries were exhausted. RetryingClient
// returns it wrapped with the response status; callers match it with
// errors.Is so the CLI can map it to exit code 4.
var ErrCredentials = errors.New("httpx: credentials rejected")

// WithAuthToken sets the Header: Value pair on every outgoing request. GitHub
// and Gitea use it as "Authorization: token <token>"; GitLab uses the same
// type with its "PRIVATE-TOKEN" header.
type WithAuthToken struct {
	BasicClient
	Header string // e.g. "Authorization" or "PRIVATE-TOKEN"
	Value  string // pre-formatted, e.g. "token abc123"
}

var _ BasicClient = &WithAuthToken{}

func (c *WithAuthToken) Do(req *http.Request) (*http.Response, error) {
	if c.Value != "" {
		req.Header.Set(c.Header, c.Value)
	}
	return c.BasicClient.Do(req)
}

// RetryingClient retries transport-level errors (DNS, connect, timeout) up
// to MaxRetries times with exponential backoff, and applies the §4.2 403
// rate-limit policy: if the response carries X-RateLimit-Remaining: 0 and a
// reset time within 5 minutes, sleep until reset+1s and retry, up to
// MaxRateLimitRetries consecutive times. A 401 is translated to
// ErrCredentials; a 403 that exhausts rate-limit retries also becomes
// ErrCredentials; a 403 without rate-limit headers passes through untouched.
type RetryingClient struct {
	BasicClient
	MaxRetries          int
	MaxRateLimitRetries  int
	Backoff              func(attempt int) time.Duration
	Sleep                func(time.Duration)
}

var _ BasicClient = &RetryingClient{}

func defaultBackoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * 200 * time.Millisecond
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}

// NewRetryingClient returns a RetryingClient with the §4.2 defaults: 5
// transport retries, 3 consecutive rate-limit retries.
func NewRetryingClient(inner BasicClient) *RetryingClient {
	return &RetryingClient{
		BasicClient:         inner,
		MaxRetries:          5,
		MaxRateLimitRetries: 3,
		Backoff:             defaultBackoff,
		Sleep:               time.Sleep,
	}
}

func (c *RetryingClient) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		resp, err = c.BasicClient.Do(req)
		if err == nil {
			break
		}
		if attempt == c.MaxRetries {
			return nil, err
		}
		c.Sleep(c.Backoff(attempt))
	}
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		return nil, errors.Wrap(ErrCredentials, "401 Unauthorized")
	}
	if resp.StatusCode == http.StatusForbidden {
		return c.handleForbidden(req, resp, 0)
	}
	return resp, nil
}

func (c *RetryingClient) handleForbidden(req *http.Request, resp *http.Response, rateLimitAttempt int) (*http.Response, error) {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	resetHdr := resp.Header.Get("X-RateLimit-Reset")
	if remaining != "0" || resetHdr == "" {
		return resp, nil // not rate-limiting: pass through untouched, per §4.2
	}
	if rateLimitAttempt >= c.MaxRateLimitRetries {
		drain(resp)
		return nil, errors.Wrap(ErrCredentials, "403 rate limit exhausted")
	}
	resetUnix, err := strconv.ParseInt(resetHdr, 10, 64)
	if err != nil {
		drain(resp)
		return resp, nil
	}
	resetAt := time.Unix(resetUnix, 0)
	if time.Until(resetAt) > 5*time.Minute {
		return resp, nil // beyond the policy's wait window: surface as-is
	}
	drain(resp)
	wait := time.Until(resetAt) + time.Second
	if wait > 0 {
		c.Sleep(wait)
	}
	resp2, err := c.BasicClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp2.StatusCode == http.StatusForbidden {
		return c.handleForbidden(req, resp2, rateLimitAttempt+1)
	}
	return resp2, nil
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
