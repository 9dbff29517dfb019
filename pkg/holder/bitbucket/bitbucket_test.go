package bitbucket

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
)

type scriptedClient struct {
	responses map[string]struct {
		status int
		body   string
	}
}

func (s *scriptedClient) Do(req *http.Request) (*http.Response, error) {
	for suffix, r := range s.responses {
		if strings.Contains(req.URL.String(), suffix) {
			return &http.Response{StatusCode: r.status, Body: readCloser{strings.NewReader(r.body)}, Header: make(http.Header)}, nil
		}
	}
	return &http.Response{StatusCode: 404, Body: readCloser{strings.NewReader("")}, Header: make(http.Header)}, nil
}

type readCloser struct{ *strings.Reader }

func (r readCloser) Close() error { return nil }

func TestGetLatestFallsBackToTagsWhenDownloadsEmpty(t *testing.T) {
	downloads := `{"values": []}`
	tags := `{"values": [
		{"name": "v2.0.0", "target": {"date": "2024-06-01T00:00:00Z"}},
		{"name": "v1.0.0", "target": {"date": "2023-01-01T00:00:00Z"}}
	], "next": ""}`
	h := &Holder{
		Base: holder.Base{Repo: "foo/bar"},
		Client: &scriptedClient{responses: map[string]struct {
			status int
			body   string
		}{
			"/downloads": {200, downloads},
			"/refs/tags": {200, tags},
		}},
	}
	r, err := h.GetLatest(context.Background(), false, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r == nil || r.Version.String() != "2.0.0" {
		t.Fatalf("got %v, want 2.0.0", r)
	}
}

func TestGetLatestUsesDownloadsWhenPresent(t *testing.T) {
	downloads := `{"values": [{"name": "proj-1.5.0.tar.gz", "links": {"self": {"href": "https://x/proj-1.5.0.tar.gz"}}}]}`
	h := &Holder{
		Base: holder.Base{Repo: "foo/bar"},
		Client: &scriptedClient{responses: map[string]struct {
			status int
			body   string
		}{
			"/downloads": {200, downloads},
		}},
	}
	r, err := h.GetLatest(context.Background(), false, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r == nil || r.Version.String() != "1.5.0" {
		t.Fatalf("got %v, want 1.5.0", r)
	}
}
