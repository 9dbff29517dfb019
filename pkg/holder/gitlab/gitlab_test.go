package gitlab

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
)

type scriptedClient struct {
	responses map[string]string
}

func (s *scriptedClient) Do(req *http.Request) (*http.Response, error) {
	for suffix, body := range s.responses {
		if strings.HasSuffix(req.URL.Path, suffix) {
			return &http.Response{StatusCode: 200, Body: readCloser{strings.NewReader(body)}, Header: make(http.Header)}, nil
		}
	}
	return &http.Response{StatusCode: 404, Body: readCloser{strings.NewReader("")}, Header: make(http.Header)}, nil
}

type readCloser struct{ *strings.Reader }

func (r readCloser) Close() error { return nil }

func TestGetLatestPicksHighestTagAndOverlaysRelease(t *testing.T) {
	tags := `[
		{"name": "v1.2.0", "commit": {"committed_date": "2024-05-01T00:00:00Z"}},
		{"name": "v1.1.0", "commit": {"committed_date": "2024-01-01T00:00:00Z"}}
	]`
	rel := `{"tag_name": "v1.2.0", "released_at": "2024-05-02T00:00:00Z", "assets": {"links": [{"name": "pkg.tar.gz", "url": "https://example.com/pkg.tar.gz"}]}}`
	h := &Holder{
		Base: holder.Base{Repo: "foo/bar"},
		Client: &scriptedClient{responses: map[string]string{
			"/repository/tags":      tags,
			"/releases/v1.2.0":      rel,
		}},
	}
	r, err := h.GetLatest(context.Background(), false, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r == nil || r.Version.String() != "1.2.0" {
		t.Fatalf("got %v, want 1.2.0", r)
	}
	if len(r.Assets) != 1 || r.Assets[0].Name != "pkg.tar.gz" {
		t.Errorf("expected release assets to be overlaid, got %v", r.Assets)
	}
}
