package mercurial

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
)

type bodyClient struct{ body string }

func (b *bodyClient) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: 200, Body: readCloser{strings.NewReader(b.body)}, Header: make(http.Header)}, nil
}

type readCloser struct{ *strings.Reader }

func (r readCloser) Close() error { return nil }

const atomSample = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>1.3.0</title>
    <updated>2024-02-01T00:00:00Z</updated>
    <link rel="alternate" href="https://hg.example.com/proj/rev/1.3.0"/>
  </entry>
</feed>`

func TestGetLatest(t *testing.T) {
	h := &Holder{Base: holder.Base{Hostname: "hg.example.com", Repo: "proj"}, Client: &bodyClient{atomSample}}
	r, err := h.GetLatest(context.Background(), false, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r == nil || r.Version.String() != "1.3.0" {
		t.Fatalf("got %v, want 1.3.0", r)
	}
}
