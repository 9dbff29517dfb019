package sourceforge

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

const rssSample = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<item><title>myapp-2.1.0</title><link>https://sourceforge.net/projects/myapp/files/myapp-2.1.0/download</link><pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate></item>
</channel></rss>`

func TestGetLatestReadsTagFromTitle(t *testing.T) {
	h := &Holder{Base: holder.Base{Repo: "myapp"}, Client: &bodyClient{rssSample}}
	r, err := h.GetLatest(context.Background(), false, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r == nil {
		t.Fatal("expected a release")
	}
	if r.Version.String() != "2.1.0" {
		t.Errorf("got %q, want 2.1.0", r.Version.String())
	}
	if r.TagName != "myapp-2.1.0" {
		t.Errorf("got tag %q, want myapp-2.1.0", r.TagName)
	}
}
