package wordpress

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

func TestGetLatest(t *testing.T) {
	body := `{"version": "6.2.1", "download_link": "https://downloads.wordpress.org/plugin/foo.6.2.1.zip"}`
	h := &Holder{Base: holder.Base{Repo: "foo"}, Client: &bodyClient{body}}
	r, err := h.GetLatest(context.Background(), false, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r == nil || r.Version.String() != "6.2.1" {
		t.Fatalf("got %v, want 6.2.1", r)
	}
	if len(r.Assets) != 1 || r.Assets[0].URL != "https://downloads.wordpress.org/plugin/foo.6.2.1.zip" {
		t.Errorf("got assets %v", r.Assets)
	}
}
