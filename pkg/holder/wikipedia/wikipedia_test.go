package wikipedia

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

const pageSample = `<html><body>
<table class="infobox">
<tr><th>Developer</th><td>Example Corp</td></tr>
<tr><th>Stable release</th><td>1.25.3</td></tr>
</table>
</body></html>`

func TestGetLatest(t *testing.T) {
	h := &Holder{Base: holder.Base{Repo: "Nginx"}, Client: &bodyClient{pageSample}}
	r, err := h.GetLatest(context.Background(), false, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r == nil || r.Version.String() != "1.25.3" {
		t.Fatalf("got %v, want 1.25.3", r)
	}
}
