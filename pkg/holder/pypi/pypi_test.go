package pypi

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
)

type bodyClient struct{ body string }

func (b *bodyClient) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: 200,
		Body:       readCloser{strings.NewReader(b.body)},
		Header:     make(http.Header),
	}, nil
}

type readCloser struct{ *strings.Reader }

func (r readCloser) Close() error { return nil }

const sampleJSON = `{
  "info": {"version": "2.3.1"},
  "releases": {
    "1.9.0": [{"upload_time_iso_8601": "2022-01-01T00:00:00Z"}],
    "2.3.1": [{"upload_time_iso_8601": "2023-06-01T00:00:00Z"}]
  }
}`

func TestGetLatestNoMajorFilterUsesInfoVersion(t *testing.T) {
	h := &Holder{Base: holder.Base{Repo: "requests"}, Client: &bodyClient{body: sampleJSON}}
	r, err := h.GetLatest(context.Background(), false, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r.Version.String() != "2.3.1" {
		t.Errorf("got %q, want 2.3.1", r.Version.String())
	}
}

func TestGetLatestWithMajorFilterScansReleases(t *testing.T) {
	h := &Holder{Base: holder.Base{Repo: "requests"}, Client: &bodyClient{body: sampleJSON}}
	r, err := h.GetLatest(context.Background(), false, "1")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r == nil || r.Version.String() != "1.9.0" {
		t.Errorf("got %v, want 1.9.0", r)
	}
}

func TestIsInstance(t *testing.T) {
	h := &Holder{Base: holder.Base{Repo: "requests"}, Client: &bodyClient{body: sampleJSON}}
	if !h.IsInstance(context.Background()) {
		t.Error("expected IsInstance to report true for a valid pypi json body")
	}
}
