package alpine

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"testing"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
)

func buildIndexArchive(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{Name: "APKINDEX", Size: int64(len(content)), Mode: 0o644}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type bodyClient struct{ body []byte }

func (b *bodyClient) Do(req *http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: 200, Body: readCloser{bytes.NewReader(b.body)}, Header: make(http.Header)}, nil
}

type readCloser struct{ *bytes.Reader }

func (r readCloser) Close() error { return nil }

func TestGetLatest(t *testing.T) {
	content := "P:curl\nV:8.5.0-r0\n\nP:nginx\nV:1.25.3-r0\n"
	archive := buildIndexArchive(t, content)
	h := &Holder{Base: holder.Base{Repo: "nginx"}, Client: &bodyClient{archive}}
	r, err := h.GetLatest(context.Background(), false, "")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if r == nil {
		t.Fatal("expected a release")
	}
	if r.TagName != "1.25.3-r0" {
		t.Errorf("got tag %q, want 1.25.3-r0", r.TagName)
	}
}
