package github

import (
	"testing"
	"time"

	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

func TestDateHelper(t *testing.T) {
	if !date(nil).IsZero() {
		t.Fatal("date(nil) should be zero")
	}
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &release.Release{TagDate: ts}
	if !date(r).Equal(ts) {
		t.Fatalf("date(r) = %v, want %v", date(r), ts)
	}
}
