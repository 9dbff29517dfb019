// Package local implements the §4.7 Local adapter: read a fixed file path
// containing a bare version string (e.g. a VERSION file checked into a
// working copy).
package local

import (
	"context"
	"os"
	"strings"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// Holder is the Local adapter. Repo is the file path to read.
type Holder struct {
	holder.Base
}

var _ holder.Holder = &Holder{}

// GetLatest reads Repo as a file path and sanitizes its trimmed contents.
func (h *Holder) GetLatest(_ context.Context, preOk bool, major string) (*release.Release, error) {
	b, err := os.ReadFile(h.Repo)
	if err != nil {
		return nil, err
	}
	tag := strings.TrimSpace(string(b))
	if tag == "" {
		return nil, nil
	}
	h.Filters.PreOk = preOk
	h.Filters.Major = major
	v, ok := h.Filters.SanitizeVersion(tag, "", false)
	if !ok {
		return nil, nil
	}
	return &release.Release{Version: v, TagName: tag, Type: release.TypeSource}, nil
}

// ReleaseDownloadURL has no meaning for a local file.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	return h.Repo
}
