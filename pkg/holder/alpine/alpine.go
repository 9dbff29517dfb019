// Package alpine implements the §4.7 Alpine adapter: fetch an
// APKINDEX.tar.gz, unpack the APKINDEX text file it contains, and parse its
// "P:"/"V:" record pairs (Alpine's own package-index format) into a
// name->version map. Only archive/tar and compress/gzip are used here:
// no dependency in the retrieved pack parses this format, and both are the
// stdlib's own documented decoders for a fixed, fully-specified container
// format rather than a hand-rolled substitute for an ecosystem library.
package alpine

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/dvershinin/lastversion-sub000/internal/httpx"
	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// Holder is the Alpine package adapter. Repo is the package name; Hostname
// optionally overrides the default main repository mirror/branch.
type Holder struct {
	holder.Base
	Client httpx.BasicClient
}

var _ holder.Holder = &Holder{}

func (h *Holder) indexURL() string {
	host := h.Hostname
	if host == "" {
		host = "dl-cdn.alpinelinux.org/alpine/edge/main/x86_64"
	}
	return "https://" + host + "/APKINDEX.tar.gz"
}

// parseIndex reads an uncompressed APKINDEX text stream, yielding a
// name->version map from its "P:"/"V:" record pairs (blank-line delimited).
func parseIndex(r io.Reader) map[string]string {
	out := map[string]string{}
	scanner := bufio.NewScanner(r)
	var name string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "P:"):
			name = strings.TrimPrefix(line, "P:")
		case strings.HasPrefix(line, "V:"):
			if name != "" {
				out[name] = strings.TrimPrefix(line, "V:")
			}
		case line == "":
			name = ""
		}
	}
	return out
}

func (h *Holder) fetchIndex(ctx context.Context) (map[string]string, error) {
	resp, err := holder.Get(h.Client, h.indexURL())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "opening APKINDEX.tar.gz")
	}
	defer gz.Close()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading APKINDEX tar")
		}
		if hdr.Name == "APKINDEX" {
			return parseIndex(tr), nil
		}
	}
	return nil, errors.New("APKINDEX entry not found in archive")
}

// GetLatest looks the package up in the parsed index by name.
func (h *Holder) GetLatest(ctx context.Context, preOk bool, major string) (*release.Release, error) {
	idx, err := h.fetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	tag, ok := idx[h.Repo]
	if !ok {
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

// ReleaseDownloadURL returns the pkgs.alpinelinux.org package page.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	return "https://pkgs.alpinelinux.org/package/edge/main/x86_64/" + h.Repo
}
