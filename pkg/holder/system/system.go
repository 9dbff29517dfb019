// Package system implements the §4.7 System adapter: query the host's
// platform package database (dpkg on Debian-family, rpm on RHEL-family) for
// an installed package's version. No Go client library for either exists
// in the retrieved pack; both tools are queried the way the original
// implementation does, via os/exec against the system's own package-query
// binary — there is no data format to parse so a library adds nothing here.
package system

import (
	"context"
	"os/exec"
	"strings"

	"github.com/dvershinin/lastversion-sub000/pkg/holder"
	"github.com/dvershinin/lastversion-sub000/pkg/release"
)

// queryFunc abstracts the package-manager probe for testing.
type queryFunc func(pkg string) (string, error)

// Holder is the System adapter. Repo is the installed package name.
type Holder struct {
	holder.Base
	Query queryFunc
}

var _ holder.Holder = &Holder{}

func dpkgQuery(pkg string) (string, error) {
	out, err := exec.Command("dpkg-query", "-W", "-f=${Version}", pkg).Output()
	return strings.TrimSpace(string(out)), err
}

func rpmQuery(pkg string) (string, error) {
	out, err := exec.Command("rpm", "-q", "--qf", "%{VERSION}-%{RELEASE}", pkg).Output()
	return strings.TrimSpace(string(out)), err
}

// NewHolder picks dpkg-query if present on PATH, else rpm, matching the two
// package families §4.7 names.
func NewHolder(repo string) *Holder {
	q := rpmQuery
	if _, err := exec.LookPath("dpkg-query"); err == nil {
		q = dpkgQuery
	}
	return &Holder{Base: holder.Base{Repo: repo}, Query: q}
}

// GetLatest queries the locally installed package version; there is no
// "latest available" concept here, only "what's on this machine".
func (h *Holder) GetLatest(_ context.Context, preOk bool, major string) (*release.Release, error) {
	tag, err := h.Query(h.Repo)
	if err != nil || tag == "" {
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

// ReleaseDownloadURL has no meaning for locally installed packages.
func (h *Holder) ReleaseDownloadURL(r *release.Release, short bool) string {
	return ""
}
