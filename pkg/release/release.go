// Package release defines the adapter output record (§3 "Release") every
// holder returns from GetLatest, and the orchestrator enrichments layered on
// top of it before the CLI renders a result.
package release

import (
	"time"

	"github.com/dvershinin/lastversion-sub000/pkg/version"
)

// Type identifies which stage of an adapter's selection algorithm produced
// a Release, for diagnostics only (§3: "type ... for diagnostics").
type Type string

const (
	TypeFeed    Type = "feed"
	TypeRelease Type = "release"
	TypeTag     Type = "tag"
	TypeGraphQL Type = "graphql"
	TypeHelm    Type = "helm"
	TypeSource  Type = "source"
)

// Asset is one downloadable artifact attached to a release.
type Asset struct {
	Name   string
	URL    string
	Label  string
	Digest string // e.g. "sha256:...", when the provider supplies one
	Size   int64
}

// Release is the adapter's output record (§3). Version and TagName are
// required; everything else is populated as the specific adapter and
// orchestrator stage allow.
type Release struct {
	Version *version.Version
	TagName string
	TagDate time.Time
	Type    Type
	Assets  []Asset

	// Orchestrator enrichments (§4.6 "Assets enrichment"), populated only
	// for json/dict output shapes.
	License    string
	Readme     string
	Changelog  string
	SourceURL  string
	From       string // canonical link to the release/tag on the provider

	// RPM-spec helpers (§6 "Input file formats", consumed by
	// pkg/lastversion's spec-update glue).
	SpecTag         string
	SpecTagNoPrefix string
	VPrefix         bool
	Source          string
}

// Newer reports whether r's version is strictly greater than other's,
// treating a nil other as "no prior candidate" (r always wins).
func (r *Release) Newer(other *Release) bool {
	if other == nil || other.Version == nil {
		return r.Version != nil
	}
	if r.Version == nil {
		return false
	}
	return version.Compare(r.Version, other.Version) > 0
}
