// Package holder implements the shared protocol every provider adapter
// (pkg/holder/github, .../gitlab, ...) builds on: filters, sanitize_version
// wiring into pkg/version, matches_filter, asset selection and the §4.8
// platform-compatibility predicate, and the known-repos table shape used by
// pkg/factory's dispatch (§4.4, §4.5).
package holder

import (
	"regexp"
	"strings"

	"github.com/dvershinin/lastversion-sub000/pkg/version"
)

// Filters mirrors §4.4's "Holder configuration" filter set. The zero value
// means "accept everything, stable only".
type Filters struct {
	Only        string
	Exclude     string
	HavingAsset string
	Even        bool
	Formal      bool
	Branches    map[string]*regexp.Regexp // named-branch regex map, keyed by major
	Major       string
	PreOk       bool
}

// matchesFilter implements §4.4's matches_filter: plain substring, a
// "~"-prefixed regex, or a "!"-prefixed negation, composable as "!~regex".
func matchesFilter(filter string, tag string) bool {
	negate := false
	f := filter
	if strings.HasPrefix(f, "!") {
		negate = true
		f = f[1:]
	}
	var matched bool
	if strings.HasPrefix(f, "~") {
		re, err := regexp.Compile(f[1:])
		matched = err == nil && re.MatchString(tag)
	} else {
		matched = strings.Contains(tag, f)
	}
	if negate {
		return !matched
	}
	return matched
}

// PassesOnlyExclude applies the only/exclude predicates ahead of the
// Version pipeline, per §4.4 sanitize_version's first step.
func (f Filters) PassesOnlyExclude(tag string) bool {
	if f.Only != "" && !matchesFilter(f.Only, tag) {
		return false
	}
	if f.Exclude != "" && matchesFilter(f.Exclude, tag) {
		return false
	}
	return true
}

// BranchRegex returns the named-branch regex for the current Major filter,
// if one is configured (§4.1 post-parse major filtering, §4.4 set_branches).
func (f Filters) BranchRegex() *regexp.Regexp {
	if f.Branches == nil || f.Major == "" {
		return nil
	}
	return f.Branches[f.Major]
}

// versionOptions builds the version.Options this Filters set implies, plus
// the adapter-level (not per-call) project-prefix/letter-fix knobs, so that
// Major/Branches/PreOk/Even are not repeated at every call site.
func (f Filters) versionOptions(projectNamePrefix string, fixLetterPostRelease bool) version.Options {
	return version.Options{
		Major:                f.Major,
		BranchRegex:          f.BranchRegex(),
		PreOk:                f.PreOk,
		Even:                 f.Even,
		ProjectNamePrefix:    projectNamePrefix,
		FixLetterPostRelease: fixLetterPostRelease,
	}
}

// SanitizeVersion implements §4.4's sanitize_version: only/exclude
// predicates, then the Version pipeline, then the post-parse filters
// (already folded into version.SanitizeVersion via Options).
func (f Filters) SanitizeVersion(tag, projectNamePrefix string, fixLetterPostRelease bool) (*version.Version, bool) {
	if !f.PassesOnlyExclude(tag) {
		return nil, false
	}
	return version.SanitizeVersion(tag, f.versionOptions(projectNamePrefix, fixLetterPostRelease))
}
