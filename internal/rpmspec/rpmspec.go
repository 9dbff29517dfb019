// Package rpmspec scans an RPM .spec file for the handful of lines
// lastversion-aware packages carry (%global macros plus the standard
// Name/Version/URL/Source0/License tags), producing the data the
// orchestrator's update-spec glue needs to resolve a project and compare
// versions. Grounded on original_source/lastversion/lastversion.py's
// get_repo_data_from_spec; the external spec-rewriting step itself stays
// out of scope.
package rpmspec

import (
	"bufio"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Data is the subset of get_repo_data_from_spec's repo_data dict this port
// implements.
type Data struct {
	Name    string // %{upstream_name} if set, else Name:
	SpecTag string // "%{upstream_name}" or "%{name}", for rewriting Version:

	CurrentVersion string
	CurrentCommit  string
	CommitBased    bool
	ModuleOf       bool // true when %global upstream_version is present

	Repo string // resolved from upstream_github+name, lastversion_repo, or a URL/Source0 candidate

	Only        string
	HavingAsset string
	Major       string
	Formal      bool
	FormalSet   bool
	Sem         string

	License string
}

// ParseFile reads path and scans it.
func ParseFile(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening spec %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse scans r line by line, mirroring the Python source's single pass.
func Parse(r io.Reader) (*Data, error) {
	d := &Data{}
	var (
		name            string
		upstreamGithub  string
		upstreamName    string
		specRepo        string
		urls            []string
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "%global lastversion_repo"):
			specRepo = macroValue(line)
		case strings.HasPrefix(line, "%global upstream_github"):
			upstreamGithub = macroValue(line)
		case strings.HasPrefix(line, "%global upstream_name"):
			upstreamName = macroValue(line)
		case strings.HasPrefix(line, "%global commit "):
			d.CurrentCommit = macroValue(line)
			d.CommitBased = true
		case strings.HasPrefix(line, "Name:"):
			name = tagValue(line, "Name:")
		case strings.HasPrefix(line, "URL:"):
			urls = append(urls, tagValue(line, "URL:"))
		case strings.HasPrefix(line, "Source0:"):
			if v := tagValue(line, "Source0:"); strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "http://") {
				urls = append(urls, v)
			}
		case strings.HasPrefix(line, "License:"):
			d.License = tagValue(line, "License:")
		case strings.HasPrefix(line, "%global upstream_version "):
			d.CurrentVersion = macroValue(line)
			d.ModuleOf = true
		case strings.HasPrefix(line, "Version:") && d.CurrentVersion == "":
			d.CurrentVersion = tagValue(line, "Version:")
		case strings.HasPrefix(line, "%global lastversion_only"):
			d.Only = macroValue(line)
		case strings.HasPrefix(line, "%global lastversion_having_asset"):
			d.HavingAsset = macroValue(line)
		case strings.HasPrefix(line, "%global lastversion_major"):
			d.Major = macroValue(line)
		case strings.HasPrefix(line, "%global lastversion_formal"):
			d.Formal, d.FormalSet = parseBoolish(macroValue(line))
		case strings.HasPrefix(line, "%global lastversion_sem"):
			if v := strings.ToLower(macroValue(line)); v == "major" || v == "minor" || v == "patch" {
				d.Sem = v
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if upstreamName != "" {
		d.Name = upstreamName
		d.SpecTag = "%{upstream_name}"
	} else {
		d.Name = name
		d.SpecTag = "%{name}"
	}

	switch {
	case upstreamGithub != "":
		d.Repo = upstreamGithub + "/" + d.Name
	case specRepo != "":
		d.Repo = specRepo
	default:
		d.Repo = findPreferredURL(urls, nil)
	}

	return d, nil
}

// macroValue extracts the third shell-style token of a "%global NAME VALUE"
// line ("%global", "NAME", "VALUE", ...), trimming surrounding quotes the
// way shlex.split would.
func macroValue(line string) string {
	fields := shlexFields(line)
	if len(fields) < 3 {
		return ""
	}
	return fields[2]
}

func tagValue(line, tag string) string {
	return strings.TrimSpace(strings.SplitN(line, tag, 2)[1])
}

// shlexFields is a minimal shell-word splitter: whitespace-separated
// fields, with a leading/trailing matching quote stripped from each. RPM
// spec macro lines never nest quotes or use escapes, so this covers what
// the source's shlex.split calls actually see.
func shlexFields(line string) []string {
	raw := strings.Fields(line)
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		fields = append(fields, unquote(f))
	}
	return fields
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func parseBoolish(value string) (b bool, ok bool) {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return value != "", true
	}
}

// findPreferredURL returns the first URL whose hostname a known adapter
// claims (isKnownHost), or the first URL at all if none match or
// isKnownHost is nil (the caller didn't wire adapter hostnames in).
func findPreferredURL(urls []string, isKnownHost func(hostname string) bool) string {
	if isKnownHost != nil {
		for _, u := range urls {
			parsed, err := url.Parse(u)
			if err != nil {
				continue
			}
			if isKnownHost(parsed.Hostname()) {
				return u
			}
		}
	}
	if len(urls) > 0 {
		return urls[0]
	}
	return ""
}

// FindPreferredURL is the exported form of findPreferredURL for callers
// (pkg/lastversion) that want to pass pkg/factory's hostname table.
func FindPreferredURL(urls []string, isKnownHost func(hostname string) bool) string {
	return findPreferredURL(urls, isKnownHost)
}
