package holder

import (
	"regexp"
	"runtime"
	"strings"
)

// osExtensions maps a Go GOOS family to the asset extensions meant *mostly*
// to run on it, mirroring original_source/lastversion/utils.py's
// osExtensions table (§4.8 rule 1).
var osExtensions = map[string][]string{
	"windows": {".exe", ".msi", ".msi.asc", ".msi.sha256"},
	"posix":   {".tgz", ".tar.gz"},
}

// platformMarkers matches the *start* of runtime.GOOS to words that appear
// in asset names for other platforms (§4.8 rule 2).
var platformMarkers = map[string][]string{
	"windows": {"windows", "win"},
	"linux":   {"linux"},
	"darwin":  {"osx", "darwin"},
	"freebsd": {"freebsd", "netbsd", "openbsd"},
}

// distroExtensions are package formats exclusive to a distro family (§4.8
// rule 3). AppImage is always permitted regardless of distro.
var distroExtensions = map[string]string{
	".deb": "debian",
	".rpm": "redhat",
	".apk": "alpine",
	".dmg": "darwin",
}

// nonAmd64Markers are architecture words that disqualify an asset on an
// x86_64/AMD64 machine (§4.8 rule 4).
var nonAmd64Markers = []string{
	"i386", "i686", "arm", "arm64", "aarch64", "armhf", "armv7", "armv7l",
	"386", "ppc64", "mips64", "ppc64le", "mips64le",
}

// aarch64Markers are the converse: words that disqualify an asset on an
// aarch64 machine.
var aarch64Markers = []string{"x86_64", "x86-64", "amd64", "x64"}

func wordBoundaryMatch(word, asset string) bool {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\d*\b`)
	return re.MatchString(asset)
}

func hasExtension(asset string, exts []string) bool {
	lower := strings.ToLower(asset)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// osFamily collapses runtime.GOOS into the two buckets osExtensions uses:
// Windows, or everything else ("posix" — the original's tolerant default).
func osFamily() string {
	if runtime.GOOS == "windows" {
		return "windows"
	}
	return "posix"
}

// AssetDoesNotBelongToMachine reports whether asset is unusable on the
// current machine under §4.8's four rules. Underscores are normalized to
// dashes first so the word-boundary regexes stay meaningful.
func AssetDoesNotBelongToMachine(asset string, arch string) bool {
	asset = strings.ReplaceAll(asset, "_", "-")

	family := osFamily()
	for name, exts := range osExtensions {
		if name != family && hasExtension(asset, exts) {
			return true
		}
	}

	for pf, words := range platformMarkers {
		if strings.HasPrefix(runtime.GOOS, pf) {
			continue
		}
		for _, w := range words {
			if wordBoundaryMatch(w, asset) {
				return true
			}
		}
	}

	if asset != "" {
		lower := strings.ToLower(asset)
		if !strings.HasSuffix(lower, ".appimage") {
			for ext, distro := range distroExtensions {
				if hasExtension(asset, []string{ext}) && !strings.Contains(strings.ToLower(arch), distro) {
					// Distro-exclusive packages are only rejected when we
					// positively know we're on a different distro family;
					// arch=="" (unknown) means "don't reject on this rule".
					if arch != "" {
						return true
					}
				}
			}
		}
	}

	switch arch {
	case "x86_64", "amd64", "AMD64":
		for _, w := range nonAmd64Markers {
			if wordBoundaryMatch(w, asset) {
				return true
			}
		}
	case "aarch64", "arm64":
		for _, w := range aarch64Markers {
			if wordBoundaryMatch(w, asset) {
				return true
			}
		}
	}
	return false
}
