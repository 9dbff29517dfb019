// Package version implements a PEP 440-compatible version model extended
// with a normalization pipeline that rescues the heterogeneous tag spellings
// upstream projects use (release-3_0_2, v2.41.0-rc2.windows.1, 8u462-b08,
// foo-1.2.3-devel, ...) into comparable versions.
package version

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidVersion is returned when a tag string cannot be normalized into
// a PEP 440-compatible version under any of the fallback strategies.
var ErrInvalidVersion = errors.New("invalid version")

// Pre describes a pre-release segment: one of a/b/rc followed by a number.
type Pre struct {
	L string
	N int
}

// Version is an immutable, comparable PEP 440 version.
type Version struct {
	Epoch   int
	Release []int
	Pre     *Pre
	Post    *int
	Dev     *int
	Local   string

	// fixedLetterPost records that this Version's post-release came from the
	// "last-letter" convention (OpenSSL-style 1.1.1b) so String can emit the
	// letter back instead of ".postN".
	fixedLetterPost bool
}

var preOrder = map[string]int{"a": 0, "b": 1, "rc": 2}

var pep440RE = regexp.MustCompile(`(?i)^\s*v?` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?:[-_.]?(?P<prel>alpha|beta|preview|pre|rc|a|b|c)[-_.]?(?P<pren>[0-9]+)?)?` +
	`(?:(?:-(?P<postn1>[0-9]+))|(?:[-_.]?(?P<postkw>post|rev|r)[-_.]?(?P<postn2>[0-9]+)?))?` +
	`(?:[-_.]?(?P<devkw>dev)[-_.]?(?P<devn>[0-9]+)?)?` +
	`(?:\+(?P<local>[a-zA-Z0-9]+(?:[-_.][a-zA-Z0-9]+)*))?` +
	`\s*$`)

// fallbackRE mirrors spec §4.1 step 8's literal pattern
// "(\d+(\.\d+|\.x)+(rc\d+)?)": note the \.x alternative, which lets an
// unparseable tag like "1.2.x" be *found* as a candidate and then correctly
// rejected (rather than silently truncated to "1.2") when that candidate
// still fails to parse.
var fallbackRE = regexp.MustCompile(`[0-9]+(?:\.[0-9]+|\.x)+(?:rc[0-9]+)?`)

// parse runs the bare PEP 440 regex against an already-normalized string.
func parse(s string) (*Version, error) {
	m := pep440RE.FindStringSubmatch(s)
	if m == nil {
		return nil, errors.Wrapf(ErrInvalidVersion, "%q does not look like a version", s)
	}
	v := &Version{}
	names := pep440RE.SubexpNames()
	get := func(name string) string {
		for i, n := range names {
			if n == name {
				return m[i]
			}
		}
		return ""
	}
	if e := get("epoch"); e != "" {
		v.Epoch, _ = strconv.Atoi(e)
	}
	for _, part := range strings.Split(get("release"), ".") {
		n, _ := strconv.Atoi(part)
		v.Release = append(v.Release, n)
	}
	if label := get("prel"); label != "" {
		canon := canonicalPreLabel(label)
		n := 0
		if pn := get("pren"); pn != "" {
			n, _ = strconv.Atoi(pn)
		}
		v.Pre = &Pre{L: canon, N: n}
	}
	if pn1 := get("postn1"); pn1 != "" {
		n, _ := strconv.Atoi(pn1)
		v.Post = &n
	} else if get("postkw") != "" {
		n := 0
		if pn2 := get("postn2"); pn2 != "" {
			n, _ = strconv.Atoi(pn2)
		}
		v.Post = &n
	}
	if get("devkw") != "" {
		n := 0
		if dn := get("devn"); dn != "" {
			n, _ = strconv.Atoi(dn)
		}
		v.Dev = &n
	}
	if l := get("local"); l != "" {
		v.Local = strings.ToLower(l)
	}
	return v, nil
}

func canonicalPreLabel(label string) string {
	switch strings.ToLower(label) {
	case "alpha", "a":
		return "a"
	case "beta", "b":
		return "b"
	case "c", "rc", "pre", "preview":
		return "rc"
	}
	return strings.ToLower(label)
}

// Parse parses a raw tag with no normalization pipeline applied, for callers
// that already hold a canonical PEP 440 string (e.g. round-tripping String()).
func Parse(s string) (*Version, error) {
	return parse(s)
}

// String renders the canonical PEP 440 form. Parse(String(v)) equals v,
// except for a letter-fixed version: it renders its trailing letter again
// ("1.1.1b"), which Parse reads as a pre-release.
func (v *Version) String() string {
	var b strings.Builder
	if v.Epoch != 0 {
		b.WriteString(strconv.Itoa(v.Epoch))
		b.WriteString("!")
	}
	for i, r := range v.Release {
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(strconv.Itoa(r))
	}
	if v.Pre != nil {
		b.WriteString(v.Pre.L)
		b.WriteString(strconv.Itoa(v.Pre.N))
	}
	if v.Post != nil {
		if v.fixedLetterPost {
			b.WriteString(string(rune(*v.Post)))
		} else {
			b.WriteString(".post")
			b.WriteString(strconv.Itoa(*v.Post))
		}
	}
	if v.Dev != nil {
		b.WriteString(".dev")
		b.WriteString(strconv.Itoa(*v.Dev))
	}
	if v.Local != "" {
		b.WriteString("+")
		b.WriteString(v.Local)
	}
	return b.String()
}

func trimTrailingZeros(r []int) []int {
	end := len(r)
	for end > 0 && r[end-1] == 0 {
		end--
	}
	return r[:end]
}

func compareRelease(a, b []int) int {
	ta, tb := trimTrailingZeros(a), trimTrailingZeros(b)
	for i := 0; i < min(len(ta), len(tb)); i++ {
		if ta[i] != tb[i] {
			return cmp.Compare(ta[i], tb[i])
		}
	}
	return cmp.Compare(len(ta), len(tb))
}

// preClass buckets pre-release state the way packaging.version's _cmpkey
// does: a dev-only version (no pre, no post) sorts below every pre-release
// of the same release; a version with no pre at all (final or post) sorts
// above every pre-release.
func preClass(v *Version) (class, letter, n int) {
	if v.Pre == nil {
		if v.Post == nil && v.Dev != nil {
			return 0, 0, 0
		}
		return 2, 0, 0
	}
	return 1, preOrder[v.Pre.L], v.Pre.N
}

func postKey(v *Version) (present int, n int) {
	if v.Post == nil {
		return 0, 0
	}
	return 1, *v.Post
}

func devKey(v *Version) (absent int, n int) {
	if v.Dev == nil {
		return 1, 0
	}
	return 0, *v.Dev
}

func localSegments(s string) []string {
	if s == "" {
		return nil
	}
	return regexp.MustCompile(`[-_.]`).Split(s, -1)
}

func compareLocalSegment(a, b string) int {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return cmp.Compare(an, bn)
	case aerr == nil:
		return 1 // numeric segments sort after alphanumeric ones
	case berr == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

func compareLocal(a, b string) int {
	as, bs := localSegments(a), localSegments(b)
	if len(as) == 0 && len(bs) == 0 {
		return 0
	}
	if len(as) == 0 {
		return -1
	}
	if len(bs) == 0 {
		return 1
	}
	for i := 0; i < min(len(as), len(bs)); i++ {
		if r := compareLocalSegment(as[i], bs[i]); r != 0 {
			return r
		}
	}
	return cmp.Compare(len(as), len(bs))
}

// Compare returns -1, 0 or 1 following PEP 440 ordering: epoch, then release
// (trailing zeros ignored), then pre/post/dev precedence, then local version.
func Compare(a, b *Version) int {
	if r := cmp.Compare(a.Epoch, b.Epoch); r != 0 {
		return r
	}
	if r := compareRelease(a.Release, b.Release); r != 0 {
		return r
	}
	ac, al, an := preClass(a)
	bc, bl, bn := preClass(b)
	if ac != bc {
		return cmp.Compare(ac, bc)
	}
	if al != bl {
		return cmp.Compare(al, bl)
	}
	if an != bn {
		return cmp.Compare(an, bn)
	}
	ap, apn := postKey(a)
	bp, bpn := postKey(b)
	if ap != bp {
		return cmp.Compare(ap, bp)
	}
	if apn != bpn {
		return cmp.Compare(apn, bpn)
	}
	ad, adn := devKey(a)
	bd, bdn := devKey(b)
	if ad != bd {
		return cmp.Compare(ad, bd)
	}
	if adn != bdn {
		return cmp.Compare(adn, bdn)
	}
	return compareLocal(a.Local, b.Local)
}

// LessThan is Compare(v, other) < 0, convenient for sort.Slice callers.
func (v *Version) LessThan(other *Version) bool { return Compare(v, other) < 0 }

// Equal reports whether v and other compare equal (ignoring raw spelling).
func (v *Version) Equal(other *Version) bool { return Compare(v, other) == 0 }

func isDateLike(n int) bool {
	s := strconv.Itoa(n)
	if len(s) != 8 {
		return false
	}
	_, err := time.Parse("20060102", s)
	return err == nil
}

// IsPrerelease reports whether v should be treated as a pre-release: it has
// an explicit pre/dev segment, or its micro component is >= 90 and does not
// look like a YYYYMMDD date stamp (2.1.20230410 is a stable, date-stamped
// build, not a "pre-release micro 90+").
func (v *Version) IsPrerelease() bool {
	if v.Pre != nil || v.Dev != nil {
		return true
	}
	if len(v.Release) >= 3 {
		micro := v.Release[2]
		if micro >= 90 && !isDateLike(micro) {
			return true
		}
	}
	return false
}

// Even reports whether the minor component is present and even — the
// "stable track" convention used by nginx, Linux and similar projects.
func (v *Version) Even() bool {
	return len(v.Release) >= 2 && v.Release[1]%2 == 0
}

// SemLevel selects how much of the release tuple SemExtractBase keeps.
type SemLevel int

const (
	SemMajor SemLevel = iota + 1
	SemMinor
	SemPatch
)

// SemExtractBase returns a new Version containing only the requested
// release prefix (major / major.minor / major.minor.micro), discarding any
// pre/post/dev/local segments. The zero SemLevel means "any" — no
// truncation — and returns v unchanged.
func (v *Version) SemExtractBase(level SemLevel) *Version {
	if level == 0 {
		return v
	}
	n := int(level)
	if n > len(v.Release) {
		n = len(v.Release)
	}
	release := make([]int, n)
	copy(release, v.Release[:n])
	return &Version{Release: release}
}
