package version

import (
	"regexp"
	"strconv"
	"strings"
)

// Options configures SanitizeVersion/Normalize for a particular holder.
type Options struct {
	// Major, when non-empty, restricts acceptance to versions under that
	// major/branch. It is compared three ways: release[0] == Major (as an
	// int), the canonical version string has the "Major." prefix, or (when
	// BranchRegex is set) the raw tag matches BranchRegex.
	Major string
	// BranchRegex is the holder's named-branch regex for Major, if any.
	BranchRegex *regexp.Regexp
	// PreOk allows pre-release/dev versions through.
	PreOk bool
	// Even requires an even minor component (stable-track convention).
	Even bool
	// ProjectNamePrefix is stripped from the start of the tag when followed
	// by "-" or "_" (e.g. "libssh2-1.2.3" with prefix "libssh2" -> "1.2.3").
	ProjectNamePrefix string
	// FixLetterPostRelease enables the OpenSSL-style "1.1.1b" -> "1.1.1.post98"
	// trailing-letter convention for this holder.
	FixLetterPostRelease bool
}

var (
	reSP           = regexp.MustCompile(` SP-`)
	reUpdateStyle  = regexp.MustCompile(`(\d{1,3})u(\d{1,4})(?:-b(\d+))?`)
	reDashP        = regexp.MustCompile(`-p(\d+)`)
	reDashPreviewN = regexp.MustCompile(`-preview-(\d+)`)
	reDashEarlyAcc = regexp.MustCompile(`-early-access-(\d+)`)
	reDashPreN     = regexp.MustCompile(`-pre-(\d+)`)
	reDashBetaRcN  = regexp.MustCompile(`-beta[-.]rc(\d+)`)
	reLeadingPre   = regexp.MustCompile(`^pre-(.+)$`)

	reRcDotted       = regexp.MustCompile(`^rc\d+\..*$`)
	reRcLead         = regexp.MustCompile(`^(rc\d+)\.(.*)$`)
	rePNum           = regexp.MustCompile(`^p(\d+)$`)
	reLeadingNonDig  = regexp.MustCompile(`^[^0-9]+`)
	reUnderscoreNums = regexp.MustCompile(`^(?:\d+_)+\d+`)
	reTrailingLetter = regexp.MustCompile(`(\d)([a-z])$`)
	reAlphaOnly      = regexp.MustCompile(`^[A-Za-z]+$`)
	reNumericOnly    = regexp.MustCompile(`^[0-9]+$`)
)

func applySpecialCaseSubstitutions(s string) string {
	s = reSP.ReplaceAllString(s, ".post")
	s = reUpdateStyle.ReplaceAllStringFunc(s, func(match string) string {
		sub := reUpdateStyle.FindStringSubmatch(match)
		major, update, build := sub[1], sub[2], sub[3]
		if build == "" {
			return major + "." + update
		}
		return major + "." + update + ".post" + build
	})
	return s
}

func applyDashGroupNormalizations(s string) string {
	s = reDashP.ReplaceAllString(s, "-post$1")
	s = reDashPreviewN.ReplaceAllString(s, "-pre$1")
	s = reDashEarlyAcc.ReplaceAllString(s, "-alpha$1")
	s = reDashPreN.ReplaceAllString(s, "-pre$1")
	s = reDashBetaRcN.ReplaceAllString(s, "-beta$1")
	s = reLeadingPre.ReplaceAllString(s, "$1-pre0")
	return s
}

func stripKnownPrefix(s, prefix string) string {
	if prefix == "" {
		return s
	}
	for _, sep := range []string{"-", "_"} {
		if strings.HasPrefix(s, prefix+sep) {
			return s[len(prefix)+len(sep):]
		}
	}
	return s
}

func tokenizeDashGroups(s string) ([]string, bool) {
	tokens := strings.Split(s, "-")
	var out []string
	for _, t := range tokens {
		lower := strings.ToLower(t)
		switch lower {
		case "devel", "test", "dev":
			out = append(out, "dev0")
			continue
		case "alpha":
			out = append(out, "a0")
			continue
		case "beta":
			out = append(out, "b0")
			continue
		case "rc", "preview", "pre":
			out = append(out, "rc0")
			continue
		}
		if reRcDotted.MatchString(t) {
			m := reRcLead.FindStringSubmatch(t)
			lead, rest := m[1], m[2]
			var lastNum string
			for _, seg := range strings.Split(rest, ".") {
				if reNumericOnly.MatchString(seg) {
					lastNum = seg
				}
			}
			if lastNum != "" {
				out = append(out, lead+".post"+lastNum)
			} else {
				out = append(out, lead)
			}
			continue
		}
		if m := rePNum.FindStringSubmatch(t); m != nil {
			out = append(out, "post"+m[1])
			continue
		}
		if reAlphaOnly.MatchString(t) {
			continue
		}
		out = append(out, t)
	}
	return out, len(out) > 0
}

// Normalize runs the tag-spelling rescue pipeline (spec §4.1 steps 1-7) and
// returns the massaged string to feed to the bare PEP 440 parser, plus
// whether the trailing-letter post-release fix fired (callers thread that
// back into Version.fixedLetterPost so String() renders the letter again).
func Normalize(raw string, opts Options) (string, bool, bool) {
	s := applySpecialCaseSubstitutions(raw)
	s = applyDashGroupNormalizations(s)
	s = stripKnownPrefix(s, opts.ProjectNamePrefix)

	tokens, ok := tokenizeDashGroups(s)
	if !ok {
		return "", false, false
	}

	tokens[0] = reLeadingNonDig.ReplaceAllString(tokens[0], "")

	if len(tokens) >= 2 && strings.Contains(tokens[0], ".") && reNumericOnly.MatchString(tokens[1]) {
		tokens = tokens[:1]
	}

	joined := strings.Join(tokens, ".")

	if loc := reUnderscoreNums.FindString(joined); loc != "" {
		joined = strings.ReplaceAll(joined, "_", ".")
	}

	fixedLetter := false
	if opts.FixLetterPostRelease {
		if m := reTrailingLetter.FindStringSubmatch(joined); m != nil {
			letter := m[2][0]
			joined = reTrailingLetter.ReplaceAllString(joined, m[1]+".post"+strconv.Itoa(int(letter)))
			fixedLetter = true
		}
	}

	parts := strings.Split(joined, ".")
	var kept []string
	for _, p := range parts {
		if strings.EqualFold(p, "release") {
			continue
		}
		kept = append(kept, p)
	}
	joined = strings.Join(kept, ".")

	return joined, fixedLetter, true
}

// SanitizeVersion applies only/exclude-style holder filters are the caller's
// responsibility (matches_filter, §4.4); this implements the rest of the
// pipeline: normalization, PEP 440 parsing (with original-input fallback),
// and the post-parse major/pre_ok/even filters. It returns (nil, false) for
// any tag that should simply be skipped — never an error, per §7's "Invalid
// version ... the holder treats this as skip this tag, never fatal".
func SanitizeVersion(tag string, opts Options) (*Version, bool) {
	normalized, fixedLetter, ok := Normalize(tag, opts)
	var v *Version
	if ok {
		if parsed, err := parse(normalized); err == nil {
			parsed.fixedLetterPost = fixedLetter
			v = parsed
		}
	}
	if v == nil {
		for _, cand := range fallbackCandidates(tag) {
			if parsed, err := parse(cand); err == nil {
				v = parsed
				break
			}
		}
	}
	if v == nil {
		return nil, false
	}
	if !passesMajorFilter(v, tag, opts) {
		return nil, false
	}
	if !opts.PreOk && v.IsPrerelease() {
		return nil, false
	}
	if opts.Even && !v.Even() {
		return nil, false
	}
	return v, true
}

func fallbackCandidates(tag string) []string {
	return fallbackRE.FindAllString(tag, -1)
}

func passesMajorFilter(v *Version, rawTag string, opts Options) bool {
	if opts.Major == "" {
		return true
	}
	if n, err := strconv.Atoi(opts.Major); err == nil {
		if len(v.Release) > 0 && v.Release[0] == n {
			return true
		}
	}
	if strings.HasPrefix(v.String(), opts.Major+".") {
		return true
	}
	if opts.BranchRegex != nil && opts.BranchRegex.MatchString(rawTag) {
		return true
	}
	return false
}
