package version

import (
	"testing"
)

func TestParseAndString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"v1.2.3", "1.2.3"},
		{"1.2.3a1", "1.2.3a1"},
		{"1.2.3.dev0", "1.2.3.dev0"},
		{"1.2.3.post1", "1.2.3.post1"},
		{"1!2.3", "1!2.3"},
		{"1.2.3+abc.1", "1.2.3+abc.1"},
	}
	for _, c := range cases {
		v, err := Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", c.in, err)
			continue
		}
		if got := v.String(); got != c.want {
			t.Errorf("Parse(%q).String() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "not-a-version-at-all-$$", "x.y.z"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", in)
		}
	}
}

func TestCompareTotalOrder(t *testing.T) {
	// Ascending order per PEP 440 §Version ordering, mirrored from
	// packaging.version's own test matrix.
	ordered := []string{
		"1.0.dev0",
		"1.0a1.dev0",
		"1.0a1",
		"1.0a2.dev0",
		"1.0a2",
		"1.0b1.dev0",
		"1.0b1",
		"1.0rc1.dev0",
		"1.0rc1",
		"1.0",
		"1.0.post0.dev0",
		"1.0.post0",
		"1.0.post1.dev0",
		"1.0.post1",
		"1.1.dev0",
		"1.1",
	}
	var vs []*Version
	for _, s := range ordered {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		vs = append(vs, v)
	}
	for i := 0; i < len(vs)-1; i++ {
		if !vs[i].LessThan(vs[i+1]) {
			t.Errorf("expected %s < %s", vs[i], vs[i+1])
		}
		if Compare(vs[i+1], vs[i]) <= 0 {
			t.Errorf("expected %s > %s", vs[i+1], vs[i])
		}
	}
}

func TestCompareTrailingZeros(t *testing.T) {
	a, _ := Parse("1.0")
	b, _ := Parse("1.0.0")
	if !a.Equal(b) {
		t.Errorf("expected 1.0 == 1.0.0 (trailing zeros ignored)")
	}
}

func TestCompareEpoch(t *testing.T) {
	a, _ := Parse("1!1.0")
	b, _ := Parse("9.0")
	if !b.LessThan(a) {
		t.Errorf("expected 9.0 < 1!1.0 (epoch dominates)")
	}
}

func TestCompareLocalVersion(t *testing.T) {
	a, _ := Parse("1.0+abc")
	b, _ := Parse("1.0")
	if !b.LessThan(a) {
		t.Errorf("expected 1.0 < 1.0+abc (local version sorts after bare release)")
	}
}

func TestIsPrerelease(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1.2.3", false},
		{"1.2.3a1", true},
		{"1.2.3.dev1", true},
		{"2.1.20230410", false}, // date-stamped micro, not a "90+" prerelease
		{"2.1.95", true},        // micro >= 90, not date-like
		{"2.1.90", true},
	}
	for _, c := range cases {
		v, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got := v.IsPrerelease(); got != c.want {
			t.Errorf("Parse(%q).IsPrerelease() = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestEven(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1.18.0", true},
		{"1.19.0", false},
		{"2.0.0", true},
	}
	for _, c := range cases {
		v, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got := v.Even(); got != c.want {
			t.Errorf("Parse(%q).Even() = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSemExtractBase(t *testing.T) {
	v, _ := Parse("1.2.3.dev1")
	if got := v.SemExtractBase(SemMajor).String(); got != "1" {
		t.Errorf("SemExtractBase(SemMajor) = %q, want %q", got, "1")
	}
	if got := v.SemExtractBase(SemMinor).String(); got != "1.2" {
		t.Errorf("SemExtractBase(SemMinor) = %q, want %q", got, "1.2")
	}
	if got := v.SemExtractBase(SemPatch).String(); got != "1.2.3" {
		t.Errorf("SemExtractBase(SemPatch) = %q, want %q", got, "1.2.3")
	}
	if got := v.SemExtractBase(0).String(); got != "1.2.3.dev1" {
		t.Errorf("SemExtractBase(0) = %q, want %q (level 0 means no truncation)", got, "1.2.3.dev1")
	}
}
