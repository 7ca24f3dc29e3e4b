package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	t.Parallel()

	cases := []struct {
		title string
		want  string
	}{
		{"Birds Are Deep State Drones v3", "birds-are-deep-state-drones-v3"},
		{"  2025 Eclipse Was Actual NWO Portal Opening!!  ", "2025-eclipse-was-actual-nwo-portal-opening"},
		{"Taylor Swift's 2025 Tour = Mass Satanic Initiation", "taylor-swift-s-2025-tour-mass-satanic-initiation"},
		{"???", ""},
		{"ALL---CAPS///SLASHES", "all-caps-slashes"},
	}

	for _, tc := range cases {
		if got := Make(tc.title); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestMakeDeterministic(t *testing.T) {
	t.Parallel()

	title := "The Moon Is a Soul-Recycling Machine"
	first := Make(title)
	second := Make(title)
	if first != second {
		t.Fatalf("Make not deterministic: %q vs %q", first, second)
	}
}

func TestMakeTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("conspiracy ", 30)
	got := Make(long)
	if len(got) > 100 {
		t.Fatalf("slug length %d exceeds 100: %q", len(got), got)
	}
	if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
		t.Fatalf("slug has boundary hyphen: %q", got)
	}
}
