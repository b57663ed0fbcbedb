package dates_test

import (
	"testing"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/dates"
)

// Contract: legacy and T-separated spellings converge on the canonical form,
// everything else passes through untouched.
func Test_Normalize_ReturnsCanonicalForm_When_InputRecognized(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "date only stays unchanged", in: "2026-02-09", want: "2026-02-09", ok: true},
		{name: "date time stays unchanged", in: "2026-02-09 16:50", want: "2026-02-09 16:50", ok: true},
		{name: "T separator converted to space", in: "2026-02-09T16:50", want: "2026-02-09 16:50", ok: true},
		{name: "legacy dashed day first", in: "05-03-26", want: "2026-03-05", ok: true},
		{name: "legacy slashed day first", in: "05/03/26", want: "2026-03-05", ok: true},
		{name: "legacy dotted day first", in: "05.03.26", want: "2026-03-05", ok: true},
		{name: "legacy high two digit year", in: "01-01-99", want: "2099-01-01", ok: true},
		{name: "free text passes through", in: "next tuesday", want: "next tuesday", ok: false},
		{name: "empty passes through", in: "", want: "", ok: false},
		{name: "impossible date passes through", in: "2026-13-45", want: "2026-13-45", ok: false},
		{name: "currency string passes through", in: "$15,000", want: "$15,000", ok: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := dates.Normalize(tc.in)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}

			if ok != tc.ok {
				t.Fatalf("Normalize(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
		})
	}
}

// Contract: the time-of-day component is reported but never fabricated.
func Test_Parse_ReportsClock_When_TimePresent(t *testing.T) {
	t.Parallel()

	_, hasClock, ok := dates.Parse("2026-02-09 16:50")
	if !ok || !hasClock {
		t.Fatalf("Parse date+time: ok=%v hasClock=%v, want true/true", ok, hasClock)
	}

	_, hasClock, ok = dates.Parse("2026-02-09")
	if !ok || hasClock {
		t.Fatalf("Parse date: ok=%v hasClock=%v, want true/false", ok, hasClock)
	}

	_, _, ok = dates.Parse("not a date")
	if ok {
		t.Fatal("Parse accepted unrecognized input")
	}
}
