package contract

import (
	"testing"
	"time"
	"unicode/utf8"
)

// FuzzParseNowMonth fuzzes the --now parser with random month strings.
func FuzzParseNowMonth(f *testing.F) {
	seeds := []string{"", "2025-10", "2025-13", "1999-01", "10-2025", "abcd-ef", " 2024-02 "}
	for _, seed := range seeds {
		f.Add(seed)
	}

	clock := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseNowMonth(s, clock)
		if err != nil {
			return
		}
		if got.Day() != 1 {
			t.Errorf("ParseNowMonth(%q) = %v, want first day of month", s, got)
		}
	})
}

// FuzzTruncateText checks that truncation never exceeds the requested width.
func FuzzTruncateText(f *testing.F) {
	f.Add("Paper Plates 60pcs", 10)
	f.Add("", 0)
	f.Add("纸盘", 4)

	f.Fuzz(func(t *testing.T, s string, width int) {
		if !utf8.ValidString(s) {
			return
		}
		got := TruncateText(s, width)
		if width > 3 && utf8.RuneCountInString(got) > width {
			t.Errorf("TruncateText(%q, %d) = %q is too wide", s, width, got)
		}
	})
}
