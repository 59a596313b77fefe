package domain

import (
	"testing"
	"time"
)

func TestParseClaimDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"current century", "01/15/24", "2024-01-15"},
		{"previous century", "06/30/87", "1987-06-30"},
		{"pivot low", "12/31/49", "2049-12-31"},
		{"pivot high", "01/01/50", "1950-01-01"},
		{"four digit year", "03/05/2026", "2026-03-05"},
		{"padded whitespace", " 02/01/24 ", "2024-02-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseClaimDate(tc.in)
			if got == nil {
				t.Fatalf("ParseClaimDate(%q) = nil", tc.in)
			}
			if got.Format("2006-01-02") != tc.want {
				t.Fatalf("ParseClaimDate(%q) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
			}
		})
	}
}

func TestParseClaimDateInvalid(t *testing.T) {
	for _, in := range []string{"", "not a date", "13/01/24", "01/32/24", "01-15-24", "01/15"} {
		if got := ParseClaimDate(in); got != nil {
			t.Errorf("ParseClaimDate(%q) = %v, want nil", in, got)
		}
	}
}

func TestFormatClaimDate(t *testing.T) {
	if got := FormatClaimDate(nil); got != "" {
		t.Fatalf("FormatClaimDate(nil) = %q", got)
	}
	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := FormatClaimDate(&d); got != "01/05/24" {
		t.Fatalf("FormatClaimDate() = %q, want 01/05/24", got)
	}
}
