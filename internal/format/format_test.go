package format

import (
	"testing"
	"time"
)

func TestCurrency(t *testing.T) {
	cases := map[float64]string{
		2_600_000_000: "£2.6bn",
		1_000_000_000: "£1.0bn",
		500_000_000:   "£500m",
		2_500_000:     "£3m",
		750_000:       "£750k",
		999:           "£999",
		12.5:          "£12.5",
		0:             "£0",
	}
	for in, want := range cases {
		if got := Currency(in); got != want {
			t.Fatalf("Currency(%v)=%q want %q", in, got, want)
		}
	}
}

func TestNumber(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 12500: "12,500", 1234567: "1,234,567"}
	for in, want := range cases {
		if got := Number(in); got != want {
			t.Fatalf("Number(%d)=%q want %q", in, got, want)
		}
	}
}

func TestParseDisplayAmount(t *testing.T) {
	cases := map[string]float64{
		"£2.5bn": 2.5e9,
		"£500m":  5e8,
		"£750K":  7.5e5,
		"£1,200": 1200,
	}
	for in, want := range cases {
		got, err := ParseDisplayAmount(in)
		if err != nil {
			t.Fatalf("ParseDisplayAmount(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseDisplayAmount(%q)=%v want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "£", "£lots"} {
		if _, err := ParseDisplayAmount(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDates(t *testing.T) {
	if got := Date("2024-01-01"); got != "01/01/2024" {
		t.Fatalf("Date=%q", got)
	}
	if got := DateLong("2024-01-01"); got != "1st January 2024" {
		t.Fatalf("DateLong=%q", got)
	}
	if got := DateLong("2023-03-12"); got != "12th March 2023" {
		t.Fatalf("DateLong=%q", got)
	}
	if got := DateLong("2023-03-22T10:00:00Z"); got != "22nd March 2023" {
		t.Fatalf("DateLong=%q", got)
	}
	if got := DateShort("2021-07-15"); got != "Jul 2021" {
		t.Fatalf("DateShort=%q", got)
	}
	for _, f := range []func(string) string{Date, DateLong, DateShort} {
		if got := f("not-a-date"); got != InvalidDate {
			t.Fatalf("invalid input rendered as %q", got)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"2024-06-15": "Today",
		"2024-06-14": "Yesterday",
		"2024-06-01": "14 days ago",
		"2024-03-01": "3 months ago",
		"2021-06-01": "3 years ago",
		"garbage":    InvalidDate,
	}
	for in, want := range cases {
		if got := RelativeTime(in, now); got != want {
			t.Fatalf("RelativeTime(%q)=%q want %q", in, got, want)
		}
	}
}
