// Package format renders amounts, counts and dates the way UK readers
// expect them.
package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BritishEnglish)

// Currency abbreviates a GBP amount: £2.6bn, £500m, £750k, £999.
func Currency(amount float64) string {
	switch {
	case amount >= 1_000_000_000:
		return "£" + fixed(amount/1_000_000_000, 1) + "bn"
	case amount >= 1_000_000:
		return "£" + fixed(amount/1_000_000, 0) + "m"
	case amount >= 1_000:
		return "£" + fixed(amount/1_000, 0) + "k"
	default:
		return "£" + Decimal(amount)
	}
}

// Number groups thousands: 12500 -> "12,500".
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// Decimal formats with thousands grouping and up to three fraction digits.
func Decimal(f float64) string {
	f = math.Round(f*1000) / 1000
	whole, frac := math.Modf(math.Abs(f))
	s := printer.Sprintf("%d", int64(whole))
	if f < 0 {
		s = "-" + s
	}
	if frac == 0 {
		return s
	}
	fs := strconv.FormatFloat(frac, 'f', 3, 64)
	fs = strings.TrimRight(fs[1:], "0")
	return s + fs
}

// rounds half away from zero
func fixed(f float64, digits int) string {
	p := math.Pow(10, float64(digits))
	return strconv.FormatFloat(math.Round(f*p)/p, 'f', digits, 64)
}

var errEmptyAmount = errors.New("empty amount")

// ParseDisplayAmount reverses Currency: "£2.5bn" -> 2.5e9.
func ParseDisplayAmount(s string) (float64, error) {
	clean := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "£", "")))
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return 0, errEmptyAmount
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(clean, "bn"):
		mult, clean = 1_000_000_000, strings.TrimSuffix(clean, "bn")
	case strings.HasSuffix(clean, "m"):
		mult, clean = 1_000_000, strings.TrimSuffix(clean, "m")
	case strings.HasSuffix(clean, "k"):
		mult, clean = 1_000, strings.TrimSuffix(clean, "k")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(clean), 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v * mult, nil
}
