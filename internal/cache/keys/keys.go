// Package keys builds cache keys for marker responses.
package keys

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

const (
	prefix             = "markers"
	maxCriteriaTextLen = 120
)

// Markers identifies one marker response: the dataset it was computed
// from, the aggregation strategy, the zoom regime, the viewport and the
// canonical filter criteria. Keys are ASCII and end in a 64-bit hash of
// every component, so truncating the readable criteria cannot collide.
func Markers(dataset, strategy, regime string, bb model.BBox, criteria string) string {
	dataset = strings.TrimSpace(dataset)
	strategy = strings.TrimSpace(strategy)
	regime = strings.TrimSpace(regime)
	// criteria are hashed verbatim: inner whitespace is significant to a
	// substring search
	crit := criteria
	critSafe := sanitizeForKey(crit)
	if len(critSafe) > maxCriteriaTextLen {
		critSafe = critSafe[:maxCriteriaTextLen]
	}
	box := bboxText(bb)

	d := xxhash.New()
	for _, part := range []string{dataset, strategy, regime, box, crit} {
		_, _ = d.WriteString(part)
		_, _ = d.Write([]byte{0})
	}

	return fmt.Sprintf("%s:%s:%s:%s:bbox=%s:crit=%s:f=%016x",
		prefix,
		sanitizeForKey(dataset),
		sanitizeForKey(strategy),
		sanitizeForKey(regime),
		sanitizeForKey(box),
		critSafe,
		d.Sum64())
}

// SnapBBox rounds bbox corners to the 1e-6 degree grid keys are written
// at. Filtering with the snapped box keeps a key and its contents in step.
func SnapBBox(bb model.BBox) model.BBox {
	snap := func(v float64) float64 { return math.Round(v*1e6) / 1e6 }
	bb.X1, bb.Y1, bb.X2, bb.Y2 = snap(bb.X1), snap(bb.Y1), snap(bb.X2), snap(bb.Y2)
	return bb
}

// bbox corners at ~10cm; the SRID is fixed to EPSG:4326 upstream
func bboxText(bb model.BBox) string {
	return fmt.Sprintf("%.6f_%.6f_%.6f_%.6f", bb.X1, bb.Y1, bb.X2, bb.Y2)
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == '_' || r == '-' || r == '=' || r == '.' || r == ',' || r == ';':
			out = r
		default:
			// any other rune (including ':' and non-ASCII) becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r <= unicode.MaxASCII && unicode.IsDigit(r))
}
