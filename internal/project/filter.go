// Package project filters, sorts and summarises project records.
package project

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

// Criteria is the dashboard filter state. Empty sets and zero bounds mean
// no constraint.
type Criteria struct {
	SearchTerm    string
	Industries    []string
	Statuses      []string
	Regions       []string
	InvestmentMin float64
	InvestmentMax float64 // 0 or +Inf for unbounded
	AnnouncedFrom time.Time
	AnnouncedTo   time.Time
}

func (c Criteria) maxBounded() bool {
	return c.InvestmentMax > 0 && !math.IsInf(c.InvestmentMax, 1)
}

// Active counts the filters that constrain the result, as shown in the
// filter panel badge.
func (c Criteria) Active() int {
	n := len(c.Industries) + len(c.Statuses) + len(c.Regions)
	if c.InvestmentMin > 0 || c.maxBounded() {
		n++
	}
	if strings.TrimSpace(c.SearchTerm) != "" {
		n++
	}
	if !c.AnnouncedFrom.IsZero() || !c.AnnouncedTo.IsZero() {
		n++
	}
	return n
}

func (c Criteria) Match(p *model.Project) bool {
	if p == nil {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(c.SearchTerm)); term != "" {
		if !strings.Contains(strings.ToLower(p.ProjectName), term) &&
			!strings.Contains(strings.ToLower(p.CompanyName), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.Location.City), term) {
			return false
		}
	}
	if len(c.Regions) > 0 && !slices.Contains(c.Regions, string(p.Location.Region)) {
		return false
	}
	if len(c.Industries) > 0 && !slices.Contains(c.Industries, p.Industry.Category) {
		return false
	}
	if c.InvestmentMin > 0 || c.maxBounded() {
		amount := p.Investment.Amount
		if amount < c.InvestmentMin {
			return false
		}
		if c.maxBounded() && amount > c.InvestmentMax {
			return false
		}
	}
	if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, string(p.Status)) {
		return false
	}
	if !c.AnnouncedFrom.IsZero() || !c.AnnouncedTo.IsZero() {
		d, ok := ParseDate(p.Timeline.AnnouncementDate)
		if !ok {
			return false
		}
		if !c.AnnouncedFrom.IsZero() && d.Before(c.AnnouncedFrom) {
			return false
		}
		if !c.AnnouncedTo.IsZero() && d.After(c.AnnouncedTo) {
			return false
		}
	}
	return true
}

// Canonical renders c so that criteria render alike only when Match treats
// them alike: sets are sorted and deduplicated, the search term is trimmed
// and lowercased, unbounded limits are omitted and dates keep their full
// instant.
func (c Criteria) Canonical() string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	set := func(xs []string) string {
		ys := slices.Clone(xs)
		slices.Sort(ys)
		return strings.Join(slices.Compact(ys), ",")
	}
	date := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	}

	add("q", strings.ToLower(strings.TrimSpace(c.SearchTerm)))
	add("industry", set(c.Industries))
	add("status", set(c.Statuses))
	add("region", set(c.Regions))
	if c.InvestmentMin > 0 {
		add("min", strconv.FormatFloat(c.InvestmentMin, 'f', -1, 64))
	}
	if c.maxBounded() {
		add("max", strconv.FormatFloat(c.InvestmentMax, 'f', -1, 64))
	}
	add("from", date(c.AnnouncedFrom))
	add("to", date(c.AnnouncedTo))
	return strings.Join(parts, ";")
}

// Filter keeps the matching projects in input order.
func Filter(ps []*model.Project, c Criteria) []*model.Project {
	out := make([]*model.Project, 0, len(ps))
	for _, p := range ps {
		if c.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// ParseDate accepts an ISO date or RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano, "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
