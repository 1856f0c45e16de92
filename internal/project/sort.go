package project

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

type SortMode string

const (
	SortInvestmentDesc SortMode = "investment-desc"
	SortInvestmentAsc  SortMode = "investment-asc"
	SortDateDesc       SortMode = "date-desc"
	SortDateAsc        SortMode = "date-asc"
	SortJobsDesc       SortMode = "jobs-desc"
	SortName           SortMode = "name-asc"

	DefaultSort = SortInvestmentDesc
)

var SortModes = []SortMode{
	SortInvestmentDesc, SortInvestmentAsc, SortDateDesc, SortDateAsc, SortJobsDesc, SortName,
}

// ParseSortMode maps a query value onto a mode; empty selects the default.
func ParseSortMode(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSort, nil
	}
	for _, m := range SortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Compare orders a before b (negative), after (positive) or equal.
func (m SortMode) Compare(a, b *model.Project) int {
	switch m {
	case SortInvestmentAsc:
		return cmp.Compare(a.Investment.Amount, b.Investment.Amount)
	case SortDateDesc:
		return compareDates(b, a)
	case SortDateAsc:
		return compareDates(a, b)
	case SortJobsDesc:
		return cmp.Compare(b.Employment.JobsCreated, a.Employment.JobsCreated)
	case SortName:
		return strings.Compare(strings.ToLower(a.ProjectName), strings.ToLower(b.ProjectName))
	default:
		return cmp.Compare(b.Investment.Amount, a.Investment.Amount)
	}
}

// unparseable dates sort as the zero time
func compareDates(a, b *model.Project) int {
	da, _ := ParseDate(a.Timeline.AnnouncementDate)
	db, _ := ParseDate(b.Timeline.AnnouncementDate)
	return da.Compare(db)
}

// Sort returns a sorted copy; the input is not modified.
func Sort(ps []*model.Project, m SortMode) []*model.Project {
	out := slices.Clone(ps)
	slices.SortStableFunc(out, m.Compare)
	return out
}
