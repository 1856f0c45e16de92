package project

import "github.com/mohammed-shakir/uk-projects-map/internal/core/model"

func Stats(ps []*model.Project) model.Stats {
	s := model.Stats{
		ByRegion:   map[string]model.Aggregate{},
		ByIndustry: map[string]model.Aggregate{},
		ByStatus:   map[string]int{},
	}
	for _, p := range ps {
		s.TotalProjects++
		s.TotalInvestment += p.Investment.Amount
		s.TotalJobs += p.Employment.JobsCreated

		s.ByRegion[string(p.Location.Region)] = add(s.ByRegion[string(p.Location.Region)], p)
		s.ByIndustry[p.Industry.Category] = add(s.ByIndustry[p.Industry.Category], p)
		s.ByStatus[string(p.Status)]++
	}
	return s
}

func add(a model.Aggregate, p *model.Project) model.Aggregate {
	a.Projects++
	a.Investment += p.Investment.Amount
	a.Jobs += p.Employment.JobsCreated
	return a
}

// TotalInvestment sums investment amounts in GBP.
func TotalInvestment(ps []*model.Project) float64 {
	var sum float64
	for _, p := range ps {
		sum += p.Investment.Amount
	}
	return sum
}
