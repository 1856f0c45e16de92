package cluster

import (
	"log/slog"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

const StrategyGreedy = "greedy"

// Greedy groups each unvisited point with every unvisited neighbour inside
// the threshold. Neighbours are not expanded further, so membership depends
// on input order.
type Greedy struct {
	logger *slog.Logger
}

var _ Aggregator = (*Greedy)(nil)

func NewGreedy(logger *slog.Logger) *Greedy {
	return &Greedy{logger: orDiscard(logger)}
}

func (g *Greedy) Name() string { return StrategyGreedy }

func (g *Greedy) Aggregate(points []model.ProjectPoint, zoom float64) ([]model.Marker, error) {
	p, err := newPass(g.logger, StrategyGreedy, points, zoom)
	if err != nil {
		return nil, err
	}
	if RegimeFor(zoom) == RegimeOff {
		return p.singles(), nil
	}
	threshold := Threshold(zoom)

	out := make([]model.Marker, 0, len(points))
	consumed := make([]bool, len(points))
	for i := range points {
		if consumed[i] {
			continue
		}
		consumed[i] = true
		if !p.finite[i] {
			out = append(out, p.single(i))
			continue
		}

		members := []int{i}
		for j := range points {
			if consumed[j] || !p.finite[j] {
				continue
			}
			if distance(points[i], points[j]) < threshold {
				members = append(members, j)
			}
		}
		if len(members) == 1 {
			out = append(out, p.single(i))
			continue
		}
		for _, j := range members[1:] {
			consumed[j] = true
		}
		out = append(out, p.cluster(members))
	}
	return out, nil
}
