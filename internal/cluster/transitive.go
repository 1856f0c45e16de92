package cluster

import (
	"log/slog"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

const StrategyTransitive = "transitive"

// Transitive merges every chain of points linked by sub-threshold hops into
// one cluster, so the grouping does not depend on input order. Clusters are
// emitted in order of their first member.
type Transitive struct {
	logger *slog.Logger
}

var _ Aggregator = (*Transitive)(nil)

func NewTransitive(logger *slog.Logger) *Transitive {
	return &Transitive{logger: orDiscard(logger)}
}

func (t *Transitive) Name() string { return StrategyTransitive }

func (t *Transitive) Aggregate(points []model.ProjectPoint, zoom float64) ([]model.Marker, error) {
	p, err := newPass(t.logger, StrategyTransitive, points, zoom)
	if err != nil {
		return nil, err
	}
	if RegimeFor(zoom) == RegimeOff {
		return p.singles(), nil
	}
	threshold := Threshold(zoom)

	uf := newUnionFind(len(points))
	for i := range points {
		if !p.finite[i] {
			continue
		}
		for j := i + 1; j < len(points); j++ {
			if p.finite[j] && distance(points[i], points[j]) < threshold {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]int, len(points))
	order := make([]int, 0, len(points))
	for i := range points {
		r := uf.find(i)
		if _, ok := groups[r]; !ok {
			order = append(order, r)
		}
		groups[r] = append(groups[r], i)
	}

	out := make([]model.Marker, 0, len(order))
	for _, r := range order {
		members := groups[r]
		if len(members) == 1 {
			out = append(out, p.single(members[0]))
			continue
		}
		out = append(out, p.cluster(members))
	}
	return out, nil
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
