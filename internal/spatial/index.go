// Package spatial indexes projects by H3 cell to answer viewport queries.
package spatial

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
	"github.com/mohammed-shakir/uk-projects-map/internal/mapper"
	h3mapper "github.com/mohammed-shakir/uk-projects-map/internal/mapper/h3"
)

const (
	// viewports wider than this many degrees are answered by a linear scan
	maxIndexedSpan = 20.0
	// so are viewports whose cover would need more cells than this
	maxCoverCells = 4096
	// and viewports whose shorter side spans fewer average cell edges than
	// this, which the cell cover can miss
	minSideEdges = 6.0

	res0CellKm2 = 4_357_449.0
	kmPerDeg    = 111.32
	deg2Km2     = kmPerDeg * kmPerDeg
)

// Index is immutable after Build and safe for concurrent readers. Every
// project is bucketed at each resolution from 0 to the index resolution.
type Index struct {
	mapr     mapper.Interface
	res      int
	projects []*model.Project
	byCell   []map[string][]int // [res][cell] -> positions
}

func Build(ps []*model.Project, res int, mapr mapper.Interface) (*Index, error) {
	if res < 0 || res > 15 {
		return nil, fmt.Errorf("invalid index resolution %d", res)
	}
	if mapr == nil {
		mapr = h3mapper.New()
	}
	idx := &Index{
		mapr:     mapr,
		res:      res,
		projects: ps,
		byCell:   make([]map[string][]int, res+1),
	}
	for r := range idx.byCell {
		idx.byCell[r] = make(map[string][]int)
	}
	for i, p := range ps {
		for r := 0; r <= res; r++ {
			cell, err := mapr.CellForPoint(p.Location.Coordinates, r)
			if err != nil {
				return nil, fmt.Errorf("index project %q: %w", p.ID, err)
			}
			idx.byCell[r][cell] = append(idx.byCell[r][cell], i)
		}
	}
	return idx, nil
}

func (x *Index) Res() int { return x.res }

func (x *Index) Len() int { return len(x.projects) }

// InBBox returns the projects inside bb, restricted to allowed when it is
// non-nil, in index order.
func (x *Index) InBBox(bb model.BBox, zoom float64, allowed map[string]struct{}, logger *slog.Logger) []*model.Project {
	keep := func(p *model.Project) bool {
		if allowed != nil {
			if _, ok := allowed[p.ID]; !ok {
				return false
			}
		}
		return bb.Contains(p.Location.Coordinates)
	}

	if bb.X2-bb.X1 > maxIndexedSpan || bb.Y2-bb.Y1 > maxIndexedSpan {
		return x.scan(keep)
	}

	qres := h3mapper.ResForZoom(zoom, x.res)
	if estimateCells(bb, qres) > maxCoverCells || minSideKm(bb) < minSideEdges*edgeKm(qres) {
		return x.scan(keep)
	}
	cells, err := x.mapr.CellsForBBox(bb, qres)
	if err != nil {
		if logger != nil {
			logger.Warn("bbox cover failed; scanning", "bbox", bb.String(), "res", qres, "err", err)
		}
		return x.scan(keep)
	}

	hit := make([]bool, len(x.projects))
	for _, c := range cells {
		for _, i := range x.byCell[qres][c] {
			hit[i] = true
		}
	}

	out := make([]*model.Project, 0)
	for i, p := range x.projects {
		if hit[i] && keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (x *Index) scan(keep func(*model.Project) bool) []*model.Project {
	out := make([]*model.Project, 0)
	for _, p := range x.projects {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// rough upper bound on the number of cells covering bb at res
func estimateCells(bb model.BBox, res int) float64 {
	areaKm2 := (bb.X2 - bb.X1) * (bb.Y2 - bb.Y1) * deg2Km2
	return areaKm2 / (res0CellKm2 / math.Pow(7, float64(res)))
}

// shorter side of bb in km, longitude measured at its poleward edge
func minSideKm(bb model.BBox) float64 {
	lat := math.Max(math.Abs(bb.Y1), math.Abs(bb.Y2))
	w := (bb.X2 - bb.X1) * kmPerDeg * math.Cos(lat*math.Pi/180)
	h := (bb.Y2 - bb.Y1) * kmPerDeg
	return math.Min(w, h)
}

// average hexagon edge at res, derived from the average cell area
func edgeKm(res int) float64 {
	area := res0CellKm2 / math.Pow(7, float64(res))
	return math.Sqrt(2 * area / (3 * math.Sqrt(3)))
}
