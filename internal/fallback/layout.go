// Package fallback lays projects out on a schematic UK drawn in a 100x100
// box, used by the viewer when no map token is configured.
package fallback

import (
	"github.com/cespare/xxhash/v2"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
	"github.com/mohammed-shakir/uk-projects-map/internal/legend"
)

type Rect struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Position struct {
	ID             string  `json:"id"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	IndustryColour string  `json:"industryColour"`
	StatusColour   string  `json:"statusColour"`
}

type Layout struct {
	Regions   []Rect     `json:"regions"`
	Positions []Position `json:"positions"`
}

var Regions = []Rect{
	{Name: string(model.Scotland), X: 30, Y: 15, Width: 40, Height: 35},
	{Name: string(model.NorthernIreland), X: 5, Y: 35, Width: 20, Height: 20},
	{Name: string(model.England), X: 25, Y: 45, Width: 50, Height: 45},
	{Name: string(model.Wales), X: 15, Y: 55, Width: 15, Height: 25},
}

var basePositions = map[model.Region][2]float64{
	model.Scotland:        {45, 30},
	model.NorthernIreland: {15, 45},
	model.England:         {50, 65},
	model.Wales:           {22, 67},
}

// half-width of the jitter window around a region's base position
const spread = 5.0

// Place returns the schematic position of a project. The offset inside
// [-5, 5) on each axis is derived from the project ID, so a project always
// lands on the same spot.
func Place(p *model.Project) (x, y float64) {
	base, ok := basePositions[p.Location.Region]
	if !ok {
		base = basePositions[model.England]
	}
	h := xxhash.Sum64String(p.ID)
	return base[0] + offset(uint32(h)), base[1] + offset(uint32(h>>32))
}

func offset(v uint32) float64 {
	return float64(v)/float64(1<<32)*2*spread - spread
}

func Build(ps []*model.Project) Layout {
	out := Layout{
		Regions:   Regions,
		Positions: make([]Position, 0, len(ps)),
	}
	for _, p := range ps {
		x, y := Place(p)
		out.Positions = append(out.Positions, Position{
			ID:             p.ID,
			X:              x,
			Y:              y,
			IndustryColour: legend.IndustryColour(p.Industry.Category),
			StatusColour:   legend.StatusColour(string(p.Status)),
		})
	}
	return out
}
