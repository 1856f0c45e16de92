package h3mapper

import (
	"errors"
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
	"github.com/mohammed-shakir/uk-projects-map/internal/mapper"
)

type Mapper struct{}

var _ mapper.Interface = (*Mapper)(nil)

func New() *Mapper { return &Mapper{} }

func (m *Mapper) CellForPoint(c model.Coordinates, res int) (string, error) {
	if err := validateRes(res); err != nil {
		return "", err
	}
	if !c.Finite() {
		return "", errors.New("non-finite coordinates")
	}
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: c.Latitude, Lng: c.Longitude}, res)
	if err != nil {
		return "", fmt.Errorf("h3 latlng to cell: %w", err)
	}
	return cell.String(), nil
}

// CellsForBBox covers a viewport: the polyfill of the box plus the cells of
// its corners and centre, grown by two rings so that points close to the
// edge are not lost to cell-centre containment. The cover is complete only
// when both sides of the box span at least two cell edges; callers scan
// narrower boxes.
func (m *Mapper) CellsForBBox(bb model.BBox, res int) (model.Cells, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	if bb.X2 <= bb.X1 || bb.Y2 <= bb.Y1 {
		return nil, fmt.Errorf("degenerate bbox %s", bb)
	}
	// Build a rectangular loop (lon,lat in EPSG:4326). v4 wants degrees.
	outer := h3.GeoLoop{
		{Lat: bb.Y1, Lng: bb.X1},
		{Lat: bb.Y1, Lng: bb.X2},
		{Lat: bb.Y2, Lng: bb.X2},
		{Lat: bb.Y2, Lng: bb.X1},
	}
	seeds, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: outer}, res)
	if err != nil {
		return nil, fmt.Errorf("h3 polyfill: %w", err)
	}
	anchors := []h3.LatLng{
		{Lat: bb.Y1, Lng: bb.X1},
		{Lat: bb.Y1, Lng: bb.X2},
		{Lat: bb.Y2, Lng: bb.X2},
		{Lat: bb.Y2, Lng: bb.X1},
		{Lat: (bb.Y1 + bb.Y2) / 2, Lng: (bb.X1 + bb.X2) / 2},
	}
	for _, ll := range anchors {
		c, err := h3.LatLngToCell(ll, res)
		if err != nil {
			return nil, fmt.Errorf("h3 latlng to cell: %w", err)
		}
		seeds = append(seeds, c)
	}

	seen := make(map[string]struct{}, len(seeds)*19)
	out := make([]string, 0, len(seeds)*19)
	for _, s := range seeds {
		ring, err := h3.GridDisk(s, 2)
		if err != nil {
			return nil, fmt.Errorf("h3 grid disk: %w", err)
		}
		for _, c := range ring {
			k := c.String()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	// sorted for determinism
	sort.Strings(out)
	return out, nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}
