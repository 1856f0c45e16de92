package router

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
	"github.com/mohammed-shakir/uk-projects-map/internal/markers"
	"github.com/mohammed-shakir/uk-projects-map/internal/project"
)

var statuses = []string{
	string(model.StatusAnnounced), string(model.StatusPlanning), string(model.StatusConstruction),
	string(model.StatusOperational), string(model.StatusCancelled), string(model.StatusDelayed),
}

// ParseCriteria reads the dashboard filters. Set-valued filters accept
// repeated parameters and comma-separated lists.
func ParseCriteria(r *http.Request) (project.Criteria, error) {
	q := r.URL.Query()
	c := project.Criteria{
		SearchTerm: strings.TrimSpace(q.Get("q")),
		Industries: multi(q["industry"]),
		Statuses:   multi(q["status"]),
		Regions:    multi(q["region"]),
	}

	for _, s := range c.Statuses {
		if !slices.Contains(statuses, s) {
			return project.Criteria{}, fmt.Errorf("unknown status %q", s)
		}
	}
	for _, reg := range c.Regions {
		if !slices.Contains(model.Regions, model.Region(reg)) {
			return project.Criteria{}, fmt.Errorf("unknown region %q", reg)
		}
	}

	var err error
	if c.InvestmentMin, err = amount(q.Get("min")); err != nil {
		return project.Criteria{}, fmt.Errorf("min: %w", err)
	}
	if c.InvestmentMax, err = amount(q.Get("max")); err != nil {
		return project.Criteria{}, fmt.Errorf("max: %w", err)
	}
	if c.InvestmentMax > 0 && c.InvestmentMin > c.InvestmentMax {
		return project.Criteria{}, errors.New("min must not exceed max")
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, ok := project.ParseDate(v)
		if !ok {
			return project.Criteria{}, fmt.Errorf("from: invalid date %q", v)
		}
		c.AnnouncedFrom = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, ok := project.ParseDate(v)
		if !ok {
			return project.Criteria{}, fmt.Errorf("to: invalid date %q", v)
		}
		c.AnnouncedTo = d
	}
	if !c.AnnouncedFrom.IsZero() && !c.AnnouncedTo.IsZero() && c.AnnouncedTo.Before(c.AnnouncedFrom) {
		return project.Criteria{}, errors.New("to must not be before from")
	}
	return c, nil
}

// ParseMarkersRequest reads zoom (required), the optional viewport bbox and
// the filters.
func ParseMarkersRequest(r *http.Request) (markers.Request, error) {
	rawZoom := strings.TrimSpace(r.URL.Query().Get("zoom"))
	if rawZoom == "" {
		return markers.Request{}, errors.New("missing required parameter: zoom")
	}
	zoom, err := parseFloat(rawZoom)
	if err != nil {
		return markers.Request{}, fmt.Errorf("zoom: %w", err)
	}

	var bbox *model.BBox
	if raw := strings.TrimSpace(r.URL.Query().Get("bbox")); raw != "" {
		bb, err := parseBBOX(raw)
		if err != nil {
			return markers.Request{}, fmt.Errorf("invalid bbox: %w", err)
		}
		bbox = &bb
	}

	c, err := ParseCriteria(r)
	if err != nil {
		return markers.Request{}, err
	}
	return markers.Request{Criteria: c, BBox: bbox, Zoom: zoom}, nil
}

func multi(vals []string) []string {
	var out []string
	for _, v := range vals {
		for s := range strings.SplitSeq(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func amount(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	f, err := parseFloat(v)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, errors.New("must not be negative")
	}
	return f, nil
}

// x1,y1,x2,y2 with an optional trailing EPSG:4326
func parseBBOX(bboxParam string) (model.BBox, error) {
	parts := strings.Split(bboxParam, ",")
	if len(parts) != 4 && len(parts) != 5 {
		return model.BBox{}, errors.New("expected 4 or 5 comma-separated values: x1,y1,x2,y2[,EPSG:4326]")
	}
	xMin, err := parseFloat(parts[0])
	if err != nil {
		return model.BBox{}, fmt.Errorf("x1: %w", err)
	}
	yMin, err := parseFloat(parts[1])
	if err != nil {
		return model.BBox{}, fmt.Errorf("y1: %w", err)
	}
	xMax, err := parseFloat(parts[2])
	if err != nil {
		return model.BBox{}, fmt.Errorf("x2: %w", err)
	}
	yMax, err := parseFloat(parts[3])
	if err != nil {
		return model.BBox{}, fmt.Errorf("y2: %w", err)
	}

	srid := "EPSG:4326"
	if len(parts) == 5 {
		srid = strings.ToUpper(strings.TrimSpace(parts[4]))
		if srid != "EPSG:4326" {
			return model.BBox{}, fmt.Errorf("only EPSG:4326 is supported (got %q)", srid)
		}
	}

	if !(xMin >= -180 && xMin <= 180 && xMax >= -180 && xMax <= 180) {
		return model.BBox{}, errors.New("longitude must be in [-180,180]")
	}
	if !(yMin >= -90 && yMin <= 90 && yMax >= -90 && yMax <= 90) {
		return model.BBox{}, errors.New("latitude must be in [-90,90]")
	}
	if xMax <= xMin || yMax <= yMin {
		return model.BBox{}, errors.New("coordinates must satisfy x2>x1 and y2>y1")
	}
	return model.BBox{X1: xMin, Y1: yMin, X2: xMax, Y2: yMax, SRID: srid}, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %q", v)
	}
	return f, nil
}
