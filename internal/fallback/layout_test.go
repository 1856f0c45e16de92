package fallback

import (
	"fmt"
	"testing"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

func TestPlace_DeterministicAndWithinWindow(t *testing.T) {
	for _, region := range model.Regions {
		base := basePositions[region]
		for i := range 200 {
			p := &model.Project{ID: fmt.Sprintf("%s-%d", region, i), Location: model.Location{Region: region}}
			x, y := Place(p)
			x2, y2 := Place(p)
			if x != x2 || y != y2 {
				t.Fatalf("%s: position changed between calls", p.ID)
			}
			if x < base[0]-spread || x >= base[0]+spread || y < base[1]-spread || y >= base[1]+spread {
				t.Fatalf("%s: (%.2f,%.2f) outside window around %v", p.ID, x, y, base)
			}
		}
	}
}

func TestPlace_UnknownRegionUsesEngland(t *testing.T) {
	p := &model.Project{ID: "x", Location: model.Location{Region: "Atlantis"}}
	x, y := Place(p)
	base := basePositions[model.England]
	if x < base[0]-spread || x >= base[0]+spread || y < base[1]-spread || y >= base[1]+spread {
		t.Fatalf("(%.2f,%.2f) not near England base %v", x, y, base)
	}
}

func TestBuild_OnePositionPerProject(t *testing.T) {
	ps := []*model.Project{
		{ID: "a", Location: model.Location{Region: model.Wales}, Industry: model.Industry{Category: "Battery"}, Status: model.StatusPlanning},
		{ID: "b", Location: model.Location{Region: model.Scotland}},
	}
	l := Build(ps)
	if len(l.Regions) != 4 || len(l.Positions) != 2 {
		t.Fatalf("regions=%d positions=%d", len(l.Regions), len(l.Positions))
	}
	if l.Positions[0].IndustryColour != "#F59E0B" || l.Positions[0].StatusColour != "#F59E0B" {
		t.Fatalf("colours=%+v", l.Positions[0])
	}
	if l.Positions[1].ID != "b" {
		t.Fatalf("order not preserved: %+v", l.Positions)
	}
}
