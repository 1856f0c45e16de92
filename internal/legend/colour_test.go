package legend

import "testing"

func TestColours_Fallbacks(t *testing.T) {
	if got := IndustryColour("Battery"); got != "#F59E0B" {
		t.Fatalf("Battery=%s", got)
	}
	if got := IndustryColour("Shipbuilding"); got != IndustryColour("Other") {
		t.Fatalf("unknown industry=%s want Other colour", got)
	}
	if got := StatusColour("Cancelled"); got != "#EF4444" {
		t.Fatalf("Cancelled=%s", got)
	}
	if got := StatusColour(""); got != StatusColour("Announced") {
		t.Fatalf("unknown status=%s want Announced colour", got)
	}
}

func TestDefault_CoversEveryKey(t *testing.T) {
	l := Default()
	if len(l.Industries) != len(industryColours) || len(l.Statuses) != len(statusColours) {
		t.Fatalf("legend sizes %d/%d", len(l.Industries), len(l.Statuses))
	}
	for _, e := range l.Industries {
		if e.Colour == "" {
			t.Fatalf("industry %q has no colour", e.Label)
		}
	}
}
