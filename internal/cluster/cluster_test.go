package cluster

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

func pt(id string, lat, lng float64) model.ProjectPoint {
	return model.ProjectPoint{
		ID:      id,
		Lat:     lat,
		Lng:     lng,
		Project: &model.Project{ID: id},
	}
}

func ids(ms []model.Marker) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.MarkerID()
	}
	return out
}

func members(m model.Marker) []string {
	switch v := m.(type) {
	case model.SingleMarker:
		return []string{v.Project.ID}
	case model.ClusterMarker:
		out := make([]string, len(v.Projects))
		for i, p := range v.Projects {
			out[i] = p.ID
		}
		return out
	}
	return nil
}

func invalidPoints(t *testing.T) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "invalid_points_total" && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAggregate_NearIdenticalPointsCluster(t *testing.T) {
	in := []model.ProjectPoint{pt("a", 51.5, -0.1), pt("b", 51.5, -0.1001)}

	got, err := Aggregate(in, 5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("markers=%d want 1", len(got))
	}
	c, ok := got[0].(model.ClusterMarker)
	if !ok {
		t.Fatalf("want ClusterMarker, got %T", got[0])
	}
	if c.Count != 2 || len(c.Projects) != 2 {
		t.Fatalf("count=%d projects=%d want 2", c.Count, len(c.Projects))
	}
	if c.ID != "cluster-a" {
		t.Fatalf("id=%q want cluster-a", c.ID)
	}
	if !approx(c.Coordinates[0], -0.10005) || !approx(c.Coordinates[1], 51.5) {
		t.Fatalf("centroid=%v want [-0.10005 51.5]", c.Coordinates)
	}
}

func TestAggregate_FarApartStaySingle(t *testing.T) {
	in := []model.ProjectPoint{pt("london", 51.5, -0.1), pt("glasgow", 55.9, -3.2)}

	for _, zoom := range []float64{5, 9} {
		got, err := Aggregate(in, zoom)
		if err != nil {
			t.Fatalf("zoom %v: %v", zoom, err)
		}
		if len(got) != 2 {
			t.Fatalf("zoom %v: markers=%d want 2", zoom, len(got))
		}
		for _, m := range got {
			if _, ok := m.(model.SingleMarker); !ok {
				t.Fatalf("zoom %v: want SingleMarker, got %T", zoom, m)
			}
		}
		if want := []string{"london", "glasgow"}; !reflect.DeepEqual(ids(got), want) {
			t.Fatalf("zoom %v: order=%v want %v", zoom, ids(got), want)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	for _, zoom := range []float64{0, 5.5, 7, 12} {
		got, err := Aggregate(nil, zoom)
		if err != nil {
			t.Fatalf("zoom %v: %v", zoom, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("zoom %v: want empty non-nil slice, got %#v", zoom, got)
		}
	}
}

func TestAggregate_HighZoomDisablesClustering(t *testing.T) {
	in := []model.ProjectPoint{pt("a", 51.5, -0.1), pt("b", 51.5, -0.1), pt("c", 51.5001, -0.1)}

	got, err := Aggregate(in, 8.01)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids=%v want %v", ids(got), want)
	}
	for i, m := range got {
		s, ok := m.(model.SingleMarker)
		if !ok {
			t.Fatalf("marker %d is %T", i, m)
		}
		if s.Coordinates != [2]float64{in[i].Lng, in[i].Lat} {
			t.Fatalf("marker %d coordinates=%v want [lng lat]", i, s.Coordinates)
		}
	}

	// zoom 8 itself still clusters
	got, err = Aggregate(in, 8)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("zoom 8: markers=%d want 1", len(got))
	}
}

func TestThreshold_Bands(t *testing.T) {
	cases := []struct {
		zoom float64
		want float64
		reg  Regime
	}{
		{0, 1.0, RegimeCoarse},
		{5.99, 1.0, RegimeCoarse},
		{6, 0.5, RegimeFine},
		{8, 0.5, RegimeFine},
		{8.5, 0, RegimeOff},
	}
	for _, c := range cases {
		if got := Threshold(c.zoom); got != c.want {
			t.Fatalf("Threshold(%v)=%v want %v", c.zoom, got, c.want)
		}
		if got := RegimeFor(c.zoom); got != c.reg {
			t.Fatalf("RegimeFor(%v)=%v want %v", c.zoom, got, c.reg)
		}
	}
}

func TestAggregate_ThresholdIsStrict(t *testing.T) {
	// exactly one degree apart: not merged at the coarse threshold
	in := []model.ProjectPoint{pt("a", 50, 0), pt("b", 51, 0)}
	got, err := Aggregate(in, 4)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("markers=%d want 2", len(got))
	}

	// 0.7 apart merges when coarse, not when fine
	in = []model.ProjectPoint{pt("a", 50, 0), pt("b", 50.7, 0)}
	if got, _ := Aggregate(in, 5); len(got) != 1 {
		t.Fatalf("zoom 5: markers=%d want 1", len(got))
	}
	if got, _ := Aggregate(in, 7); len(got) != 2 {
		t.Fatalf("zoom 7: markers=%d want 2", len(got))
	}
}

func TestAggregate_SingleHopIsOrderDependent(t *testing.T) {
	a, b, c := pt("a", 50, 0), pt("b", 50.8, 0), pt("c", 51.6, 0)

	got, err := Aggregate([]model.ProjectPoint{a, b, c}, 5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("a,b,c: markers=%d want 2", len(got))
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(members(got[0]), want) {
		t.Fatalf("first cluster=%v want %v", members(got[0]), want)
	}
	if want := []string{"c"}; !reflect.DeepEqual(members(got[1]), want) {
		t.Fatalf("second marker=%v want %v", members(got[1]), want)
	}

	// visiting the bridge first pulls in both ends
	got, err = Aggregate([]model.ProjectPoint{b, a, c}, 5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 1 || got[0].(model.ClusterMarker).Count != 3 {
		t.Fatalf("b,a,c: want one cluster of 3, got %v", ids(got))
	}
}

func TestAggregate_ConservesProjects(t *testing.T) {
	in := ukSample()
	for _, zoom := range []float64{0, 3, 5.5, 6, 7.2, 8, 9, 14} {
		got, err := Aggregate(in, zoom)
		if err != nil {
			t.Fatalf("zoom %v: %v", zoom, err)
		}
		if n := model.CountProjects(got); n != len(in) {
			t.Fatalf("zoom %v: projects in markers=%d want %d", zoom, n, len(in))
		}
		seen := map[string]int{}
		markerIDs := map[string]bool{}
		for _, m := range got {
			if markerIDs[m.MarkerID()] {
				t.Fatalf("zoom %v: duplicate marker id %q", zoom, m.MarkerID())
			}
			markerIDs[m.MarkerID()] = true
			if c, ok := m.(model.ClusterMarker); ok && (c.Count < 2 || c.Count != len(c.Projects)) {
				t.Fatalf("zoom %v: bad cluster count %d/%d", zoom, c.Count, len(c.Projects))
			}
			for _, id := range members(m) {
				seen[id]++
			}
		}
		for _, p := range in {
			if seen[p.ID] != 1 {
				t.Fatalf("zoom %v: point %q appears %d times", zoom, p.ID, seen[p.ID])
			}
		}
	}
}

func TestAggregate_CentroidIsMeanOfMembers(t *testing.T) {
	in := ukSample()
	byID := map[string]model.ProjectPoint{}
	for _, p := range in {
		byID[p.ID] = p
	}

	got, err := Aggregate(in, 5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	clusters := 0
	for _, m := range got {
		c, ok := m.(model.ClusterMarker)
		if !ok {
			continue
		}
		clusters++
		var lat, lng float64
		for _, p := range c.Projects {
			lat += byID[p.ID].Lat
			lng += byID[p.ID].Lng
		}
		n := float64(len(c.Projects))
		if !approx(c.Coordinates[0], lng/n) || !approx(c.Coordinates[1], lat/n) {
			t.Fatalf("%s centroid=%v want [%v %v]", c.ID, c.Coordinates, lng/n, lat/n)
		}
		for _, p := range c.Projects {
			q := byID[p.ID]
			if q.Lat > c.Bounds.North || q.Lat < c.Bounds.South || q.Lng > c.Bounds.East || q.Lng < c.Bounds.West {
				t.Fatalf("%s bounds %+v exclude member %s", c.ID, c.Bounds, p.ID)
			}
		}
	}
	if clusters == 0 {
		t.Fatalf("expected at least one cluster in the sample at zoom 5")
	}
}

func TestAggregate_FarPointsNeverShareCluster(t *testing.T) {
	in := ukSample()
	byID := map[string]model.ProjectPoint{}
	for _, p := range in {
		byID[p.ID] = p
	}
	for _, zoom := range []float64{4, 7} {
		th := Threshold(zoom)
		got, err := Aggregate(in, zoom)
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		for _, m := range got {
			c, ok := m.(model.ClusterMarker)
			if !ok {
				continue
			}
			// every member is within threshold of the representative
			rep := byID[c.Projects[0].ID]
			for _, p := range c.Projects[1:] {
				if d := distance(rep, byID[p.ID]); d >= th {
					t.Fatalf("zoom %v: %s and %s are %.3f apart (threshold %v)", zoom, rep.ID, p.ID, d, th)
				}
			}
		}
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	in := ukSample()
	for _, agg := range []Aggregator{NewGreedy(nil), NewTransitive(nil)} {
		a, err := agg.Aggregate(in, 5.5)
		if err != nil {
			t.Fatalf("%s: %v", agg.Name(), err)
		}
		b, err := agg.Aggregate(in, 5.5)
		if err != nil {
			t.Fatalf("%s: %v", agg.Name(), err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("%s: outputs differ between identical calls", agg.Name())
		}
	}
}

func TestAggregate_NonFiniteCoordinatesStaySingle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	in := []model.ProjectPoint{
		pt("a", 51.5, -0.1),
		pt("bad", math.NaN(), -0.1),
		pt("b", 51.5, -0.1001),
		pt("inf", 51.5, math.Inf(1)),
	}
	before := invalidPoints(t)
	got, err := NewGreedy(logger).Aggregate(in, 5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if d := invalidPoints(t) - before; d != 2 {
		t.Fatalf("invalid_points_total delta=%v want 2", d)
	}
	if want := []string{"cluster-a", "bad", "inf"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids=%v want %v", ids(got), want)
	}
	if c := got[0].(model.ClusterMarker); c.Count != 2 {
		t.Fatalf("cluster count=%d want 2", c.Count)
	}
	if !strings.Contains(buf.String(), "non-finite coordinates") || !strings.Contains(buf.String(), "id=bad") {
		t.Fatalf("expected data-quality warning in log, got:\n%s", buf.String())
	}
}

func TestAggregate_RejectsDuplicatesAndBadZoom(t *testing.T) {
	dup := []model.ProjectPoint{pt("a", 51, 0), pt("a", 52, 0)}
	if _, err := Aggregate(dup, 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("duplicate ids: err=%v want ErrInvalidInput", err)
	}
	for _, z := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := Aggregate(nil, z); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("zoom %v: err=%v want ErrInvalidInput", z, err)
		}
	}
}

func TestAggregate_ClusterIDAvoidsPointIDs(t *testing.T) {
	in := []model.ProjectPoint{
		pt("a", 51.5, -0.1),
		pt("b", 51.5, -0.1001),
		pt("cluster-a", 57, -2),
	}
	got, err := Aggregate(in, 5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if want := []string{"cluster-a-2", "cluster-a"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids=%v want %v", ids(got), want)
	}
}

func TestTransitive_MergesChains(t *testing.T) {
	in := []model.ProjectPoint{pt("a", 50, 0), pt("b", 50.8, 0), pt("c", 51.6, 0), pt("far", 57, -4)}

	got, err := NewTransitive(nil).Aggregate(in, 5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if want := []string{"cluster-a", "far"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("ids=%v want %v", ids(got), want)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(members(got[0]), want) {
		t.Fatalf("members=%v want %v", members(got[0]), want)
	}
}

func TestRegistry_FallsBackToGreedy(t *testing.T) {
	if got := New("TRANSITIVE", nil).Name(); got != StrategyTransitive {
		t.Fatalf("New(TRANSITIVE)=%s", got)
	}
	if got := New("kmeans", nil).Name(); got != StrategyGreedy {
		t.Fatalf("New(kmeans)=%s want greedy", got)
	}
	if want := []string{"greedy", "transitive"}; !reflect.DeepEqual(Strategies(), want) {
		t.Fatalf("Strategies()=%v want %v", Strategies(), want)
	}
}

// a spread of UK sites with a few tight groups
func ukSample() []model.ProjectPoint {
	sites := []struct {
		lat, lng float64
	}{
		{55.1280, -1.5100}, // Blyth
		{54.9069, -1.3838}, // Sunderland
		{53.3530, -2.8400}, // Halewood
		{52.9225, -1.4746}, // Derby
		{52.4862, -1.8904}, // Birmingham
		{52.4068, -1.5197}, // Coventry
		{51.5072, -0.1276}, // London
		{51.5560, -0.2800}, // Wembley
		{51.5842, -2.9977}, // Newport
		{51.4816, -3.1791}, // Cardiff
		{55.8642, -4.2518}, // Glasgow
		{55.9533, -3.1883}, // Edinburgh
		{54.5973, -5.9301}, // Belfast
		{57.1497, -2.0943}, // Aberdeen
	}
	out := make([]model.ProjectPoint, len(sites))
	for i, s := range sites {
		out[i] = pt(fmt.Sprintf("p%02d", i), s.lat, s.lng)
	}
	return out
}
