package cluster

import (
	"fmt"
	"testing"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

// points spread over a UK-sized grid
func gridPoints(n int) []model.ProjectPoint {
	out := make([]model.ProjectPoint, n)
	for i := range n {
		lat := 50 + float64(i%10)*0.9
		lng := -6 + float64(i/10)*0.7
		out[i] = pt(fmt.Sprintf("g%d", i), lat, lng)
	}
	return out
}

func benchAggregate(b *testing.B, agg Aggregator, n int, zoom float64) {
	in := gridPoints(n)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := agg.Aggregate(in, zoom); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGreedy_50_Coarse(b *testing.B) { benchAggregate(b, NewGreedy(nil), 50, 5) }
func BenchmarkGreedy_500_Fine(b *testing.B) { benchAggregate(b, NewGreedy(nil), 500, 7) }
func BenchmarkTransitive_50_Coarse(b *testing.B) { benchAggregate(b, NewTransitive(nil), 50, 5) }
func BenchmarkTransitive_500_Fine(b *testing.B) { benchAggregate(b, NewTransitive(nil), 500, 7) }
func BenchmarkGreedy_500_NoClustering(b *testing.B) { benchAggregate(b, NewGreedy(nil), 500, 10) }
