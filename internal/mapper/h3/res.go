package h3mapper

// ResForZoom picks the coarsest H3 resolution whose cells are still small
// next to the viewport at a web-map zoom, capped at maxRes.
func ResForZoom(zoom float64, maxRes int) int {
	var res int
	switch {
	case zoom < 3:
		res = 1
	case zoom < 5:
		res = 2
	case zoom < 6:
		res = 3
	case zoom < 7:
		res = 4
	case zoom < 8:
		res = 5
	case zoom < 10:
		res = 6
	default:
		res = 7
	}
	if res > maxRes {
		res = maxRes
	}
	if res < 0 {
		res = 0
	}
	return res
}
