// Package mapper converts between geographic coordinates and H3 cells.
package mapper

import (
	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

type Interface interface {
	CellForPoint(c model.Coordinates, res int) (string, error)
	CellsForBBox(bb model.BBox, res int) (model.Cells, error)
}
