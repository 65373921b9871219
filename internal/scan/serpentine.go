// Package scan generates the serpentine (zig-zag) visiting order of a
// matrix, the coefficient ordering used by block-based compression.
package scan

import "vclab/internal/numeric"

// Position is a 0-indexed cell coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Serpentine returns the elements of grid in zig-zag order starting at the
// top-left corner. The result always holds rows*cols elements.
func Serpentine[T any](grid [][]T) ([]T, error) {
	rows, cols, err := numeric.Shape(grid)
	if err != nil {
		return nil, err
	}
	order := Order(rows, cols)
	result := make([]T, len(order))
	for k, p := range order {
		result[k] = grid[p.Row][p.Col]
	}
	return result, nil
}

// Unserpentine places a zig-zag ordered sequence back into a rows x cols grid.
func Unserpentine[T any](seq []T, rows, cols int) ([][]T, error) {
	if rows < 0 || cols < 0 {
		return nil, numeric.InvalidInputf("negative dimensions %dx%d", rows, cols)
	}
	if len(seq) != rows*cols {
		return nil, numeric.ShapeMismatchf("sequence has %d elements, want %d for %dx%d", len(seq), rows*cols, rows, cols)
	}
	grid := numeric.New[T](rows, cols)
	for k, p := range Order(rows, cols) {
		grid[p.Row][p.Col] = seq[k]
	}
	return grid, nil
}

// Order returns the cells of a rows x cols grid in zig-zag order.
//
// The walk uses 1-indexed (i, j) and a direction flag up, initially false.
// On a cell reached diagonally (or the start) the boundaries are checked
// in fixed precedence: last row, last column, first row, first column.
// A boundary step moves one cell along the edge and flips direction; the
// following move is then a diagonal step in the new direction, unless that
// would leave the grid, in which case the boundary rules apply again.
func Order(rows, cols int) []Position {
	if rows <= 0 || cols <= 0 {
		return []Position{}
	}

	order := make([]Position, 0, rows*cols)
	i, j := 1, 1
	up := false
	turned := false

	for 1 <= i && i <= rows && 1 <= j && j <= cols {
		order = append(order, Position{Row: i - 1, Col: j - 1})

		if turned {
			di, dj := diagonal(up)
			if ni, nj := i+di, j+dj; 1 <= ni && ni <= rows && 1 <= nj && nj <= cols {
				i, j = ni, nj
				turned = false
				continue
			}
		}

		switch {
		case i == rows:
			j += 1
			up = true
			turned = true
		case j == cols:
			i += 1
			up = false
			turned = true
		case i == 1:
			j += 1
			up = false
			turned = true
		case j == 1:
			i += 1
			up = true
			turned = true
		default:
			di, dj := diagonal(up)
			i += di
			j += dj
		}
	}
	return order
}

func diagonal(up bool) (di, dj int) {
	if up {
		return -1, 1
	}
	return 1, -1
}
