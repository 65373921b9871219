package numeric

import "math"

// Shape returns the row and column count of grid. The column count is
// taken from the first row and every other row must agree with it. An
// empty grid has shape (0, 0).
func Shape[T any](grid [][]T) (rows, cols int, err error) {
	rows = len(grid)
	if rows == 0 {
		return 0, 0, nil
	}
	cols = len(grid[0])
	for i := 1; i < rows; i += 1 {
		if len(grid[i]) != cols {
			return 0, 0, &ShapeError{Row: i, Want: cols, Got: len(grid[i])}
		}
	}
	return rows, cols, nil
}

// SameShape reports ErrShapeMismatch unless every grid has the shape of the first.
func SameShape[T any](grids ...[][]T) (rows, cols int, err error) {
	if len(grids) == 0 {
		return 0, 0, nil
	}
	rows, cols, err = Shape(grids[0])
	if err != nil {
		return 0, 0, err
	}
	for i := 1; i < len(grids); i += 1 {
		r, c, err := Shape(grids[i])
		if err != nil {
			return 0, 0, err
		}
		if r != rows || c != cols {
			return 0, 0, ShapeMismatchf("operand %d is %dx%d, want %dx%d", i, r, c, rows, cols)
		}
	}
	return rows, cols, nil
}

// New allocates a zeroed rows x cols grid backed by a single slice.
func New[T any](rows, cols int) [][]T {
	grid := make([][]T, rows)
	if rows == 0 {
		return grid
	}
	backing := make([]T, rows*cols)
	for i := range grid {
		grid[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return grid
}

// Clone deep-copies a grid.
func Clone[T any](grid [][]T) [][]T {
	out := make([][]T, len(grid))
	for i, row := range grid {
		out[i] = append([]T(nil), row...)
	}
	return out
}

// Transpose returns the transpose of a rectangular grid.
func Transpose[T any](grid [][]T) ([][]T, error) {
	rows, cols, err := Shape(grid)
	if err != nil {
		return nil, err
	}
	out := New[T](cols, rows)
	for i := 0; i < rows; i += 1 {
		for j := 0; j < cols; j += 1 {
			out[j][i] = grid[i][j]
		}
	}
	return out, nil
}

// ToFloat64 converts a grid of any numeric type to float64.
func ToFloat64[T Number](grid [][]T) [][]float64 {
	out := make([][]float64, len(grid))
	for i, row := range grid {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = float64(v)
		}
	}
	return out
}

// ApproxEqual reports whether a and b have the same shape and every pair
// of elements differs by at most tol.
func ApproxEqual(a, b [][]float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if math.Abs(a[i][j]-b[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// CheckFinite returns an ErrInvalidInput error naming the first NaN or
// infinite value in rows. Large finite inputs can overflow float64 in a
// transform, and such results cannot be serialised.
func CheckFinite(rows ...[]float64) error {
	for i, row := range rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return InvalidInputf("result [%d][%d] is %v, input values overflow float64", i, j, v)
			}
		}
	}
	return nil
}
