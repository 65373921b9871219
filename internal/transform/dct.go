package transform

import (
	"math"

	"vclab/internal/numeric"
)

// MaxLength bounds each axis of a grid passed to Encode or Decode. The
// direct transform costs O(n^2) per line, so larger grids are transformed
// in blocks with EncodeBlocks and DecodeBlocks.
const MaxLength = 1024

// cosTable holds the orthonormal DCT-II coefficients of one length n in
// O(n) space. cos[m] is cos(pi*m / 2n); the argument of coefficient (k, i)
// is (2i+1)k, reduced modulo the 4n period.
type cosTable struct {
	n      int
	cos    []float64
	scale0 float64
	scale  float64
}

func newCosTable(n int) *cosTable {
	if n == 0 {
		return &cosTable{}
	}
	t := &cosTable{
		n:      n,
		cos:    make([]float64, 4*n),
		scale0: math.Sqrt(1.0 / float64(n)),
		scale:  math.Sqrt(2.0 / float64(n)),
	}
	for m := range t.cos {
		t.cos[m] = math.Cos(math.Pi * float64(m) / float64(2*n))
	}
	return t
}

// coef returns c[k][i] of the DCT-II matrix.
func (t *cosTable) coef(k, i int) float64 {
	s := t.scale
	if k == 0 {
		s = t.scale0
	}
	return s * t.cos[((2*i+1)*k)%(4*t.n)]
}

func (t *cosTable) forward(x []float64) []float64 {
	out := make([]float64, len(x))
	for k := range out {
		sum := 0.0
		for i, v := range x {
			sum += v * t.coef(k, i)
		}
		out[k] = sum
	}
	return out
}

func (t *cosTable) inverse(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		sum := 0.0
		for k, v := range x {
			sum += v * t.coef(k, i)
		}
		out[i] = sum
	}
	return out
}

// DCT returns the orthonormal DCT-II of x.
func DCT(x []float64) []float64 {
	return newCosTable(len(x)).forward(x)
}

// IDCT returns the orthonormal DCT-III of x, the inverse of DCT.
func IDCT(x []float64) []float64 {
	return newCosTable(len(x)).inverse(x)
}

// Encode applies the DCT along the columns of grid and then along its rows.
// Axes longer than MaxLength are rejected with numeric.ErrInvalidInput.
func Encode(grid [][]float64) ([][]float64, error) {
	colTable, rowTable, err := tablesFor(grid)
	if err != nil {
		return nil, err
	}
	return alongRows(alongColumns(grid, colTable.forward), rowTable.forward), nil
}

// Decode inverts Encode, applying the IDCT along rows and then columns.
func Decode(grid [][]float64) ([][]float64, error) {
	colTable, rowTable, err := tablesFor(grid)
	if err != nil {
		return nil, err
	}
	return alongColumns(alongRows(grid, rowTable.inverse), colTable.inverse), nil
}

// tablesFor validates grid and builds one table per axis length, shared by
// every line along that axis.
func tablesFor(grid [][]float64) (cols, rows *cosTable, err error) {
	r, c, err := numeric.Shape(grid)
	if err != nil {
		return nil, nil, err
	}
	if r > MaxLength || c > MaxLength {
		return nil, nil, numeric.InvalidInputf("%dx%d matrix exceeds the %d element axis limit, transform it in blocks", r, c, MaxLength)
	}
	return newCosTable(r), newCosTable(c), nil
}

func alongRows(grid [][]float64, f func([]float64) []float64) [][]float64 {
	out := make([][]float64, len(grid))
	for i, row := range grid {
		out[i] = f(row)
	}
	return out
}

func alongColumns(grid [][]float64, f func([]float64) []float64) [][]float64 {
	rows := len(grid)
	if rows == 0 {
		return [][]float64{}
	}
	cols := len(grid[0])
	out := numeric.New[float64](rows, cols)
	column := make([]float64, rows)
	for j := 0; j < cols; j += 1 {
		for i := 0; i < rows; i += 1 {
			column[i] = grid[i][j]
		}
		for i, v := range f(column) {
			out[i][j] = v
		}
	}
	return out
}
