// Package numeric holds the small set of grid helpers and the error
// taxonomy shared by the signal-processing packages (colorspace, scan,
// rle and transform).
//
// A grid is a rectangular [][]T: every row has the same number of
// columns. Functions that receive a grid validate it with Shape and
// report ErrShapeMismatch for ragged input rather than truncating or
// padding.
package numeric
