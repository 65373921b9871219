package transform

import (
	"sync"

	"vclab/internal/numeric"
	"vclab/internal/workers"
)

// DefaultBlockSize is the JPEG-style 8x8 block edge.
const DefaultBlockSize = 8

type block struct {
	row, col int
}

// EncodeBlocks splits grid into size x size blocks (edge blocks may be
// smaller) and encodes each block independently.
func EncodeBlocks(grid [][]float64, size int) ([][]float64, error) {
	return blockwise(grid, size, Encode)
}

// DecodeBlocks inverts EncodeBlocks for the same block size.
func DecodeBlocks(grid [][]float64, size int) ([][]float64, error) {
	return blockwise(grid, size, Decode)
}

func blockwise(grid [][]float64, size int, f func([][]float64) ([][]float64, error)) ([][]float64, error) {
	if size < 1 {
		return nil, numeric.InvalidInputf("block size %d, must be at least 1", size)
	}
	rows, cols, err := numeric.Shape(grid)
	if err != nil {
		return nil, err
	}
	out := numeric.New[float64](rows, cols)
	if rows == 0 || cols == 0 {
		return out, nil
	}

	var blocks []block
	for r := 0; r < rows; r += size {
		for c := 0; c < cols; c += size {
			blocks = append(blocks, block{row: r, col: c})
		}
	}

	numWorkers := workers.ForCPU(len(blocks))
	jobs := make(chan block, len(blocks))
	for _, b := range blocks {
		jobs <- b
	}
	close(jobs)

	// Blocks cover disjoint regions of out, so workers write without locking.
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	for w := 0; w < numWorkers; w += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range jobs {
				rEnd, cEnd := min(b.row+size, rows), min(b.col+size, cols)
				tile := make([][]float64, rEnd-b.row)
				for i := range tile {
					tile[i] = grid[b.row+i][b.col:cEnd]
				}
				res, err := f(tile)
				if err != nil {
					once.Do(func() { firstErr = err })
					continue
				}
				for i, row := range res {
					copy(out[b.row+i][b.col:cEnd], row)
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
