package numeric

// Number is any built-in integer or floating point type.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Grid is a row-major rectangular matrix.
type Grid[T any] [][]T
