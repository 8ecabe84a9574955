package generate

// Matrix is a rectangular, row-major batch matrix owned by the decoding
// loop. Token histories, attention masks and score matrices all share
// this one representation; beam search reshuffles rows exclusively
// through SelectRows so tokens, mask and cache can never desynchronize.
type Matrix[T int32 | float32] struct {
	rows int
	cols int
	data []T
}

// TokenMatrix holds token ids or 0/1 attention-mask values.
type TokenMatrix = Matrix[int32]

// ScoreMatrix holds per-token scores for one decoding step.
type ScoreMatrix = Matrix[float32]

// NewMatrix creates a zeroed rows x cols matrix.
func NewMatrix[T int32 | float32](rows, cols int) *Matrix[T] {
	return &Matrix[T]{
		rows: rows,
		cols: cols,
		data: make([]T, rows*cols),
	}
}

// NewTokenMatrix creates a zeroed rows x cols token matrix.
func NewTokenMatrix(rows, cols int) *TokenMatrix {
	return NewMatrix[int32](rows, cols)
}

// NewScoreMatrix creates a zeroed rows x cols score matrix.
func NewScoreMatrix(rows, cols int) *ScoreMatrix {
	return NewMatrix[float32](rows, cols)
}

// MatrixFromRows builds a matrix from equally sized rows.
// Rows are copied; the input slices stay owned by the caller.
func MatrixFromRows[T int32 | float32](rows [][]T) *Matrix[T] {
	if len(rows) == 0 {
		return &Matrix[T]{}
	}
	m := NewMatrix[T](len(rows), len(rows[0]))
	for i, row := range rows {
		copy(m.Row(i), row)
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix[T]) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix[T]) Cols() int { return m.cols }

// Row returns row i as a slice backed by the matrix storage.
// Writes through the slice modify the matrix.
func (m *Matrix[T]) Row(i int) []T {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// At returns the element at row i, column j.
func (m *Matrix[T]) At(i, j int) T { return m.data[i*m.cols+j] }

// Set stores v at row i, column j.
func (m *Matrix[T]) Set(i, j int, v T) { m.data[i*m.cols+j] = v }

// Fill sets every element to v.
func (m *Matrix[T]) Fill(v T) {
	for i := range m.data {
		m.data[i] = v
	}
}

// Clone returns a deep copy.
func (m *Matrix[T]) Clone() *Matrix[T] {
	out := &Matrix[T]{rows: m.rows, cols: m.cols, data: make([]T, len(m.data))}
	copy(out.data, m.data)
	return out
}

// SelectRows returns a new matrix whose row i is the receiver's row
// idx[i]. This is the single reindexing primitive used by beam search;
// indices may repeat or drop rows.
func (m *Matrix[T]) SelectRows(idx []int) *Matrix[T] {
	out := NewMatrix[T](len(idx), m.cols)
	for i, src := range idx {
		copy(out.Row(i), m.Row(src))
	}
	return out
}

// RepeatRows returns a new matrix where every row is repeated times
// consecutive times, expanding an input batch along the beam and
// return-sequence dimensions.
func (m *Matrix[T]) RepeatRows(times int) *Matrix[T] {
	out := NewMatrix[T](m.rows*times, m.cols)
	for i := 0; i < m.rows; i++ {
		for r := 0; r < times; r++ {
			copy(out.Row(i*times+r), m.Row(i))
		}
	}
	return out
}

// AppendColumn returns a new matrix grown by one column, holding col[i]
// in row i.
func (m *Matrix[T]) AppendColumn(col []T) *Matrix[T] {
	out := NewMatrix[T](m.rows, m.cols+1)
	for i := 0; i < m.rows; i++ {
		copy(out.Row(i), m.Row(i))
		out.Row(i)[m.cols] = col[i]
	}
	return out
}

// TailColumns returns a copy holding only the last n columns, the input
// shape expected by cached model calls.
func (m *Matrix[T]) TailColumns(n int) *Matrix[T] {
	out := NewMatrix[T](m.rows, n)
	for i := 0; i < m.rows; i++ {
		copy(out.Row(i), m.Row(i)[m.cols-n:])
	}
	return out
}

// ToRows copies the matrix out as one slice per row.
func (m *Matrix[T]) ToRows() [][]T {
	rows := make([][]T, m.rows)
	for i := range rows {
		rows[i] = append([]T{}, m.Row(i)...)
	}
	return rows
}
