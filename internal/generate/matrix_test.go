package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrixFromRows(t *testing.T) {
	m := MatrixFromRows([][]int32{
		{1, 2, 3},
		{4, 5, 6},
	})

	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.Cols())
	assert.Equal(t, int32(1), m.At(0, 0))
	assert.Equal(t, int32(6), m.At(1, 2))

	t.Run("rows are copied", func(t *testing.T) {
		src := [][]float32{{1, 2}}
		m := MatrixFromRows(src)
		src[0][0] = 99
		assert.Equal(t, float32(1), m.At(0, 0))
	})

	t.Run("empty input", func(t *testing.T) {
		m := MatrixFromRows([][]int32{})
		assert.Equal(t, 0, m.Rows())
		assert.Equal(t, 0, m.Cols())
	})
}

func TestMatrix_RowSharesStorage(t *testing.T) {
	m := NewScoreMatrix(2, 2)
	m.Row(1)[0] = 7

	assert.Equal(t, float32(7), m.At(1, 0))
}

func TestMatrix_FillAndSet(t *testing.T) {
	m := NewTokenMatrix(2, 3)
	m.Fill(-1)
	m.Set(0, 1, 42)

	assert.Equal(t, []int32{-1, 42, -1}, m.Row(0))
	assert.Equal(t, []int32{-1, -1, -1}, m.Row(1))
}

func TestMatrix_Clone(t *testing.T) {
	m := MatrixFromRows([][]int32{{1, 2}, {3, 4}})
	c := m.Clone()
	c.Set(0, 0, 99)

	assert.Equal(t, int32(1), m.At(0, 0))
	assert.Equal(t, int32(99), c.At(0, 0))
}

func TestMatrix_SelectRows(t *testing.T) {
	m := MatrixFromRows([][]int32{
		{10, 11},
		{20, 21},
		{30, 31},
	})

	t.Run("reorders rows", func(t *testing.T) {
		out := m.SelectRows([]int{2, 0, 1})
		assert.Equal(t, [][]int32{{30, 31}, {10, 11}, {20, 21}}, out.ToRows())
	})

	t.Run("repeats and drops rows", func(t *testing.T) {
		out := m.SelectRows([]int{1, 1})
		assert.Equal(t, [][]int32{{20, 21}, {20, 21}}, out.ToRows())
	})

	t.Run("result is independent of the source", func(t *testing.T) {
		out := m.SelectRows([]int{0})
		out.Set(0, 0, -5)
		assert.Equal(t, int32(10), m.At(0, 0))
	})
}

func TestMatrix_RepeatRows(t *testing.T) {
	m := MatrixFromRows([][]int32{{1, 2}, {3, 4}})
	out := m.RepeatRows(3)

	require.Equal(t, 6, out.Rows())
	assert.Equal(t, [][]int32{
		{1, 2}, {1, 2}, {1, 2},
		{3, 4}, {3, 4}, {3, 4},
	}, out.ToRows())
}

func TestMatrix_AppendColumn(t *testing.T) {
	m := MatrixFromRows([][]int32{{1, 2}, {3, 4}})
	out := m.AppendColumn([]int32{9, 8})

	assert.Equal(t, [][]int32{{1, 2, 9}, {3, 4, 8}}, out.ToRows())

	// The receiver keeps its original shape.
	assert.Equal(t, 2, m.Cols())
	assert.Equal(t, [][]int32{{1, 2}, {3, 4}}, m.ToRows())
}

func TestMatrix_TailColumns(t *testing.T) {
	m := MatrixFromRows([][]int32{{1, 2, 3}, {4, 5, 6}})

	out := m.TailColumns(1)
	assert.Equal(t, [][]int32{{3}, {6}}, out.ToRows())

	out = m.TailColumns(2)
	assert.Equal(t, [][]int32{{2, 3}, {5, 6}}, out.ToRows())
}

func TestMatrix_ToRowsCopies(t *testing.T) {
	m := MatrixFromRows([][]float32{{1, 2}})
	rows := m.ToRows()
	rows[0][0] = 42

	assert.Equal(t, float32(1), m.At(0, 0))
}
