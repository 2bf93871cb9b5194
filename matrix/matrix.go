// Package matrix implements the dense, resizable, column-major matrix
// facility that underpins every other SciCxx package: coefficient
// vectors, Butcher tableaux and quadrature tables are all backed by it.
//
// Unlike gonum's mat64.Dense (row-major storage, fixed size once
// allocated), M is column-major and supports inserting or erasing an
// individual row or column anywhere, which the Vandermonde-inverse and
// stencil-weight computations in specfunc/deriv/integrate rely on.
package matrix

import (
	"fmt"

	"github.com/ChristopherRabotin/scicxx/serr"
)

// M is a dense, column-major matrix of float64.
type M struct {
	cols, rows int
	// data[c] is column c, length rows.
	data [][]float64
}

// New returns a 0x0 matrix.
func New() *M {
	return &M{}
}

// NewSized returns a cols x rows matrix, every cell value-initialized to 0.
func NewSized(cols, rows int) *M {
	if cols < 0 || rows < 0 {
		panic("matrix: negative size")
	}
	m := &M{cols: cols, rows: rows, data: make([][]float64, cols)}
	for c := range m.data {
		m.data[c] = make([]float64, rows)
	}
	return m
}

// NewDiag returns an n x n matrix with v on the diagonal and 0 elsewhere
// (an identity-like matrix when v == 1).
func NewDiag(n int, v float64) *M {
	m := NewSized(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = v
	}
	return m
}

// NewFromRowMajor builds a cols x rows matrix from a flat row-major
// buffer of length cols*rows (row 0 first, then row 1, ...).
func NewFromRowMajor(cols, rows int, buf []float64) *M {
	if len(buf) != cols*rows {
		panic(fmt.Sprintf("matrix: buffer length %d does not match %dx%d", len(buf), cols, rows))
	}
	m := NewSized(cols, rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.data[c][r] = buf[r*cols+c]
		}
	}
	return m
}

// NewFromColumns builds a matrix from a list of columns. The row count is
// the longest column; shorter columns are padded with 0.
func NewFromColumns(cols [][]float64) *M {
	rows := 0
	for _, col := range cols {
		if len(col) > rows {
			rows = len(col)
		}
	}
	m := NewSized(len(cols), rows)
	for c, col := range cols {
		copy(m.data[c], col)
	}
	return m
}

// NewFromVector builds an Nx1 column matrix from a flat value vector.
func NewFromVector(v []float64) *M {
	return NewFromColumns([][]float64{v})
}

// Dims returns the (cols, rows) size of the matrix.
func (m *M) Dims() (cols, rows int) {
	return m.cols, m.rows
}

// At returns the element at (col, row). Panics if out of range: an
// out-of-bounds index is a programmer error, not a data problem, so it
// doesn't get an error return.
func (m *M) At(col, row int) float64 {
	m.checkIndex(col, row)
	return m.data[col][row]
}

// Set assigns the element at (col, row).
func (m *M) Set(col, row int, v float64) {
	m.checkIndex(col, row)
	m.data[col][row] = v
}

func (m *M) checkIndex(col, row int) {
	if col < 0 || col >= m.cols || row < 0 || row >= m.rows {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of range for %dx%d matrix", col, row, m.cols, m.rows))
	}
}

// Col returns a freshly-copied slice holding the pos-th column.
func (m *M) Col(pos int) []float64 {
	if pos < 0 || pos >= m.cols {
		panic(fmt.Sprintf("matrix: column %d out of range", pos))
	}
	out := make([]float64, m.rows)
	copy(out, m.data[pos])
	return out
}

// Row returns a freshly-copied slice holding the pos-th row.
func (m *M) Row(pos int) []float64 {
	if pos < 0 || pos >= m.rows {
		panic(fmt.Sprintf("matrix: row %d out of range", pos))
	}
	out := make([]float64, m.cols)
	for c := 0; c < m.cols; c++ {
		out[c] = m.data[c][pos]
	}
	return out
}

// SetCol overwrites the pos-th column. A shorter v is padded with 0; a
// longer v is truncated to the matrix's row count.
func (m *M) SetCol(pos int, v []float64) {
	if pos < 0 || pos >= m.cols {
		panic(fmt.Sprintf("matrix: column %d out of range", pos))
	}
	for r := 0; r < m.rows; r++ {
		if r < len(v) {
			m.data[pos][r] = v[r]
		} else {
			m.data[pos][r] = 0
		}
	}
}

// SetRow overwrites the pos-th row. A shorter v is padded with 0; a
// longer v is truncated to the matrix's column count.
func (m *M) SetRow(pos int, v []float64) {
	if pos < 0 || pos >= m.rows {
		panic(fmt.Sprintf("matrix: row %d out of range", pos))
	}
	for c := 0; c < m.cols; c++ {
		if c < len(v) {
			m.data[c][pos] = v[c]
		} else {
			m.data[c][pos] = 0
		}
	}
}

// AddColumn inserts col as the new pos-th column, shifting pos..end right.
// pos == Cols() appends. Fails with serr.ErrInvalidArgument if pos is out
// of [0, cols].
func (m *M) AddColumn(pos int, col []float64) error {
	if pos < 0 || pos > m.cols {
		return fmt.Errorf("%w: column insert position %d out of range", serr.ErrInvalidArgument, pos)
	}
	newCol := make([]float64, m.rows)
	for r := 0; r < m.rows; r++ {
		if r < len(col) {
			newCol[r] = col[r]
		}
	}
	m.data = append(m.data, nil)
	copy(m.data[pos+1:], m.data[pos:])
	m.data[pos] = newCol
	m.cols++
	return nil
}

// AddRow inserts row as the new pos-th row of every column, shifting
// pos..end down. pos == Rows() appends.
func (m *M) AddRow(pos int, row []float64) error {
	if pos < 0 || pos > m.rows {
		return fmt.Errorf("%w: row insert position %d out of range", serr.ErrInvalidArgument, pos)
	}
	for c := 0; c < m.cols; c++ {
		var v float64
		if c < len(row) {
			v = row[c]
		}
		col := m.data[c]
		col = append(col, 0)
		copy(col[pos+1:], col[pos:])
		col[pos] = v
		m.data[c] = col
	}
	m.rows++
	return nil
}

// DeleteColumn removes the pos-th column.
func (m *M) DeleteColumn(pos int) error {
	if pos < 0 || pos >= m.cols {
		return fmt.Errorf("%w: column %d out of range", serr.ErrInvalidArgument, pos)
	}
	m.data = append(m.data[:pos], m.data[pos+1:]...)
	m.cols--
	return nil
}

// DeleteRow removes the pos-th row from every column.
func (m *M) DeleteRow(pos int) error {
	if pos < 0 || pos >= m.rows {
		return fmt.Errorf("%w: row %d out of range", serr.ErrInvalidArgument, pos)
	}
	for c := 0; c < m.cols; c++ {
		m.data[c] = append(m.data[c][:pos], m.data[c][pos+1:]...)
	}
	m.rows--
	return nil
}

// Resize changes the matrix's size in place. Columns are added at the
// right / erased from the right; rows are added at the bottom of each
// column / erased from the bottom. Added cells are 0.
func (m *M) Resize(newCols, newRows int) {
	if newCols < 0 || newRows < 0 {
		panic("matrix: negative resize target")
	}
	if newCols > m.cols {
		for c := m.cols; c < newCols; c++ {
			m.data = append(m.data, make([]float64, m.rows))
		}
	} else if newCols < m.cols {
		m.data = m.data[:newCols]
	}
	m.cols = newCols
	if newRows != m.rows {
		for c := 0; c < m.cols; c++ {
			if newRows > m.rows {
				m.data[c] = append(m.data[c], make([]float64, newRows-m.rows)...)
			} else {
				m.data[c] = m.data[c][:newRows]
			}
		}
		m.rows = newRows
	}
}

// Equal reports whether m and o have the same size and element values.
func (m *M) Equal(o *M) bool {
	if m.cols != o.cols || m.rows != o.rows {
		return false
	}
	for c := 0; c < m.cols; c++ {
		for r := 0; r < m.rows; r++ {
			if m.data[c][r] != o.data[c][r] {
				return false
			}
		}
	}
	return true
}

func (m *M) sameShape(o *M) error {
	if m.cols != o.cols || m.rows != o.rows {
		return fmt.Errorf("%w: %dx%d vs %dx%d", serr.ErrIncompatibleShape, m.cols, m.rows, o.cols, o.rows)
	}
	return nil
}

// AddInPlace adds o into m element-wise.
func (m *M) AddInPlace(o *M) error {
	if err := m.sameShape(o); err != nil {
		return err
	}
	for c := 0; c < m.cols; c++ {
		for r := 0; r < m.rows; r++ {
			m.data[c][r] += o.data[c][r]
		}
	}
	return nil
}

// SubInPlace subtracts o from m element-wise.
func (m *M) SubInPlace(o *M) error {
	if err := m.sameShape(o); err != nil {
		return err
	}
	for c := 0; c < m.cols; c++ {
		for r := 0; r < m.rows; r++ {
			m.data[c][r] -= o.data[c][r]
		}
	}
	return nil
}

// ScaleInPlace multiplies every element by s.
func (m *M) ScaleInPlace(s float64) {
	for c := 0; c < m.cols; c++ {
		for r := 0; r < m.rows; r++ {
			m.data[c][r] *= s
		}
	}
}

// DivInPlace divides every element by s.
func (m *M) DivInPlace(s float64) {
	m.ScaleInPlace(1 / s)
}

// Mul returns m*o. Requires m.cols == o.rows; the result is o.cols x m.rows.
func (m *M) Mul(o *M) (*M, error) {
	if m.cols != o.rows {
		return nil, fmt.Errorf("%w: cannot multiply %dx%d by %dx%d", serr.ErrIncompatibleShape, m.cols, m.rows, o.cols, o.rows)
	}
	out := NewSized(o.cols, m.rows)
	for oc := 0; oc < o.cols; oc++ {
		for mr := 0; mr < m.rows; mr++ {
			var sum float64
			for k := 0; k < m.cols; k++ {
				sum += m.data[k][mr] * o.data[oc][k]
			}
			out.data[oc][mr] = sum
		}
	}
	return out, nil
}

// Clone returns a deep copy of m.
func (m *M) Clone() *M {
	out := NewSized(m.cols, m.rows)
	for c := range m.data {
		copy(out.data[c], m.data[c])
	}
	return out
}
