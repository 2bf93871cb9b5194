package matrix

import (
	"testing"

	"github.com/gonum/floats"
)

func TestNewSizedZeroInit(t *testing.T) {
	m := NewSized(2, 3)
	cols, rows := m.Dims()
	if cols != 2 || rows != 3 {
		t.Fatalf("wrong dims: got %dx%d", cols, rows)
	}
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if m.At(c, r) != 0 {
				t.Fatalf("expected zero-init at (%d,%d)", c, r)
			}
		}
	}
}

func TestNewDiag(t *testing.T) {
	m := NewDiag(3, 1)
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			want := 0.0
			if c == r {
				want = 1.0
			}
			if m.At(c, r) != want {
				t.Fatalf("identity mismatch at (%d,%d): got %f", c, r, m.At(c, r))
			}
		}
	}
}

func TestNewFromRowMajor(t *testing.T) {
	// Row-major [[1,2,3],[4,5,6]] -> 3 cols, 2 rows.
	m := NewFromRowMajor(3, 2, []float64{1, 2, 3, 4, 5, 6})
	if m.At(0, 0) != 1 || m.At(1, 0) != 2 || m.At(2, 0) != 3 {
		t.Fatalf("row 0 mismatch")
	}
	if m.At(0, 1) != 4 || m.At(1, 1) != 5 || m.At(2, 1) != 6 {
		t.Fatalf("row 1 mismatch")
	}
}

func TestNewFromColumnsPadsShortColumns(t *testing.T) {
	m := NewFromColumns([][]float64{{1, 2, 3}, {4, 5}})
	cols, rows := m.Dims()
	if cols != 2 || rows != 3 {
		t.Fatalf("wrong dims: %dx%d", cols, rows)
	}
	if m.At(1, 2) != 0 {
		t.Fatalf("expected padding with 0, got %f", m.At(1, 2))
	}
}

func TestNewFromVector(t *testing.T) {
	m := NewFromVector([]float64{1, 2, 3})
	cols, rows := m.Dims()
	if cols != 1 || rows != 3 {
		t.Fatalf("expected Nx1, got %dx%d", cols, rows)
	}
}

func TestAddColumnAndDeleteColumn(t *testing.T) {
	m := NewFromRowMajor(2, 2, []float64{1, 2, 3, 4})
	if err := m.AddColumn(1, []float64{9, 9}); err != nil {
		t.Fatal(err)
	}
	if m.At(1, 0) != 9 || m.At(2, 0) != 2 {
		t.Fatalf("insert shifted wrong: col1=%f col2=%f", m.At(1, 0), m.At(2, 0))
	}
	if err := m.DeleteColumn(1); err != nil {
		t.Fatal(err)
	}
	if m.At(1, 0) != 2 {
		t.Fatalf("delete did not restore original: %f", m.At(1, 0))
	}
}

func TestAddRowAndDeleteRow(t *testing.T) {
	m := NewFromRowMajor(2, 2, []float64{1, 2, 3, 4})
	if err := m.AddRow(0, []float64{9, 9}); err != nil {
		t.Fatal(err)
	}
	if m.Row(0)[0] != 9 || m.Row(1)[0] != 1 {
		t.Fatalf("insert shifted wrong: %v %v", m.Row(0), m.Row(1))
	}
	if err := m.DeleteRow(0); err != nil {
		t.Fatal(err)
	}
	if m.Row(0)[0] != 1 {
		t.Fatalf("delete did not restore original: %v", m.Row(0))
	}
}

func TestResizeGrowAndShrink(t *testing.T) {
	m := NewSized(2, 2)
	m.Resize(3, 3)
	cols, rows := m.Dims()
	if cols != 3 || rows != 3 {
		t.Fatalf("grow failed: %dx%d", cols, rows)
	}
	m.Set(2, 2, 5)
	m.Resize(1, 1)
	cols, rows = m.Dims()
	if cols != 1 || rows != 1 {
		t.Fatalf("shrink failed: %dx%d", cols, rows)
	}
}

func TestArithmeticShapeMismatch(t *testing.T) {
	a := NewSized(2, 2)
	b := NewSized(3, 3)
	if err := a.AddInPlace(b); err == nil {
		t.Fatal("expected incompatible shape error")
	}
}

func TestMul(t *testing.T) {
	// A is 2 cols x 2 rows == [[1,3],[2,4]] meaning A.At(col,row).
	a := NewFromRowMajor(2, 2, []float64{1, 2, 3, 4}) // rows: [1 2],[3 4]
	b := NewFromRowMajor(2, 2, []float64{5, 6, 7, 8}) // rows: [5 6],[7 8]
	c, err := a.Mul(b)
	if err != nil {
		t.Fatal(err)
	}
	cols, rows := c.Dims()
	if cols != 2 || rows != 2 {
		t.Fatalf("wrong result dims %dx%d", cols, rows)
	}
	// Expected standard matrix product [[1,2],[3,4]]*[[5,6],[7,8]] = [[19,22],[43,50]]
	want := [][]float64{{19, 22}, {43, 50}}
	for r := 0; r < 2; r++ {
		for col := 0; col < 2; col++ {
			if !floats.EqualWithinAbs(c.At(col, r), want[r][col], 1e-12) {
				t.Fatalf("mul mismatch at (%d,%d): got %f want %f", col, r, c.At(col, r), want[r][col])
			}
		}
	}
}

func TestEqual(t *testing.T) {
	a := NewDiag(2, 1)
	b := NewDiag(2, 1)
	if !a.Equal(b) {
		t.Fatal("expected equal matrices")
	}
	b.Set(0, 1, 5)
	if a.Equal(b) {
		t.Fatal("expected unequal matrices")
	}
}
