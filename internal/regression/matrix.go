package regression

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingularMatrix is returned when Gauss-Jordan elimination cannot find a
// non-zero pivot: the design matrix has perfectly collinear columns or
// fewer observations than parameters.
var ErrSingularMatrix = errors.New("matrix is singular")

// Matrix is a dense row-major matrix. It is deliberately small and boring;
// the regression engine runs offline over a handful of comps.
type Matrix [][]float64

// NewMatrix allocates a zero rows×cols matrix.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m[i][i] = 1
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Transpose returns a new matrix with rows and columns swapped.
func (m Matrix) Transpose() Matrix {
	t := NewMatrix(m.Cols(), m.Rows())
	for i, row := range m {
		for j, v := range row {
			t[j][i] = v
		}
	}
	return t
}

// Mul returns the matrix product m·other.
func (m Matrix) Mul(other Matrix) (Matrix, error) {
	if m.Cols() != other.Rows() {
		return nil, fmt.Errorf("dimension mismatch: %dx%d × %dx%d", m.Rows(), m.Cols(), other.Rows(), other.Cols())
	}

	out := NewMatrix(m.Rows(), other.Cols())
	for i := range m {
		for k, mik := range m[i] {
			if mik == 0 {
				continue
			}
			for j := range other[k] {
				out[i][j] += mik * other[k][j]
			}
		}
	}
	return out, nil
}

// MulVec returns the matrix-vector product m·v.
func (m Matrix) MulVec(v []float64) ([]float64, error) {
	if m.Cols() != len(v) {
		return nil, fmt.Errorf("dimension mismatch: %dx%d × %d", m.Rows(), m.Cols(), len(v))
	}

	out := make([]float64, m.Rows())
	for i, row := range m {
		for j, mij := range row {
			out[i] += mij * v[j]
		}
	}
	return out, nil
}

// Inverse inverts a square matrix by Gauss-Jordan elimination with partial
// pivoting: at each column the row with the largest absolute pivot value is
// swapped in before eliminating, which keeps the arithmetic stable for the
// near-collinear design matrices this engine sees. A zero pivot after the
// swap means the matrix is singular, which is surfaced as ErrSingularMatrix
// rather than returning garbage coefficients.
func (m Matrix) Inverse() (Matrix, error) {
	n := m.Rows()
	if n == 0 || n != m.Cols() {
		return nil, fmt.Errorf("cannot invert %dx%d matrix", m.Rows(), m.Cols())
	}

	// Augment [m | I] and reduce in place.
	aug := NewMatrix(n, 2*n)
	for i := 0; i < n; i++ {
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if aug[pivot][col] == 0 {
			return nil, ErrSingularMatrix
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		scale := aug[col][col]
		for j := range aug[col] {
			aug[col][j] /= scale
		}

		for row := 0; row < n; row++ {
			if row == col || aug[row][col] == 0 {
				continue
			}
			factor := aug[row][col]
			for j := range aug[row] {
				aug[row][j] -= factor * aug[col][j]
			}
		}
	}

	inv := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		copy(inv[i], aug[i][n:])
	}
	return inv, nil
}
