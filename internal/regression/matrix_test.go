package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix_Transpose(t *testing.T) {
	m := Matrix{{1, 2, 3}, {4, 5, 6}}
	tr := m.Transpose()
	assert.Equal(t, Matrix{{1, 4}, {2, 5}, {3, 6}}, tr)
}

func TestMatrix_Mul(t *testing.T) {
	a := Matrix{{1, 2}, {3, 4}}
	b := Matrix{{5, 6}, {7, 8}}

	out, err := a.Mul(b)
	require.NoError(t, err)
	assert.Equal(t, Matrix{{19, 22}, {43, 50}}, out)

	_, err = a.Mul(Matrix{{1, 2}})
	assert.Error(t, err)
}

func TestMatrix_MulVec(t *testing.T) {
	m := Matrix{{1, 2}, {3, 4}}

	out, err := m.MulVec([]float64{5, 6})
	require.NoError(t, err)
	assert.Equal(t, []float64{17, 39}, out)

	_, err = m.MulVec([]float64{1})
	assert.Error(t, err)
}

func TestMatrix_Inverse(t *testing.T) {
	t.Run("identity inverts to identity", func(t *testing.T) {
		inv, err := Identity(3).Inverse()
		require.NoError(t, err)
		assert.Equal(t, Identity(3), inv)
	})

	t.Run("2x2", func(t *testing.T) {
		m := Matrix{{4, 7}, {2, 6}}
		inv, err := m.Inverse()
		require.NoError(t, err)

		assert.InDelta(t, 0.6, inv[0][0], 1e-12)
		assert.InDelta(t, -0.7, inv[0][1], 1e-12)
		assert.InDelta(t, -0.2, inv[1][0], 1e-12)
		assert.InDelta(t, 0.4, inv[1][1], 1e-12)
	})

	t.Run("product with inverse is identity", func(t *testing.T) {
		m := Matrix{{2, 1, 1}, {1, 3, 2}, {1, 0, 0}}
		inv, err := m.Inverse()
		require.NoError(t, err)

		prod, err := m.Mul(inv)
		require.NoError(t, err)
		want := Identity(3)
		for i := range prod {
			for j := range prod[i] {
				assert.InDelta(t, want[i][j], prod[i][j], 1e-12)
			}
		}
	})

	t.Run("pivoting handles zero leading entry", func(t *testing.T) {
		// Without the row swap this design hits a zero pivot immediately
		m := Matrix{{0, 1}, {1, 0}}
		inv, err := m.Inverse()
		require.NoError(t, err)
		assert.Equal(t, Matrix{{0, 1}, {1, 0}}, inv)
	})

	t.Run("singular matrix errors", func(t *testing.T) {
		m := Matrix{{1, 2}, {2, 4}}
		_, err := m.Inverse()
		assert.ErrorIs(t, err, ErrSingularMatrix)
	})

	t.Run("non-square errors", func(t *testing.T) {
		_, err := Matrix{{1, 2, 3}}.Inverse()
		assert.Error(t, err)
	})
}
