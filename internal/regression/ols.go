package regression

import (
	"errors"
	"fmt"
	"math"
)

// Fit is the outcome of a least-squares regression: coefficients (intercept
// first), fitted values, residuals, and goodness-of-fit metrics.
type Fit struct {
	Coefficients []float64 `json:"coefficients"`
	Fitted       []float64 `json:"fitted"`
	Residuals    []float64 `json:"residuals"`
	RSquared     float64   `json:"r_squared"`
	RMSE         float64   `json:"rmse"`
}

// OrdinaryLeastSquares solves β = (XᵀX)⁻¹Xᵀy over the rectangular design
// matrix x (rows = observations, columns = explanatory variables) and the
// target vector y. An intercept column of ones is prepended, so the first
// coefficient is always the intercept.
//
// Singular designs (collinear columns, fewer observations than parameters)
// surface as ErrSingularMatrix; callers must treat that as a failed model,
// never as zero coefficients.
func OrdinaryLeastSquares(x [][]float64, y []float64) (*Fit, error) {
	n := len(x)
	if n == 0 {
		return nil, errors.New("no observations")
	}
	if n != len(y) {
		return nil, fmt.Errorf("observation mismatch: %d rows vs %d targets", n, len(y))
	}

	cols := len(x[0])
	design := NewMatrix(n, cols+1)
	for i, row := range x {
		if len(row) != cols {
			return nil, fmt.Errorf("design matrix is not rectangular: row %d has %d columns, want %d", i, len(row), cols)
		}
		design[i][0] = 1
		copy(design[i][1:], row)
	}

	xt := design.Transpose()
	xtx, err := xt.Mul(design)
	if err != nil {
		return nil, err
	}
	inv, err := xtx.Inverse()
	if err != nil {
		return nil, err
	}
	xty, err := xt.MulVec(y)
	if err != nil {
		return nil, err
	}
	beta, err := inv.MulVec(xty)
	if err != nil {
		return nil, err
	}

	fitted, err := design.MulVec(beta)
	if err != nil {
		return nil, err
	}

	return newFit(beta, fitted, y), nil
}

// SimpleRegression fits y = intercept + slope·x in closed form, without the
// matrix machinery, for the single-predictor case. Coefficients come back
// as [intercept, slope] to mirror OrdinaryLeastSquares.
func SimpleRegression(x, y []float64) (*Fit, error) {
	n := len(x)
	if n == 0 {
		return nil, errors.New("no observations")
	}
	if n != len(y) {
		return nil, fmt.Errorf("observation mismatch: %d x vs %d y", n, len(y))
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}

	denom := float64(n)*sumX2 - sumX*sumX
	if denom == 0 {
		return nil, ErrSingularMatrix
	}

	slope := (float64(n)*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / float64(n)

	fitted := make([]float64, n)
	for i := range x {
		fitted[i] = intercept + slope*x[i]
	}

	return newFit([]float64{intercept, slope}, fitted, y), nil
}

func newFit(beta, fitted, y []float64) *Fit {
	residuals := make([]float64, len(y))
	for i := range y {
		residuals[i] = y[i] - fitted[i]
	}
	return &Fit{
		Coefficients: beta,
		Fitted:       fitted,
		Residuals:    residuals,
		RSquared:     rSquared(y, fitted),
		RMSE:         rmse(y, fitted),
	}
}

// rSquared computes R² = 1 - SS_res/SS_tot.
func rSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range observed {
		mean += v
	}
	mean /= float64(len(observed))

	var ssTot, ssRes float64
	for i := range observed {
		ssTot += (observed[i] - mean) * (observed[i] - mean)
		ssRes += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func rmse(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	var sumSq float64
	for i := range observed {
		diff := observed[i] - predicted[i]
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(observed)))
}
