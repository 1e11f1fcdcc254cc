package plot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// FitKind selects the curve family fitted through aggregated samples.
type FitKind string

const (
	FitPoly        FitKind = "poly"
	FitGaussian    FitKind = "gaussian"
	FitCubicSpline FitKind = "cubic_spline"
)

// fitSamples is the number of interpolation points a fitted curve is drawn
// with when the caller does not supply its own x values.
const fitSamples = 200

// PolyFit returns least-squares polynomial coefficients c0..cDegree solved
// over a Vandermonde system.
func PolyFit(xs, ys []float64, degree int) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("x and y lengths differ: %d vs %d", len(xs), len(ys))
	}
	if degree < 0 {
		return nil, fmt.Errorf("polynomial degree must not be negative")
	}
	if len(xs) < degree+1 {
		return nil, fmt.Errorf("degree %d fit needs at least %d points, got %d", degree, degree+1, len(xs))
	}
	n := len(xs)
	vand := mat.NewDense(n, degree+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= degree; j++ {
			vand.Set(i, j, math.Pow(xs[i], float64(j)))
		}
	}
	var qr mat.QR
	qr.Factorize(vand)
	coeffs := mat.NewVecDense(degree+1, nil)
	if err := qr.SolveVecTo(coeffs, false, mat.NewVecDense(n, ys)); err != nil {
		return nil, fmt.Errorf("polynomial fit failed: %w", err)
	}
	out := make([]float64, degree+1)
	for i := range out {
		out[i] = coeffs.AtVec(i)
	}
	return out, nil
}

// EvalPoly evaluates a polynomial with coefficients c0..cn at x.
func EvalPoly(coeffs []float64, x float64) float64 {
	v := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		v = v*x + coeffs[i]
	}
	return v
}

// PolySmooth fits a polynomial and evaluates it at xSmooth.
func PolySmooth(xs, ys []float64, degree int, xSmooth []float64) ([]float64, error) {
	coeffs, err := PolyFit(xs, ys, degree)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xSmooth))
	for i, x := range xSmooth {
		out[i] = EvalPoly(coeffs, x)
	}
	return out, nil
}

func gaussianAt(p []float64, x float64) float64 {
	d := x - p[1]
	return p[0] * math.Exp(-d*d/(2*p[2]*p[2]))
}

// GaussianSmooth fits a*exp(-(x-b)^2/(2c^2)) by Nelder-Mead on the sum of
// squared residuals, seeded from the sample moments, and evaluates the fit
// at xSmooth.
func GaussianSmooth(xs, ys, xSmooth []float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("x and y lengths differ: %d vs %d", len(xs), len(ys))
	}
	if len(xs) < 3 {
		return nil, fmt.Errorf("gaussian fit needs at least 3 points, got %d", len(xs))
	}
	amp := floats.Max(ys)
	mu := stat.Mean(xs, nil)
	sigma := stat.StdDev(xs, nil)
	if sigma <= 0 || math.IsNaN(sigma) {
		sigma = 1
	}
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			var sse float64
			for i, x := range xs {
				r := ys[i] - gaussianAt(p, x)
				sse += r * r
			}
			return sse
		},
	}
	result, err := optimize.Minimize(problem, []float64{amp, mu, sigma}, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("gaussian fit did not converge: %w", err)
	}
	out := make([]float64, len(xSmooth))
	for i, x := range xSmooth {
		out[i] = gaussianAt(result.X, x)
	}
	return out, nil
}

// CubicSplineSmooth fits a natural cubic spline through the samples and
// evaluates it at xSmooth. The x values must be strictly increasing.
func CubicSplineSmooth(xs, ys, xSmooth []float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("x and y lengths differ: %d vs %d", len(xs), len(ys))
	}
	if len(xs) < 3 {
		return nil, fmt.Errorf("cubic spline needs at least 3 points, got %d", len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("cubic spline needs strictly increasing x values")
		}
	}
	var spline interp.NaturalCubic
	if err := spline.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("cubic spline fit failed: %w", err)
	}
	out := make([]float64, len(xSmooth))
	for i, x := range xSmooth {
		out[i] = spline.Predict(x)
	}
	return out, nil
}

// LinearRegression returns the intercept and slope of the least-squares
// line through the samples.
func LinearRegression(xs, ys []float64) (intercept, slope float64) {
	return stat.LinearRegression(xs, ys, nil, false)
}

// fitSmooth dispatches to the fit for kind, evaluated at xSmooth.
func fitSmooth(kind FitKind, degree int, xs, ys, xSmooth []float64) ([]float64, error) {
	switch kind {
	case FitPoly:
		return PolySmooth(xs, ys, degree, xSmooth)
	case FitGaussian:
		return GaussianSmooth(xs, ys, xSmooth)
	case FitCubicSpline:
		return CubicSplineSmooth(xs, ys, xSmooth)
	default:
		return nil, fmt.Errorf("unknown fit kind %q", kind)
	}
}

// spanPoints returns n evenly spaced values covering [lo, hi].
func spanPoints(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
