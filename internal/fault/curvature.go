package fault

import "math"

// Curvature of the explicit surface z = f(x, y) given by second-order
// coefficients c = [c0, c1, c2, c3, c4, c5]. The callers guarantee len(c) == 6.
//
// With a = ∂f/∂x, b = ∂f/∂y and D = 1 + a² + b²:
//
//	κx = −[ −a·(4·c4·a + 2·c3·b) / (2·D^1.5) + 2·c4/√D ]
//	κy = −[ −b·(2·c3·a + 4·c5·b) / (2·D^1.5) + 2·c5/√D ]
//	H  = (κx + κy) / 2

// slopes returns the first partials of f at (x, y) and D = 1 + a² + b².
func slopes(x, y float64, c []float64) (a, b, d float64) {
	a = c[1] + 2*c[4]*x + c[3]*y
	b = c[2] + c[3]*x + 2*c[5]*y
	d = 1 + a*a + b*b
	return a, b, d
}

// CurvatureX is the x-direction term of the mean curvature at (x, y).
func CurvatureX(x, y float64, c []float64) float64 {
	a, b, d := slopes(x, y, c)
	c3, c4 := c[3], c[4]
	return -(-a*(4*c4*a+2*c3*b)/(2*math.Pow(d, 1.5)) + 2*c4/math.Sqrt(d))
}

// CurvatureY is the y-direction term of the mean curvature at (x, y).
func CurvatureY(x, y float64, c []float64) float64 {
	a, b, d := slopes(x, y, c)
	c3, c5 := c[3], c[5]
	return -(-b*(2*c3*a+4*c5*b)/(2*math.Pow(d, 1.5)) + 2*c5/math.Sqrt(d))
}

// MeanCurvature is 0.5·(CurvatureX + CurvatureY).
func MeanCurvature(x, y float64, c []float64) float64 {
	return 0.5 * (CurvatureX(x, y, c) + CurvatureY(x, y, c))
}
