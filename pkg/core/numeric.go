package core

import "math"

const (
	TwoPi        = 2 * math.Pi
	FourPi       = 4 * math.Pi
	InvPi        = 1 / math.Pi
	InvTwoPi     = 1 / (2 * math.Pi)
	InvFourPi    = 1 / (4 * math.Pi)
	TwoOverPi    = 2 / math.Pi
	HalfPi       = math.Pi / 2
	PiSquared    = math.Pi * math.Pi
	TwoPiSquared = 2 * math.Pi * math.Pi
)

// Sqr returns x*x
func Sqr(x float64) float64 {
	return x * x
}

// Rcp returns 1/x, or 0 when x is 0
func Rcp(x float64) float64 {
	if x == 0 {
		return 0
	}
	return 1 / x
}

// Clamp restricts x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}

// ClampInt restricts x to [lo, hi]
func ClampInt(x, lo, hi int) int {
	return max(lo, min(hi, x))
}

// Cos2Sin returns sin(θ) from cos(θ) for θ in [0, π]
func Cos2Sin(cosTheta float64) float64 {
	return math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
}

// SafeAcos clamps its argument to [-1, 1] before calling math.Acos
func SafeAcos(x float64) float64 {
	return math.Acos(Clamp(x, -1, 1))
}

// SafeSqrt returns the square root of max(0, x)
func SafeSqrt(x float64) float64 {
	return math.Sqrt(math.Max(0, x))
}
