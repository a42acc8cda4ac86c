// Package scale maps data values onto pixel ranges for the dashboard charts.
package scale

import "math"

// Linear is an affine map from [D0,D1] onto [R0,R1].
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinear returns a linear scale for the given domain and range.
func NewLinear(domain, rng [2]float64) Linear {
	return Linear{D0: domain[0], D1: domain[1], R0: rng[0], R1: rng[1]}
}

// Map returns the range value for x. A degenerate domain maps everything to R0.
func (s Linear) Map(x float64) float64 {
	if s.D0 == s.D1 {
		return s.R0
	}
	t := (x - s.D0) / (s.D1 - s.D0)
	return s.R0 + t*(s.R1-s.R0)
}

// Sqrt maps counts in [0,Max] onto radii in [MinR,MaxR] so that area grows
// linearly with the count above MinR.
type Sqrt struct {
	Max        float64
	MinR, MaxR float64
}

// NewSqrt returns a square-root scale for [0,maxCount].
func NewSqrt(maxCount, minR, maxR float64) Sqrt {
	return Sqrt{Max: maxCount, MinR: minR, MaxR: maxR}
}

// Radius returns the radius for count. With Max == 0 every count maps to MinR.
func (s Sqrt) Radius(count float64) float64 {
	if s.Max <= 0 || count <= 0 {
		return s.MinR
	}
	return s.MinR + (s.MaxR-s.MinR)*math.Sqrt(count)/math.Sqrt(s.Max)
}

// ProfitDomain returns the value axis domain for a set of mean profits: the
// top is 1.5x the largest mean (never below 0) and the bottom is 0 unless some
// mean is negative, in which case it is 1.5x the smallest mean.
func ProfitDomain(means []float64) (lo, hi float64) {
	if len(means) == 0 {
		return 0, 0
	}
	mn, mx := means[0], means[0]
	for _, m := range means[1:] {
		if m < mn {
			mn = m
		}
		if m > mx {
			mx = m
		}
	}
	hi = math.Max(mx*1.5, 0)
	if mn < 0 {
		lo = mn * 1.5
	}
	return lo, hi
}
