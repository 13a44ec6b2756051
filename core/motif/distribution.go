package motif

import (
	"math"
	"sort"
)

// distBins controls the resolution of the binned score distribution.
const distBins = 1 << 12

// Distribution is the score distribution of a log-odds matrix under a
// 0-order background, computed exactly for the moments and by dynamic
// programming over binned weights for tail probabilities.
type Distribution struct {
	mean, std float64
	min, max  float64
	step      float64
	survival  []float64 // survival[k] = P(score >= min + k*step)
}

// NewDistribution builds the distribution of single-window scores of x
// when bases are drawn independently from bg.
func NewDistribution(x Matrix, bg [4]float64) *Distribution {
	d := &Distribution{
		min: x.MinScore(),
		max: x.MaxScore(),
	}
	d.mean, d.std = Moments(x, bg)

	span := d.max - d.min
	if span <= 0 {
		// Every window scores the same.
		d.step = 1
		d.survival = []float64{1}
		return d
	}
	d.step = span / distBins

	// Quantize weights relative to their row minimum so partial sums are
	// small non-negative integers.
	q := make([][4]int, len(x))
	maxQ := 0
	for i := range x {
		rm := x.RowMin(i)
		rowMax := 0
		for j, w := range x[i] {
			k := int(math.Round((w - rm) / d.step))
			q[i][j] = k
			if k > rowMax {
				rowMax = k
			}
		}
		maxQ += rowMax
	}

	p := make([]float64, maxQ+1)
	p[0] = 1
	hi := 0
	for i := range x {
		next := make([]float64, maxQ+1)
		rowMax := 0
		for s, ps := range p[:hi+1] {
			if ps == 0 {
				continue
			}
			for j := 0; j < 4; j++ {
				next[s+q[i][j]] += ps * bg[j]
			}
		}
		for j := 0; j < 4; j++ {
			if q[i][j] > rowMax {
				rowMax = q[i][j]
			}
		}
		hi += rowMax
		p = next
	}

	surv := make([]float64, len(p))
	var tail float64
	for k := len(p) - 1; k >= 0; k-- {
		tail += p[k]
		surv[k] = tail
	}
	d.survival = surv
	return d
}

// Moments returns the exact mean and standard deviation of a single
// window score under bg. The deviation is floored at a tiny positive
// value so degenerate matrices still z-transform.
func Moments(x Matrix, bg [4]float64) (mean, std float64) {
	var m, v float64
	for i := range x {
		var e, e2 float64
		for j := 0; j < 4; j++ {
			w := x[i][j]
			e += bg[j] * w
			e2 += bg[j] * w * w
		}
		m += e
		v += e2 - e*e
	}
	if v < 0 {
		v = 0
	}
	std = math.Sqrt(v)
	if std < 1e-9 {
		std = 1e-9
	}
	return m, std
}

// Mean returns the expected single-window score.
func (d *Distribution) Mean() float64 { return d.mean }

// Std returns the standard deviation of the single-window score.
func (d *Distribution) Std() float64 { return d.std }

// PValue returns P(window score >= s) for one window.
func (d *Distribution) PValue(s float64) float64 {
	if s <= d.min {
		return 1
	}
	if s > d.max {
		return 0
	}
	k := int(math.Ceil((s - d.min) / d.step))
	if k < 0 {
		k = 0
	}
	if k >= len(d.survival) {
		return 0
	}
	return d.survival[k]
}

// ThresholdAtP returns the lowest score whose single-window p-value does
// not exceed p. When even the maximum score is too likely, the returned
// threshold exceeds the maximum so no window passes.
func (d *Distribution) ThresholdAtP(p float64) float64 {
	if p >= 1 {
		return d.min
	}
	if p <= 0 {
		return d.max + d.step
	}
	k := sort.Search(len(d.survival), func(k int) bool {
		return d.survival[k] <= p
	})
	if k == len(d.survival) {
		return d.max + d.step
	}
	return d.min + float64(k)*d.step
}

// ThresholdAtFPR converts a per-sequence false positive rate into a score
// threshold by spreading the rate over the windows of a sequence of the
// background model's length: p = 1-(1-fpr)^(1/windows).
func (d *Distribution) ThresholdAtFPR(fpr float64, windows int) float64 {
	if windows < 1 {
		windows = 1
	}
	if fpr <= 0 {
		return d.max + d.step
	}
	if fpr >= 1 {
		return d.min
	}
	p := 1 - math.Pow(1-fpr, 1/float64(windows))
	return d.ThresholdAtP(p)
}
