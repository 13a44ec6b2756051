package motif

import (
	"math"
	"testing"
)

var uniform = [4]float64{0.25, 0.25, 0.25, 0.25}

func approx(t *testing.T, got, want, tol float64, what string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (tol %v)", what, got, want, tol)
	}
}

func TestMoments(t *testing.T) {
	x := Matrix{{1, 2, 3, 4}}
	mean, std := Moments(x, uniform)
	approx(t, mean, 2.5, 1e-12, "mean")
	approx(t, std, math.Sqrt(1.25), 1e-12, "std")

	// Two independent positions: means add, variances add.
	x2 := Matrix{{1, 2, 3, 4}, {1, 2, 3, 4}}
	mean2, std2 := Moments(x2, uniform)
	approx(t, mean2, 5, 1e-12, "mean of 2 positions")
	approx(t, std2, math.Sqrt(2.5), 1e-12, "std of 2 positions")
}

func TestDistributionPValue(t *testing.T) {
	// Single position with weights 0..3: each tail probability is exact.
	d := NewDistribution(Matrix{{0, 1, 2, 3}}, uniform)
	approx(t, d.PValue(-1), 1, 0, "PValue(-1)")
	approx(t, d.PValue(0), 1, 0, "PValue(0)")
	approx(t, d.PValue(0.5), 0.75, 1e-9, "PValue(0.5)")
	approx(t, d.PValue(1.5), 0.5, 1e-9, "PValue(1.5)")
	approx(t, d.PValue(2.5), 0.25, 1e-9, "PValue(2.5)")
	approx(t, d.PValue(3.5), 0, 0, "PValue(3.5)")
}

func TestThresholdAtP(t *testing.T) {
	d := NewDistribution(Matrix{{0, 1, 2, 3}}, uniform)
	thr := d.ThresholdAtP(0.25)
	if thr <= 2 || thr > 3 {
		t.Fatalf("ThresholdAtP(0.25) = %v, want in (2, 3]", thr)
	}
	// Only the top score passes that threshold.
	if p := d.PValue(thr); p > 0.25 {
		t.Fatalf("PValue(threshold) = %v, want <= 0.25", p)
	}
	if thr := d.ThresholdAtP(1); thr != 0 {
		t.Fatalf("ThresholdAtP(1) = %v, want minimum 0", thr)
	}
	if thr := d.ThresholdAtP(0); thr <= 3 {
		t.Fatalf("ThresholdAtP(0) = %v, want above maximum", thr)
	}
}

func TestThresholdAtFPR(t *testing.T) {
	d := NewDistribution(Matrix{{0, 1, 2, 3}}, uniform)
	one := d.ThresholdAtFPR(0.25, 1)
	if one != d.ThresholdAtP(0.25) {
		t.Fatalf("one window should equal ThresholdAtP: %v vs %v", one, d.ThresholdAtP(0.25))
	}
	// More windows spread the rate thinner, so the threshold rises.
	many := d.ThresholdAtFPR(0.25, 10)
	if many < one {
		t.Fatalf("threshold for 10 windows %v < threshold for 1 window %v", many, one)
	}
	if thr := d.ThresholdAtFPR(0, 5); thr <= 3 {
		t.Fatalf("fpr 0 threshold = %v, want above maximum", thr)
	}
	if thr := d.ThresholdAtFPR(1, 5); thr != 0 {
		t.Fatalf("fpr 1 threshold = %v, want minimum 0", thr)
	}
}

func TestDistributionDegenerate(t *testing.T) {
	d := NewDistribution(Matrix{{1, 1, 1, 1}}, uniform)
	if p := d.PValue(1); p != 1 {
		t.Fatalf("PValue(min) = %v, want 1", p)
	}
	if p := d.PValue(1.5); p != 0 {
		t.Fatalf("PValue above max = %v, want 0", p)
	}
	if thr := d.ThresholdAtP(0.5); thr <= 1 {
		t.Fatalf("degenerate ThresholdAtP(0.5) = %v, want above 1", thr)
	}
}
