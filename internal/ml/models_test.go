package ml

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBoostedModel_Score(t *testing.T) {
	m := &BoostedModel{
		Bias: 0,
		Trees: []stump{
			{Feature: 0, Threshold: 0.5, Left: -1.0, Right: 1.0},
			{Feature: 1, Threshold: 0.5, Left: -0.5, Right: 0.5},
		},
	}

	// Both splits go right: margin = 1.5.
	got, err := m.Score([]float64{1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1.0 / (1.0 + math.Exp(-1.5))
	if !almostEqual(got, want) {
		t.Errorf("expected %f, got %f", want, got)
	}

	// Both splits go left: margin = -1.5, probability mirrors around 0.5.
	gotLeft, _ := m.Score([]float64{0, 0})
	if !almostEqual(gotLeft, 1-want) {
		t.Errorf("expected %f, got %f", 1-want, gotLeft)
	}
}

func TestBoostedModel_FeatureOutOfRange(t *testing.T) {
	m := &BoostedModel{Trees: []stump{{Feature: 5, Threshold: 0, Left: 0, Right: 1}}}
	if _, err := m.Score([]float64{1, 2}); err == nil {
		t.Fatal("expected error for out-of-range feature index")
	}
}

func TestForestModel_Score(t *testing.T) {
	m := &ForestModel{
		Trees: []stump{
			{Feature: 0, Threshold: 0.5, Left: 0.2, Right: 0.8},
			{Feature: 0, Threshold: 0.5, Left: 0.4, Right: 0.6},
		},
	}
	got, err := m.Score([]float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 0.7) {
		t.Errorf("expected 0.7, got %f", got)
	}
}

func TestForestModel_Empty(t *testing.T) {
	m := &ForestModel{}
	if _, err := m.Score([]float64{1}); err == nil {
		t.Fatal("expected error for empty forest")
	}
}

func TestMLPModel_Score(t *testing.T) {
	// Identity hidden layer then sigmoid output summing both inputs.
	m := &MLPModel{
		Layers: []denseLayer{
			{
				Weights:    [][]float64{{1, 0}, {0, 1}},
				Biases:     []float64{0, 0},
				Activation: "relu",
			},
			{
				Weights:    [][]float64{{1, 1}},
				Biases:     []float64{0},
				Activation: "sigmoid",
			},
		},
	}
	got, err := m.Score([]float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1.0 / (1.0 + math.Exp(-1.0))
	if !almostEqual(got, want) {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestMLPModel_ReLUClampsNegative(t *testing.T) {
	m := &MLPModel{
		Layers: []denseLayer{
			{Weights: [][]float64{{-1}}, Biases: []float64{0}, Activation: "relu"},
			{Weights: [][]float64{{1}}, Biases: []float64{0}, Activation: "sigmoid"},
		},
	}
	got, err := m.Score([]float64{5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5 after ReLU clamp, got %f", got)
	}
}

func TestMLPModel_DimensionMismatch(t *testing.T) {
	m := &MLPModel{
		Layers: []denseLayer{
			{Weights: [][]float64{{1, 1}}, Biases: []float64{0}, Activation: "sigmoid"},
		},
	}
	if _, err := m.Score([]float64{1, 2, 3}); err == nil {
		t.Fatal("expected error for input dimension mismatch")
	}
}
