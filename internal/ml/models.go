package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// stump is a depth-one decision rule: left value when x[Feature] < Threshold,
// right value otherwise.
type stump struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
}

func (t stump) eval(features []float64) (float64, error) {
	if t.Feature < 0 || t.Feature >= len(features) {
		return 0, fmt.Errorf("tree references feature %d, vector has %d", t.Feature, len(features))
	}
	if features[t.Feature] < t.Threshold {
		return t.Left, nil
	}
	return t.Right, nil
}

// BoostedModel is an additive regression-tree ensemble with a logistic link:
// each tree contributes a margin and the sigmoid of the summed margin is the
// positive-class probability.
type BoostedModel struct {
	Bias  float64 `json:"bias"`
	Trees []stump `json:"trees"`
}

func (m *BoostedModel) Score(features []float64) (float64, error) {
	margin := m.Bias
	for _, t := range m.Trees {
		v, err := t.eval(features)
		if err != nil {
			return 0, err
		}
		margin += v
	}
	return sigmoid(margin), nil
}

// ForestModel averages per-tree probabilities, each leaf holding a class
// probability directly.
type ForestModel struct {
	Trees []stump `json:"trees"`
}

func (m *ForestModel) Score(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, fmt.Errorf("forest has no trees")
	}
	sum := 0.0
	for _, t := range m.Trees {
		v, err := t.eval(features)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(len(m.Trees)), nil
}

// denseLayer is one fully connected layer: out = act(W·in + b), with W stored
// row-major as [outputs][inputs].
type denseLayer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

// MLPModel is a small feed-forward network with a single sigmoid output unit.
type MLPModel struct {
	Layers []denseLayer `json:"layers"`
}

func (m *MLPModel) Score(features []float64) (float64, error) {
	if len(m.Layers) == 0 {
		return 0, fmt.Errorf("network has no layers")
	}
	x := mat.NewVecDense(len(features), append([]float64(nil), features...))
	for i, layer := range m.Layers {
		rows := len(layer.Weights)
		if rows == 0 || rows != len(layer.Biases) {
			return 0, fmt.Errorf("layer %d: %d weight rows vs %d biases", i, rows, len(layer.Biases))
		}
		cols := len(layer.Weights[0])
		if cols != x.Len() {
			return 0, fmt.Errorf("layer %d expects %d inputs, got %d", i, cols, x.Len())
		}
		flat := make([]float64, 0, rows*cols)
		for _, row := range layer.Weights {
			if len(row) != cols {
				return 0, fmt.Errorf("layer %d has ragged weight rows", i)
			}
			flat = append(flat, row...)
		}
		w := mat.NewDense(rows, cols, flat)

		out := mat.NewVecDense(rows, nil)
		out.MulVec(w, x)
		for j := 0; j < rows; j++ {
			out.SetVec(j, activate(layer.Activation, out.AtVec(j)+layer.Biases[j]))
		}
		x = out
	}
	if x.Len() != 1 {
		return 0, fmt.Errorf("network output has %d units, want 1", x.Len())
	}
	return x.AtVec(0), nil
}

func activate(name string, v float64) float64 {
	switch name {
	case "relu":
		return math.Max(0, v)
	case "sigmoid":
		return sigmoid(v)
	default: // linear
		return v
	}
}

func sigmoid(v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-v))
}
