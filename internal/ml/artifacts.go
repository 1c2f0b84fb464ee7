package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Weights maps a model name to its ensemble voting weight. Weights need not
// sum to one; the combiner renormalizes over the models that responded.
type Weights map[string]float64

// DefaultWeight applies to a model that produced a score but has no entry in
// the weight table.
const DefaultWeight = 0.33

// DefaultWeights returns the fallback weight triple used when no training
// metrics artifact is available.
func DefaultWeights() Weights {
	return Weights{
		ModelXGBoost:       0.40,
		ModelRandomForest:  0.35,
		ModelNeuralNetwork: 0.25,
	}
}

// Get returns the weight for name, falling back to DefaultWeight.
func (w Weights) Get(name string) float64 {
	if v, ok := w[name]; ok {
		return v
	}
	return DefaultWeight
}

// Bundle is everything the serving path needs from the model artifact
// directory, loaded once at startup.
type Bundle struct {
	Registry *Registry
	Weights  Weights
	Metadata map[string]json.RawMessage
}

type trainingMetrics struct {
	Ensemble struct {
		Weights Weights `json:"weights"`
	} `json:"ensemble"`
}

// Load reads model and metric artifacts from dir. A missing model artifact is
// a normal operational state (partial deployment) and only logged; a present
// but unreadable artifact is an error.
func Load(dir string, logger zerolog.Logger) (*Bundle, error) {
	b := &Bundle{
		Registry: NewRegistry(logger),
		Weights:  DefaultWeights(),
		Metadata: make(map[string]json.RawMessage),
	}

	if err := loadModel(dir, "xgboost_model.json", ModelXGBoost, &BoostedModel{}, b.Registry, logger); err != nil {
		return nil, err
	}
	if err := loadModel(dir, "random_forest_model.json", ModelRandomForest, &ForestModel{}, b.Registry, logger); err != nil {
		return nil, err
	}
	if err := loadModel(dir, "neural_network_model.json", ModelNeuralNetwork, &MLPModel{}, b.Registry, logger); err != nil {
		return nil, err
	}

	metricsPath := filepath.Join(dir, "training_metrics.json")
	raw, err := os.ReadFile(metricsPath)
	switch {
	case os.IsNotExist(err):
		logger.Info().Msg("no training metrics artifact, using default ensemble weights")
	case err != nil:
		return nil, fmt.Errorf("read training metrics: %w", err)
	default:
		var tm trainingMetrics
		if err := json.Unmarshal(raw, &tm); err != nil {
			return nil, fmt.Errorf("parse training metrics: %w", err)
		}
		if len(tm.Ensemble.Weights) > 0 {
			b.Weights = tm.Ensemble.Weights
		}
		if err := json.Unmarshal(raw, &b.Metadata); err != nil {
			return nil, fmt.Errorf("parse training metrics sections: %w", err)
		}
		logger.Info().Int("models", b.Registry.Len()).Msg("loaded ensemble weights and metrics")
	}

	return b, nil
}

// scorerArtifact is implemented by the concrete model types so loadModel can
// unmarshal into them generically.
type scorerArtifact interface {
	Scorer
}

func loadModel(dir, file, name string, into scorerArtifact, reg *Registry, logger zerolog.Logger) error {
	path := filepath.Join(dir, file)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Warn().Str("model", name).Str("path", path).Msg("model artifact not found, serving without it")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s artifact: %w", name, err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("parse %s artifact: %w", name, err)
	}
	reg.Register(name, into)
	logger.Info().Str("model", name).Msg("loaded model")
	return nil
}
