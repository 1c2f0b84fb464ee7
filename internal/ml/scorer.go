// Package ml loads trained classifier artifacts and scores feature vectors
// with them. Each model family is evaluated natively behind a single Scorer
// capability so the serving path never depends on a concrete model type.
package ml

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Canonical model names. The ensemble expects these three; any subset may be
// present at serving time.
const (
	ModelXGBoost       = "xgboost"
	ModelRandomForest  = "random_forest"
	ModelNeuralNetwork = "neural_network"
)

// ExpectedModels lists the models a fully provisioned deployment carries.
var ExpectedModels = []string{ModelXGBoost, ModelRandomForest, ModelNeuralNetwork}

// Scorer produces a risk probability in [0,1] for a preprocessed feature
// vector. Implementations are read-only after construction and safe for
// concurrent use.
type Scorer interface {
	Score(features []float64) (float64, error)
}

// Registry holds the scorers loaded at startup. It is populated once before
// the server accepts traffic and read-only afterwards.
type Registry struct {
	scorers map[string]Scorer
	logger  zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{scorers: make(map[string]Scorer), logger: logger}
}

func (r *Registry) Register(name string, s Scorer) {
	r.scorers[name] = s
}

func (r *Registry) Has(name string) bool {
	_, ok := r.scorers[name]
	return ok
}

func (r *Registry) Len() int {
	return len(r.scorers)
}

// ScoreAll fans the feature vector out to every registered scorer and returns
// name→probability for the models that produced a usable result. A scorer
// failure (error, panic, or non-finite output) removes that model from the
// result, never the whole request.
func (r *Registry) ScoreAll(features []float64) map[string]float64 {
	scores := make(map[string]float64, len(r.scorers))
	for name, s := range r.scorers {
		p, err := safeScore(s, features)
		if err != nil {
			r.logger.Warn().Err(err).Str("model", name).Msg("model scoring failed, excluding from ensemble")
			continue
		}
		scores[name] = p
	}
	return scores
}

func safeScore(s Scorer, features []float64) (p float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scorer panicked: %v", rec)
		}
	}()
	p, err = s.Score(features)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("scorer returned non-finite probability %v", p)
	}
	// Tolerate small numeric drift outside the unit interval.
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return p, nil
}
