package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardio/cardio/internal/domain/history"
	"github.com/cardio/cardio/internal/ml"
	"github.com/cardio/cardio/internal/platform/telemetry"
)

// Service orchestrates one prediction: transform, fan out to the models,
// combine, classify, measure, and hand the record to history. It is
// constructed once at startup and holds only read-only model state plus the
// shared history and telemetry handles.
type Service struct {
	pre      *Preprocessor
	registry *ml.Registry
	weights  ml.Weights
	metadata map[string]json.RawMessage
	history  *history.Service
	metrics  *telemetry.Metrics
	logger   zerolog.Logger
}

func NewService(pre *Preprocessor, bundle *ml.Bundle, hist *history.Service, metrics *telemetry.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		pre:      pre,
		registry: bundle.Registry,
		weights:  bundle.Weights,
		metadata: bundle.Metadata,
		history:  hist,
		metrics:  metrics,
		logger:   logger,
	}
}

// Predict serves one record. subjectID may be empty, in which case no history
// is written. The only error it can return is a configuration failure
// (ErrScalerNotFitted); model failures degrade the ensemble instead.
func (s *Service) Predict(ctx context.Context, rec PatientRecord, subjectID string) (*PredictionResponse, error) {
	start := time.Now()

	features, err := s.pre.Transform(rec)
	if err != nil {
		return nil, err
	}

	scores := s.registry.ScoreAll(features)
	prob, conf := Combine(scores, s.weights)
	riskScore := prob * 100
	level := Classify(riskScore)

	perModel := make(map[string]float64, len(scores))
	for name, p := range scores {
		perModel[name] = round2(p * 100)
	}

	latency := time.Since(start)
	s.metrics.ObservePrediction(latency)

	resp := &PredictionResponse{
		RiskScore:          round2(riskScore),
		RiskLevel:          level,
		Confidence:         round2(conf.Value),
		ConfidenceValid:    conf.Valid,
		Prediction:         verdict(riskScore, conf.Valid),
		ModelPredictions:   perModel,
		EnsemblePrediction: round4(prob),
		Explanation:        explain(level, len(scores)),
		Recommendations:    recommend(level, rec),
		PredictionTimeMs:   float64(latency.Microseconds()) / 1000.0,
		Timestamp:          time.Now().UTC(),
	}

	if subjectID != "" {
		s.history.Record(ctx, subjectID, recordOf(resp, rec))
	}
	return resp, nil
}

// BatchPredict serves records independently and in order. Per-record model
// degradation is absorbed per item; a configuration failure aborts the whole
// batch since no later record could succeed either.
func (s *Service) BatchPredict(ctx context.Context, recs []PatientRecord, subjectID string) ([]*PredictionResponse, error) {
	out := make([]*PredictionResponse, 0, len(recs))
	for i, rec := range recs {
		resp, err := s.Predict(ctx, rec, subjectID)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, resp)
	}
	return out, nil
}

// Health reports degraded when any expected model or the fitted scaler is
// absent. Partial deployments still serve; the status tells operators why
// confidence may be reduced.
func (s *Service) Health() *HealthResponse {
	loaded := make(map[string]bool, len(ml.ExpectedModels))
	healthy := s.pre.Fitted()
	for _, name := range ml.ExpectedModels {
		ok := s.registry.Has(name)
		loaded[name] = ok
		healthy = healthy && ok
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	return &HealthResponse{
		Status:             status,
		ModelsLoaded:       loaded,
		PreprocessorLoaded: s.pre.Fitted(),
		TotalPredictions:   s.metrics.TotalPredictions(),
		AvgLatencyMs:       s.metrics.AvgLatencyMs(),
		UptimeSeconds:      s.metrics.UptimeSeconds(),
		Timestamp:          time.Now().UTC(),
	}
}

// ModelInfo exposes the loaded model set, the effective ensemble weights and
// whatever training metric sections shipped with the artifacts.
func (s *Service) ModelInfo() *ModelInfoResponse {
	names := make([]string, 0, len(ml.ExpectedModels))
	for _, name := range ml.ExpectedModels {
		if s.registry.Has(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var metrics map[string]any
	if len(s.metadata) > 0 {
		metrics = make(map[string]any, len(s.metadata))
		for section, raw := range s.metadata {
			var v any
			if err := json.Unmarshal(raw, &v); err == nil {
				metrics[section] = v
			}
		}
	}

	return &ModelInfoResponse{
		ModelsLoaded:    names,
		EnsembleWeights: s.weights,
		TrainingMetrics: metrics,
		FeatureCount:    FeatureCount,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

func verdict(riskScore float64, confident bool) string {
	if !confident {
		return "Unavailable"
	}
	if riskScore >= 50 {
		return "Risk"
	}
	return "No Risk"
}

func explain(level string, modelCount int) string {
	if modelCount == 0 {
		return "No prediction models are available; the neutral fallback score was returned."
	}
	return fmt.Sprintf("Ensemble of %d model(s) assessed the cardiac risk as %s.", modelCount, level)
}

func recommend(level string, rec PatientRecord) []string {
	var recs []string
	switch level {
	case RiskLow:
		recs = append(recs, "Maintain current lifestyle and schedule routine checkups.")
	case RiskMedium:
		recs = append(recs, "Schedule a follow-up with your physician within three months.")
	case RiskHigh:
		recs = append(recs, "Consult a cardiologist soon for a full cardiac workup.")
	default:
		recs = append(recs, "Seek cardiology evaluation promptly.")
	}
	if rec.Cholesterol > 240 {
		recs = append(recs, "Cholesterol is elevated; consider dietary changes and a lipid panel.")
	}
	if rec.RestingBP > 140 {
		recs = append(recs, "Resting blood pressure is high; monitor regularly.")
	}
	if rec.ExerciseAngina == 1 {
		recs = append(recs, "Exercise-induced angina reported; avoid strenuous activity until evaluated.")
	}
	return recs
}

// recordOf snapshots the served response and the clinically relevant input
// fields into an immutable history record.
func recordOf(resp *PredictionResponse, rec PatientRecord) *history.PredictionRecord {
	return &history.PredictionRecord{
		RiskLevel:       resp.RiskLevel,
		RiskScore:       resp.RiskScore,
		Confidence:      resp.Confidence,
		Prediction:      resp.Prediction,
		Explanation:     resp.Explanation,
		Recommendations: resp.Recommendations,
		ModelScores:     resp.ModelPredictions,

		PatientAge:            rec.Age,
		PatientGender:         genderLabel(rec.Sex),
		RestingBP:             rec.RestingBP,
		Cholesterol:           rec.Cholesterol,
		BloodSugarFasting:     rec.FastingBloodSugar == 1,
		MaxHeartRate:          rec.MaxHeartRate,
		ExerciseInducedAngina: rec.ExerciseAngina == 1,
		Oldpeak:               rec.Oldpeak,
		STSlope:               slopeLabel(rec.Slope),
	}
}

func genderLabel(sex float64) string {
	if sex == 1 {
		return "male"
	}
	return "female"
}

func slopeLabel(slope float64) string {
	switch slope {
	case 0:
		return "upsloping"
	case 1:
		return "flat"
	case 2:
		return "downsloping"
	default:
		return "unknown"
	}
}
