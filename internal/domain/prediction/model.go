// Package prediction implements the cardiac-risk serving path: input
// validation, the deterministic feature transform shared with training,
// ensemble fan-out and combination, and the request/response surface.
package prediction

import "time"

// PatientRecord is one raw clinical measurement set. Field names follow the
// Cleveland heart-disease dataset convention; each field carries a declared
// valid range and out-of-range values are rejected before any model call.
type PatientRecord struct {
	Age               float64 `json:"age" validate:"gte=0,lte=120"`
	Sex               float64 `json:"sex" validate:"gte=0,lte=1"`
	ChestPainType     float64 `json:"cp" validate:"gte=0,lte=3"`
	RestingBP         float64 `json:"trestbps" validate:"gte=0,lte=300"`
	Cholesterol       float64 `json:"chol" validate:"gte=0,lte=600"`
	FastingBloodSugar float64 `json:"fbs" validate:"gte=0,lte=1"`
	RestingECG        float64 `json:"restecg" validate:"gte=0,lte=2"`
	MaxHeartRate      float64 `json:"thalach" validate:"gte=0,lte=250"`
	ExerciseAngina    float64 `json:"exang" validate:"gte=0,lte=1"`
	Oldpeak           float64 `json:"oldpeak" validate:"gte=0,lte=10"`
	Slope             float64 `json:"slope" validate:"gte=0,lte=2"`
	CA                float64 `json:"ca" validate:"gte=0,lte=4"`
	Thal              float64 `json:"thal" validate:"gte=0,lte=3"`
}

// PredictionResponse is what a caller gets back for one record. Scores are
// percentages in [0,100]; ConfidenceValid is false only on the zero-model
// fallback path, where RiskScore is a neutral 50 rather than a prediction.
type PredictionResponse struct {
	RiskScore          float64            `json:"risk_score"`
	RiskLevel          string             `json:"risk_level"`
	Confidence         float64            `json:"confidence"`
	ConfidenceValid    bool               `json:"confidence_valid"`
	Prediction         string             `json:"prediction"`
	ModelPredictions   map[string]float64 `json:"model_predictions"`
	EnsemblePrediction float64            `json:"ensemble_prediction"`
	Explanation        string             `json:"explanation"`
	Recommendations    []string           `json:"recommendations"`
	PredictionTimeMs   float64            `json:"prediction_time_ms"`
	Timestamp          time.Time          `json:"timestamp"`
}

type HealthResponse struct {
	Status             string          `json:"status"`
	ModelsLoaded       map[string]bool `json:"models_loaded"`
	PreprocessorLoaded bool            `json:"preprocessor_loaded"`
	TotalPredictions   int64           `json:"total_predictions"`
	AvgLatencyMs       float64         `json:"avg_latency_ms"`
	UptimeSeconds      float64         `json:"uptime_seconds"`
	Timestamp          time.Time       `json:"timestamp"`
}

type ModelInfoResponse struct {
	ModelsLoaded    []string           `json:"models_loaded"`
	EnsembleWeights map[string]float64 `json:"ensemble_weights"`
	TrainingMetrics map[string]any     `json:"training_metrics,omitempty"`
	FeatureCount    int                `json:"feature_count"`
}
