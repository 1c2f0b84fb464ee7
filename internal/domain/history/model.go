// Package history keeps the per-subject log of served predictions: a bounded
// most-recent-first in-memory cache in front of an append-only SQLite log.
package history

import "time"

// PredictionRecord is the immutable unit of history: one served prediction
// plus the clinically relevant snapshot of the input that produced it.
type PredictionRecord struct {
	ID              string             `json:"id"`
	CreatedAt       time.Time          `json:"created_at"`
	RiskLevel       string             `json:"risk_level"`
	RiskScore       float64            `json:"risk_score"`
	Confidence      float64            `json:"confidence"`
	Prediction      string             `json:"prediction"`
	Explanation     string             `json:"explanation"`
	Recommendations []string           `json:"recommendations"`
	ModelScores     map[string]float64 `json:"model_scores,omitempty"`

	// Patient snapshot
	PatientAge            float64 `json:"patient_age"`
	PatientGender         string  `json:"patient_gender"`
	RestingBP             float64 `json:"resting_bp"`
	Cholesterol           float64 `json:"cholesterol"`
	BloodSugarFasting     bool    `json:"blood_sugar_fasting"`
	MaxHeartRate          float64 `json:"max_heart_rate"`
	ExerciseInducedAngina bool    `json:"exercise_induced_angina"`
	Oldpeak               float64 `json:"oldpeak"`
	STSlope               string  `json:"st_slope"`
}
