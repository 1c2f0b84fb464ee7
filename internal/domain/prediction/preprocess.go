package prediction

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FeatureCount is the width of the serving feature vector: the 13 raw fields
// in canonical order followed by 6 engineered features. The order and the
// engineering formulas must match the ones the scaler was fitted against;
// drift here corrupts every prediction without raising an error.
const FeatureCount = 19

// ErrScalerNotFitted means the fitted normalization parameters are absent.
// Predictions cannot be served without them; unscaled features would be fed
// to models trained on scaled ones.
var ErrScalerNotFitted = errors.New("preprocessor scaler parameters not loaded")

// ScalerParams are the per-feature standardization parameters fitted once at
// training time and read-only at serving time.
type ScalerParams struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads the fitted scaler from preprocessor.json in dir. A missing
// artifact returns (nil, nil): the server can start and report itself
// degraded, but Transform will refuse to run.
func LoadScaler(dir string) (*ScalerParams, error) {
	path := filepath.Join(dir, "preprocessor.json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}
	var p ScalerParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse scaler artifact: %w", err)
	}
	if len(p.Mean) != FeatureCount || len(p.Scale) != FeatureCount {
		return nil, fmt.Errorf("scaler artifact has %d/%d parameters, want %d", len(p.Mean), len(p.Scale), FeatureCount)
	}
	return &p, nil
}

// Preprocessor turns a validated PatientRecord into the normalized feature
// vector the models were trained on. Pure and deterministic for fixed fitted
// parameters.
type Preprocessor struct {
	scaler *ScalerParams
}

func NewPreprocessor(scaler *ScalerParams) *Preprocessor {
	return &Preprocessor{scaler: scaler}
}

// Fitted reports whether normalization parameters are loaded.
func (p *Preprocessor) Fitted() bool {
	return p != nil && p.scaler != nil
}

// Transform builds the engineered feature vector and standardizes it with the
// fitted parameters. Fails with ErrScalerNotFitted rather than silently
// returning unscaled features.
func (p *Preprocessor) Transform(rec PatientRecord) ([]float64, error) {
	if !p.Fitted() {
		return nil, ErrScalerNotFitted
	}
	f := engineer(rec)
	for i := range f {
		scale := p.scaler.Scale[i]
		if scale == 0 {
			// A constant training feature; standard scalers emit 1 here.
			scale = 1
		}
		f[i] = (f[i] - p.scaler.Mean[i]) / scale
	}
	return f, nil
}

// engineer produces the unscaled 19-feature vector.
func engineer(r PatientRecord) []float64 {
	return []float64{
		r.Age, r.Sex, r.ChestPainType, r.RestingBP, r.Cholesterol,
		r.FastingBloodSugar, r.RestingECG, r.MaxHeartRate, r.ExerciseAngina,
		r.Oldpeak, r.Slope, r.CA, r.Thal,
		ageGroup(r.Age),
		riskFlag(r.Cholesterol, 240),
		riskFlag(r.RestingBP, 140),
		heartRateReserve(r.MaxHeartRate, r.Age),
		compositeRisk(r),
		r.Sex * r.Age,
	}
}

func ageGroup(age float64) float64 {
	switch {
	case age < 40:
		return 0
	case age < 50:
		return 1
	case age < 60:
		return 2
	default:
		return 3
	}
}

func riskFlag(value, threshold float64) float64 {
	if value > threshold {
		return 1
	}
	return 0
}

// heartRateReserve is the achieved fraction of the age-predicted maximum heart
// rate, clamped to [0,1]. A non-positive denominator (age >= 220) yields 0.
func heartRateReserve(maxHR, age float64) float64 {
	denom := 220 - age
	if denom <= 0 {
		return 0
	}
	r := maxHR / denom
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func compositeRisk(r PatientRecord) float64 {
	return 0.3*(r.Age/100) + 0.3*(r.RestingBP/200) + 0.4*(r.Cholesterol/300)
}
