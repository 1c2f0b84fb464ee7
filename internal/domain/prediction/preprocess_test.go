package prediction

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func identityScaler() *ScalerParams {
	p := &ScalerParams{Mean: make([]float64, FeatureCount), Scale: make([]float64, FeatureCount)}
	for i := range p.Scale {
		p.Scale[i] = 1
	}
	return p
}

func canonicalRecord() PatientRecord {
	return PatientRecord{
		Age: 63, Sex: 1, ChestPainType: 3, RestingBP: 145, Cholesterol: 233,
		FastingBloodSugar: 1, RestingECG: 0, MaxHeartRate: 150, ExerciseAngina: 0,
		Oldpeak: 2.3, Slope: 0, CA: 0, Thal: 1,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTransform_Deterministic(t *testing.T) {
	pre := NewPreprocessor(identityScaler())
	rec := canonicalRecord()

	a, err := pre.Transform(rec)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	b, err := pre.Transform(rec)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if len(a) != FeatureCount {
		t.Fatalf("expected %d features, got %d", FeatureCount, len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("feature %d differs across identical calls: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestTransform_EngineeredFeatures(t *testing.T) {
	pre := NewPreprocessor(identityScaler())
	f, err := pre.Transform(canonicalRecord())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	// Raw fields occupy 0..12; engineered features follow in fixed order.
	wantEngineered := []float64{
		3,                               // age_group: 63 falls in the >=60 bucket
		0,                               // chol_risk: 233 <= 240
		1,                               // bp_risk: 145 > 140
		150.0 / 157.0,                   // hr_reserve
		0.3*0.63 + 0.3*0.725 + 0.4*(233.0/300.0), // composite_risk
		63, // sex * age
	}
	for i, want := range wantEngineered {
		if got := f[13+i]; !almostEqual(got, want) {
			t.Errorf("engineered feature %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestTransform_AgeGroupBuckets(t *testing.T) {
	cases := []struct {
		age  float64
		want float64
	}{
		{39, 0}, {40, 1}, {49, 1}, {50, 2}, {59, 2}, {60, 3}, {90, 3},
	}
	pre := NewPreprocessor(identityScaler())
	for _, tc := range cases {
		rec := canonicalRecord()
		rec.Age = tc.age
		f, err := pre.Transform(rec)
		if err != nil {
			t.Fatalf("transform: %v", err)
		}
		if f[13] != tc.want {
			t.Errorf("age %v: expected bucket %v, got %v", tc.age, tc.want, f[13])
		}
	}
}

func TestHeartRateReserve_GuardsAndClamps(t *testing.T) {
	if got := heartRateReserve(150, 220); got != 0 {
		t.Errorf("expected 0 for non-positive denominator, got %v", got)
	}
	if got := heartRateReserve(150, 230); got != 0 {
		t.Errorf("expected 0 for negative denominator, got %v", got)
	}
	if got := heartRateReserve(250, 100); got != 1 {
		t.Errorf("expected clamp to 1, got %v", got)
	}
	if got := heartRateReserve(60, 100); !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %v", got)
	}
}

func TestTransform_AppliesNormalization(t *testing.T) {
	scaler := identityScaler()
	scaler.Mean[0] = 50
	scaler.Scale[0] = 10
	pre := NewPreprocessor(scaler)

	f, err := pre.Transform(canonicalRecord())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !almostEqual(f[0], (63.0-50.0)/10.0) {
		t.Errorf("expected standardized age 1.3, got %v", f[0])
	}
}

func TestTransform_NotFitted(t *testing.T) {
	pre := NewPreprocessor(nil)
	if _, err := pre.Transform(canonicalRecord()); !errors.Is(err, ErrScalerNotFitted) {
		t.Errorf("expected ErrScalerNotFitted, got %v", err)
	}
}

func TestLoadScaler(t *testing.T) {
	dir := t.TempDir()

	// Missing artifact is a normal degraded state, not an error.
	p, err := LoadScaler(dir)
	if err != nil || p != nil {
		t.Errorf("expected (nil, nil) for absent artifact, got (%v, %v)", p, err)
	}

	good := `{"mean":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"scale":[1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1]}`
	if err := os.WriteFile(filepath.Join(dir, "preprocessor.json"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err = LoadScaler(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.Mean) != FeatureCount || len(p.Scale) != FeatureCount {
		t.Errorf("unexpected parameter widths: %d/%d", len(p.Mean), len(p.Scale))
	}

	if err := os.WriteFile(filepath.Join(dir, "preprocessor.json"), []byte(`{"mean":[1,2],"scale":[1,2]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScaler(dir); err == nil {
		t.Error("expected error for wrong parameter count")
	}
}
