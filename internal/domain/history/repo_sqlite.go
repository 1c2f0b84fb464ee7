package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type sqliteRepo struct{ db *sql.DB }

// NewSQLiteRepo creates the predictions table if needed and returns a
// Repository backed by it.
func NewSQLiteRepo(db *sql.DB) (Repository, error) {
	r := &sqliteRepo{db: db}
	if err := r.initSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return r, nil
}

const createPredictionsTable = `
CREATE TABLE IF NOT EXISTS predictions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	record_id TEXT NOT NULL,
	subject_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	risk_level TEXT NOT NULL,
	risk_score REAL NOT NULL,
	confidence REAL NOT NULL,
	prediction TEXT NOT NULL,
	explanation TEXT,
	recommendations TEXT,
	model_scores TEXT,
	patient_age REAL,
	patient_gender TEXT,
	resting_bp REAL,
	cholesterol REAL,
	blood_sugar_fasting INTEGER,
	max_heart_rate REAL,
	exercise_induced_angina INTEGER,
	oldpeak REAL,
	st_slope TEXT
);
CREATE INDEX IF NOT EXISTS idx_predictions_subject ON predictions(subject_id);`

func (r *sqliteRepo) initSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createPredictionsTable)
	return err
}

func (r *sqliteRepo) Append(ctx context.Context, subjectID string, rec *PredictionRecord) error {
	recommendations, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	modelScores, err := json.Marshal(rec.ModelScores)
	if err != nil {
		return fmt.Errorf("encode model scores: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO predictions (
			record_id, subject_id, created_at, risk_level, risk_score, confidence,
			prediction, explanation, recommendations, model_scores,
			patient_age, patient_gender, resting_bp, cholesterol,
			blood_sugar_fasting, max_heart_rate, exercise_induced_angina,
			oldpeak, st_slope
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, subjectID, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.RiskLevel, rec.RiskScore, rec.Confidence,
		rec.Prediction, rec.Explanation, string(recommendations), string(modelScores),
		rec.PatientAge, rec.PatientGender, rec.RestingBP, rec.Cholesterol,
		boolToInt(rec.BloodSugarFasting), rec.MaxHeartRate, boolToInt(rec.ExerciseInducedAngina),
		rec.Oldpeak, rec.STSlope)
	return err
}

func (r *sqliteRepo) ListBySubject(ctx context.Context, subjectID string, limit int) ([]*PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT record_id, created_at, risk_level, risk_score, confidence,
			prediction, explanation, recommendations, model_scores,
			patient_age, patient_gender, resting_bp, cholesterol,
			blood_sugar_fasting, max_heart_rate, exercise_induced_angina,
			oldpeak, st_slope
		FROM predictions WHERE subject_id = ? ORDER BY id DESC LIMIT ?`,
		subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*PredictionRecord
	for rows.Next() {
		var rec PredictionRecord
		var createdAt string
		var recommendations, modelScores sql.NullString
		var fbs, exang int
		if err := rows.Scan(&rec.ID, &createdAt, &rec.RiskLevel, &rec.RiskScore,
			&rec.Confidence, &rec.Prediction, &rec.Explanation,
			&recommendations, &modelScores,
			&rec.PatientAge, &rec.PatientGender, &rec.RestingBP, &rec.Cholesterol,
			&fbs, &rec.MaxHeartRate, &exang, &rec.Oldpeak, &rec.STSlope); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = t
		}
		rec.BloodSugarFasting = fbs != 0
		rec.ExerciseInducedAngina = exang != 0
		if recommendations.Valid && recommendations.String != "" {
			if err := json.Unmarshal([]byte(recommendations.String), &rec.Recommendations); err != nil {
				return nil, fmt.Errorf("decode recommendations for %s: %w", rec.ID, err)
			}
		}
		if modelScores.Valid && modelScores.String != "" && modelScores.String != "null" {
			if err := json.Unmarshal([]byte(modelScores.String), &rec.ModelScores); err != nil {
				return nil, fmt.Errorf("decode model scores for %s: %w", rec.ID, err)
			}
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func (r *sqliteRepo) CountBySubject(ctx context.Context, subjectID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM predictions WHERE subject_id = ?`, subjectID).Scan(&n)
	return n, err
}

func (r *sqliteRepo) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DROP TABLE IF EXISTS predictions`); err != nil {
		return fmt.Errorf("drop predictions table: %w", err)
	}
	return r.initSchema(ctx)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
