package history

import "context"

// Repository is the durable, append-only prediction log.
type Repository interface {
	// Append stores one record under subjectID. Records are never updated.
	Append(ctx context.Context, subjectID string, rec *PredictionRecord) error
	// ListBySubject returns up to limit records for subjectID, most recent
	// first. An unknown subject yields an empty slice, not an error.
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]*PredictionRecord, error)
	// CountBySubject returns the number of durable records for subjectID.
	CountBySubject(ctx context.Context, subjectID string) (int, error)
	// Reset destroys and recreates the log. Test isolation only.
	Reset(ctx context.Context) error
}
