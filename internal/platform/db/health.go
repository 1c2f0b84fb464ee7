package db

import (
	"context"
	"database/sql"
	"time"
)

// Health verifies the database connection is usable within a short deadline.
func Health(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
