package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carbovista/backend/internal/domain"
)

// Schema creates the audit tables if they do not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS analysis_logs (
	id              UUID PRIMARY KEY,
	aoi             JSONB NOT NULL,
	start_date      TEXT NOT NULL,
	end_date        TEXT NOT NULL,
	n_pixels        INTEGER NOT NULL DEFAULT 0,
	mean_acd        DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_carbon    DOUBLE PRECISION NOT NULL DEFAULT 0,
	stats           JSONB NOT NULL,
	error           TEXT,
	duration_ms     BIGINT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS analysis_logs_created_at_idx ON analysis_logs (created_at DESC);

CREATE TABLE IF NOT EXISTS prediction_logs (
	id                BIGSERIAL PRIMARY KEY,
	features          JSONB NOT NULL,
	predicted_acd_kg  DOUBLE PRECISION NOT NULL,
	confidence_score  DOUBLE PRECISION NOT NULL,
	range_low_kg      DOUBLE PRECISION NOT NULL,
	range_high_kg     DOUBLE PRECISION NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresRepository implements domain.AuditRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema applies Schema.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}
	return nil
}

// SaveAnalysisLog persists an AOI analysis outcome to PostgreSQL
func (r *PostgresRepository) SaveAnalysisLog(ctx context.Context, entry domain.AnalysisLog) error {
	query := `
		INSERT INTO analysis_logs (
			id, aoi, start_date, end_date, n_pixels, mean_acd, total_carbon,
			stats, error, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	aoi, err := json.Marshal(entry.AOI.Coordinates())
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal aoi: %w", err)
	}
	stats, err := json.Marshal(entry.Stats)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal stats: %w", err)
	}

	// nullable TEXT column: nil rather than empty string on success
	var errText interface{}
	if entry.Err != "" {
		errText = entry.Err
	}

	_, err = r.pool.Exec(ctx, query,
		entry.ID, aoi, entry.StartDate, entry.EndDate, entry.Stats.NPixels, entry.Stats.MeanACD,
		entry.Stats.TotalCarbon, stats, errText, entry.Duration.Milliseconds(), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save analysis log: %w", err)
	}

	return nil
}

// SavePredictionLog persists a point prediction request/response to PostgreSQL
func (r *PostgresRepository) SavePredictionLog(ctx context.Context, features map[string]float64, resp domain.PointPrediction) error {
	query := `
		INSERT INTO prediction_logs (
			features, predicted_acd_kg, confidence_score, range_low_kg, range_high_kg
		) VALUES ($1, $2, $3, $4, $5)
	`

	body, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal features: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		body, resp.PredictedACDKg, resp.ConfidenceScore, resp.ExpectedRangeKg[0], resp.ExpectedRangeKg[1],
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save prediction log: %w", err)
	}

	return nil
}

// RecentAnalyses retrieves the newest analysis logs from PostgreSQL
func (r *PostgresRepository) RecentAnalyses(ctx context.Context, limit int) ([]domain.AnalysisLog, error) {
	query := `
		SELECT id::text, aoi, start_date, end_date, stats, COALESCE(error, ''), duration_ms, created_at
		FROM analysis_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query analysis logs: %w", err)
	}
	defer rows.Close()

	results := make([]domain.AnalysisLog, 0, limit)
	for rows.Next() {
		var (
			l          domain.AnalysisLog
			aoi, stats []byte
			durationMs int64
		)
		err := rows.Scan(&l.ID, &aoi, &l.StartDate, &l.EndDate, &stats, &l.Err, &durationMs, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan analysis row: %w", err)
		}
		if err := json.Unmarshal(stats, &l.Stats); err != nil {
			return nil, fmt.Errorf("postgres: failed to decode stats for %s: %w", l.ID, err)
		}
		var coords [][][]float64
		if json.Unmarshal(aoi, &coords) == nil {
			l.AOI, _ = domain.ParseAOI(coords)
		}
		l.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read analysis logs: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
