package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenqi/daystar/internal/contracts"
)

// ScoreRepository is the single access path to externally produced
// dimension scores.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// GetBySymbolAndDate retrieves one score record.
func (r *ScoreRepository) GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*contracts.ScoreRecord, error) {
	query := `
		SELECT symbol, trade_date, technical, capital_flow, relative_strength, catalyst, complete
		FROM data.dimension_scores
		WHERE symbol = $1 AND trade_date = $2
	`

	var rec contracts.ScoreRecord
	err := r.pool.QueryRow(ctx, query, symbol, date).Scan(
		&rec.Symbol, &rec.Date,
		&rec.Scores.Technical, &rec.Scores.CapitalFlow, &rec.Scores.RelativeStrength, &rec.Scores.Catalyst,
		&rec.Complete,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRange retrieves all score records in the window, ordered by date
// then symbol.
func (r *ScoreRepository) GetRange(ctx context.Context, from, to time.Time) ([]contracts.ScoreRecord, error) {
	query := `
		SELECT symbol, trade_date, technical, capital_flow, relative_strength, catalyst, complete
		FROM data.dimension_scores
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY trade_date ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []contracts.ScoreRecord
	for rows.Next() {
		var rec contracts.ScoreRecord
		if err := rows.Scan(
			&rec.Symbol, &rec.Date,
			&rec.Scores.Technical, &rec.Scores.CapitalFlow, &rec.Scores.RelativeStrength, &rec.Scores.Catalyst,
			&rec.Complete,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetByDate retrieves all score records for one trading day.
func (r *ScoreRepository) GetByDate(ctx context.Context, date time.Time) ([]contracts.ScoreRecord, error) {
	return r.GetRange(ctx, date, date)
}

// Save upserts a single score record.
func (r *ScoreRepository) Save(ctx context.Context, rec contracts.ScoreRecord) error {
	query := `
		INSERT INTO data.dimension_scores (symbol, trade_date, technical, capital_flow, relative_strength, catalyst, complete)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			technical = EXCLUDED.technical,
			capital_flow = EXCLUDED.capital_flow,
			relative_strength = EXCLUDED.relative_strength,
			catalyst = EXCLUDED.catalyst,
			complete = EXCLUDED.complete
	`

	_, err := r.pool.Exec(ctx, query,
		rec.Symbol, rec.Date,
		rec.Scores.Technical, rec.Scores.CapitalFlow, rec.Scores.RelativeStrength, rec.Scores.Catalyst,
		rec.Complete,
	)
	return err
}
