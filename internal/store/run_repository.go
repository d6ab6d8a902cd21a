package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenqi/daystar/internal/perf"
)

// RunRecord is one persisted backtest run for reproducibility audits.
// ConfigHash ties the stored report back to the exact parameter set
// that produced it.
type RunRecord struct {
	ID         int64        `json:"id"`
	StrategyID string       `json:"strategy_id"`
	ConfigHash string       `json:"config_hash"`
	From       time.Time    `json:"from"`
	To         time.Time    `json:"to"`
	TradeCount int          `json:"trade_count"`
	Report     *perf.Report `json:"report"`
	CreatedAt  time.Time    `json:"created_at"`
}

// RunRepository persists backtest run results.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new run repository.
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// Save stores a run and returns its id.
func (r *RunRepository) Save(ctx context.Context, rec *RunRecord) (int64, error) {
	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO backtest.runs (strategy_id, config_hash, window_from, window_to, trade_count, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id
	`

	var id int64
	err = r.pool.QueryRow(ctx, query,
		rec.StrategyID, rec.ConfigHash, rec.From, rec.To, rec.TradeCount, reportJSON,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetLatest retrieves the most recent run for a strategy.
func (r *RunRepository) GetLatest(ctx context.Context, strategyID string) (*RunRecord, error) {
	query := `
		SELECT id, strategy_id, config_hash, window_from, window_to, trade_count, report, created_at
		FROM backtest.runs
		WHERE strategy_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var rec RunRecord
	var reportJSON []byte
	err := r.pool.QueryRow(ctx, query, strategyID).Scan(
		&rec.ID, &rec.StrategyID, &rec.ConfigHash, &rec.From, &rec.To, &rec.TradeCount, &reportJSON, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(reportJSON, &rec.Report); err != nil {
		return nil, err
	}
	return &rec, nil
}
