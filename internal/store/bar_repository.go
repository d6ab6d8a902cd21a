package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenqi/daystar/internal/contracts"
)

// BarRepository is the single access path to daily OHLCV bars.
type BarRepository struct {
	pool *pgxpool.Pool
}

// NewBarRepository creates a new bar repository.
func NewBarRepository(pool *pgxpool.Pool) *BarRepository {
	return &BarRepository{pool: pool}
}

// GetBySymbolAndDate retrieves one bar.
func (r *BarRepository) GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*contracts.Bar, error) {
	query := `
		SELECT symbol, trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_bars
		WHERE symbol = $1 AND trade_date = $2
	`

	var b contracts.Bar
	err := r.pool.QueryRow(ctx, query, symbol, date).Scan(
		&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetRange retrieves all bars in the window, ordered by date then
// symbol, ready for the backtest engine.
func (r *BarRepository) GetRange(ctx context.Context, from, to time.Time) ([]contracts.Bar, error) {
	query := `
		SELECT symbol, trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_bars
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY trade_date ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []contracts.Bar
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// GetLatestBySymbol retrieves the most recent bar for a symbol.
func (r *BarRepository) GetLatestBySymbol(ctx context.Context, symbol string) (*contracts.Bar, error) {
	query := `
		SELECT symbol, trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_bars
		WHERE symbol = $1
		ORDER BY trade_date DESC
		LIMIT 1
	`

	var b contracts.Bar
	err := r.pool.QueryRow(ctx, query, symbol).Scan(
		&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Save upserts a single bar.
func (r *BarRepository) Save(ctx context.Context, bar contracts.Bar) error {
	query := `
		INSERT INTO data.daily_bars (symbol, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`

	_, err := r.pool.Exec(ctx, query,
		bar.Symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
	)
	return err
}

// SaveBatch upserts multiple bars.
func (r *BarRepository) SaveBatch(ctx context.Context, bars []contracts.Bar) error {
	for _, bar := range bars {
		if err := r.Save(ctx, bar); err != nil {
			return err
		}
	}
	return nil
}
