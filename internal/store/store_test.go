package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/wrenqi/daystar/internal/contracts"
	"github.com/wrenqi/daystar/pkg/config"
	"github.com/wrenqi/daystar/pkg/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()

	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestBarRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewBarRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bar := contracts.Bar{
		Symbol: "TEST00",
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Open:   100, High: 102, Low: 99, Close: 101, Volume: 1000,
	}

	if err := repo.Save(ctx, bar); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.GetBySymbolAndDate(ctx, bar.Symbol, bar.Date)
	if err != nil {
		t.Fatalf("GetBySymbolAndDate failed: %v", err)
	}
	if got.Close != bar.Close || got.Volume != bar.Volume {
		t.Errorf("got %+v, want %+v", got, bar)
	}
}

func TestScoreRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewScoreRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec := contracts.ScoreRecord{
		Symbol:   "TEST00",
		Date:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Complete: true,
		Scores: contracts.DimensionScores{
			Technical: 78, CapitalFlow: 82, RelativeStrength: 60, Catalyst: 40,
		},
	}

	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.GetBySymbolAndDate(ctx, rec.Symbol, rec.Date)
	if err != nil {
		t.Fatalf("GetBySymbolAndDate failed: %v", err)
	}
	if got.Scores != rec.Scores || got.Complete != rec.Complete {
		t.Errorf("got %+v, want %+v", got, rec)
	}
}
