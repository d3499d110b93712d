package markets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/merchpilot/fieldops-backend/pkg/db/models"
)

func setupMarketsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	markets := `
CREATE TABLE IF NOT EXISTS markets (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  chain_label TEXT NOT NULL,
  city TEXT,
  visit_count INTEGER NOT NULL DEFAULT 0,
  last_visit DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(markets).Error)
	return db
}

func newMarket(t *testing.T, db *gorm.DB, name, chainLabel string) *models.Market {
	t.Helper()

	market := &models.Market{
		ID:         uuid.New(),
		Name:       name,
		ChainLabel: chainLabel,
	}
	require.NoError(t, db.Create(market).Error)
	return market
}

func TestCreditVisitOncePerDay(t *testing.T) {
	db := setupMarketsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	market := newMarket(t, db, "EDEKA Hafen", "EDEKA")
	morning := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	afternoon := morning.Add(6 * time.Hour)
	nextDay := morning.AddDate(0, 0, 1)

	credited, err := repo.CreditVisit(ctx, market.ID, morning)
	require.NoError(t, err)
	require.True(t, credited)

	credited, err = repo.CreditVisit(ctx, market.ID, afternoon)
	require.NoError(t, err)
	require.False(t, credited)

	var got models.Market
	require.NoError(t, db.First(&got, "id = ?", market.ID).Error)
	require.Equal(t, 1, got.VisitCount)

	credited, err = repo.CreditVisit(ctx, market.ID, nextDay)
	require.NoError(t, err)
	require.True(t, credited)

	require.NoError(t, db.First(&got, "id = ?", market.ID).Error)
	require.Equal(t, 2, got.VisitCount)
	require.NotNil(t, got.LastVisit)
}

func TestCreditVisitUnknownMarket(t *testing.T) {
	db := setupMarketsTestDB(t)
	repo := NewRepository(db)

	credited, err := repo.CreditVisit(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	require.False(t, credited)
}

func TestMarketIDsForGroup(t *testing.T) {
	db := setupMarketsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	edeka := newMarket(t, db, "EDEKA Nord", "EDEKA Müller")
	eCenter := newMarket(t, db, "E-Center", "E-Center Hamburg")
	rewe := newMarket(t, db, "REWE City", "REWE")
	newMarket(t, db, "Kiosk", "Tante Emma")

	ids, err := repo.MarketIDsForGroup(ctx, GroupingEdeka)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{edeka.ID, eCenter.ID}, intersect(ids, edeka.ID, eCenter.ID, rewe.ID))

	ids, err = repo.MarketIDsForGroup(ctx, GroupingRewe)
	require.NoError(t, err)
	require.Contains(t, ids, rewe.ID)
	require.NotContains(t, ids, edeka.ID)
}

// intersect keeps only the candidate ids, shielding the shared in-memory DB
// from rows created by sibling tests.
func intersect(ids []uuid.UUID, candidates ...uuid.UUID) []uuid.UUID {
	keep := make(map[uuid.UUID]bool, len(candidates))
	for _, id := range candidates {
		keep[id] = true
	}
	var out []uuid.UUID
	for _, id := range ids {
		if keep[id] {
			out = append(out, id)
		}
	}
	return out
}

func TestNamesByIDs(t *testing.T) {
	db := setupMarketsTestDB(t)
	repo := NewRepository(db)

	a := newMarket(t, db, "Globus Süd", "Globus")
	b := newMarket(t, db, "REWE West", "REWE")

	names, err := repo.NamesByIDs(context.Background(), []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.Equal(t, "Globus Süd", names[a.ID])
	require.Equal(t, "REWE West", names[b.ID])

	names, err = repo.NamesByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, names)
}
