package activity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

func decp(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func testIndex() (CatalogIndex, models.CatalogItem, models.CatalogItem) {
	flat := models.CatalogItem{
		ID:        uuid.New(),
		Kind:      enums.ItemTypeDisplay,
		Name:      "Thekendisplay",
		ItemValue: decp(12.50),
	}
	palette := models.CatalogItem{
		ID:   uuid.New(),
		Kind: enums.ItemTypePalette,
		Name: "Frühjahrspalette",
	}
	palette.ProductLines = []models.ProductLine{
		{ID: uuid.New(), CatalogItemID: palette.ID, Name: "Cola 0.5l", ValuePerUnit: decimal.NewFromFloat(1.20)},
		{ID: uuid.New(), CatalogItemID: palette.ID, Name: "Limo 1l", ValuePerUnit: decimal.NewFromFloat(1.80)},
	}

	repID := uuid.New()
	marketID := uuid.New()
	index := NewCatalogIndex(
		[]models.CatalogItem{flat, palette},
		map[uuid.UUID]string{repID: "Anna Schmidt"},
		map[uuid.UUID]string{marketID: "EDEKA Nord"},
	)
	return index, flat, palette
}

func firstKey(m map[uuid.UUID]string) uuid.UUID {
	for k := range m {
		return k
	}
	return uuid.Nil
}

func TestBuildActivitiesFlatItem(t *testing.T) {
	index, flat, _ := testIndex()
	repID := firstKey(index.RepNames)
	marketID := firstKey(index.MarketNames)

	record := models.SubmissionRecord{
		ID:        uuid.New(),
		WaveID:    uuid.New(),
		RepID:     repID,
		MarketID:  &marketID,
		BatchID:   uuid.New(),
		ItemType:  enums.ItemTypeDisplay,
		ItemID:    flat.ID,
		Quantity:  3,
		CreatedAt: time.Now(),
	}

	activities := BuildActivities([]models.SubmissionRecord{record}, index)
	require.Len(t, activities, 1)
	got := activities[0]
	require.Equal(t, "Thekendisplay", got.ItemName)
	require.Equal(t, "Anna Schmidt", got.RepName)
	require.Equal(t, "EDEKA Nord", got.MarketName)
	require.Equal(t, enums.ResolutionResolved, got.Resolution)
	require.True(t, got.Value.Equal(decimal.NewFromFloat(37.50)), "got %s", got.Value)
	require.Equal(t, []uuid.UUID{record.ID}, got.SubmissionIDs)
}

func TestBuildActivitiesGroupsCompositeByBatch(t *testing.T) {
	index, _, palette := testIndex()
	repID := firstKey(index.RepNames)
	marketID := firstKey(index.MarketNames)

	waveID := uuid.New()
	batchID := uuid.New()
	now := time.Now()
	records := []models.SubmissionRecord{
		{
			ID: uuid.New(), WaveID: waveID, RepID: repID, MarketID: &marketID,
			BatchID: batchID, ItemType: enums.ItemTypePalette,
			ItemID: palette.ProductLines[0].ID, Quantity: 10,
			ValuePerUnit: decp(1.20), CreatedAt: now,
		},
		{
			ID: uuid.New(), WaveID: waveID, RepID: repID, MarketID: &marketID,
			BatchID: batchID, ItemType: enums.ItemTypePalette,
			ItemID: palette.ProductLines[1].ID, Quantity: 5,
			ValuePerUnit: decp(1.80), CreatedAt: now.Add(2 * time.Second),
		},
	}

	activities := BuildActivities(records, index)
	require.Len(t, activities, 1)
	got := activities[0]
	require.Equal(t, "Frühjahrspalette", got.ItemName)
	require.Equal(t, 15, got.Quantity)
	// 10×1.20 + 5×1.80 = 21.00
	require.True(t, got.Value.Equal(decimal.NewFromFloat(21.00)), "got %s", got.Value)
	require.Equal(t, enums.ResolutionResolved, got.Resolution)
	require.Len(t, got.SubmissionIDs, 2)
}

func TestBuildActivitiesMinuteBucketFallbackForLegacyRows(t *testing.T) {
	index, _, palette := testIndex()
	repID := firstKey(index.RepNames)
	marketID := firstKey(index.MarketNames)

	waveID := uuid.New()
	bucket := time.Date(2026, 3, 12, 14, 30, 10, 0, time.UTC)
	records := []models.SubmissionRecord{
		{
			ID: uuid.New(), WaveID: waveID, RepID: repID, MarketID: &marketID,
			ItemType: enums.ItemTypePalette, ItemID: palette.ProductLines[0].ID,
			Quantity: 2, ValuePerUnit: decp(1.20), CreatedAt: bucket,
		},
		{
			ID: uuid.New(), WaveID: waveID, RepID: repID, MarketID: &marketID,
			ItemType: enums.ItemTypePalette, ItemID: palette.ProductLines[1].ID,
			Quantity: 1, ValuePerUnit: decp(1.80), CreatedAt: bucket.Add(40 * time.Second),
		},
		// lands in the next minute, so it is a separate drop-off
		{
			ID: uuid.New(), WaveID: waveID, RepID: repID, MarketID: &marketID,
			ItemType: enums.ItemTypePalette, ItemID: palette.ProductLines[0].ID,
			Quantity: 4, ValuePerUnit: decp(1.20), CreatedAt: bucket.Add(70 * time.Second),
		},
	}

	activities := BuildActivities(records, index)
	require.Len(t, activities, 2)
	require.Equal(t, 4, activities[0].Quantity)
	require.Equal(t, 3, activities[1].Quantity)
}

func TestBuildActivitiesOrphanRecoveryByValue(t *testing.T) {
	index, _, _ := testIndex()
	repID := firstKey(index.RepNames)

	// references a deleted line; 1.80 uniquely matches "Limo 1l"
	record := models.SubmissionRecord{
		ID: uuid.New(), WaveID: uuid.New(), RepID: repID,
		BatchID: uuid.New(), ItemType: enums.ItemTypeSchuette,
		ItemID: uuid.New(), Quantity: 6,
		ValuePerUnit: decp(1.80), CreatedAt: time.Now(),
	}

	activities := BuildActivities([]models.SubmissionRecord{record}, index)
	require.Len(t, activities, 1)
	got := activities[0]
	require.Equal(t, enums.ResolutionFallback, got.Resolution)
	require.Equal(t, "Frühjahrspalette", got.ItemName)
	require.True(t, got.Value.Equal(decimal.NewFromFloat(10.80)), "got %s", got.Value)
}

func TestBuildActivitiesOrphanWithoutMatchKeepsValue(t *testing.T) {
	index, _, _ := testIndex()
	repID := firstKey(index.RepNames)

	// 9.99 matches no live line; value must still derive from the snapshot
	record := models.SubmissionRecord{
		ID: uuid.New(), WaveID: uuid.New(), RepID: repID,
		BatchID: uuid.New(), ItemType: enums.ItemTypePalette,
		ItemID: uuid.New(), Quantity: 2,
		ValuePerUnit: decp(9.99), CreatedAt: time.Now(),
	}

	activities := BuildActivities([]models.SubmissionRecord{record}, index)
	require.Len(t, activities, 1)
	got := activities[0]
	require.Equal(t, enums.ResolutionUnresolved, got.Resolution)
	require.Equal(t, OrphanPlaceholder, got.ItemName)
	require.True(t, got.Value.Equal(decimal.NewFromFloat(19.98)), "got %s", got.Value)
}

func TestBuildActivitiesAmbiguousValueRefusesGuess(t *testing.T) {
	flat := models.CatalogItem{ID: uuid.New(), Kind: enums.ItemTypeDisplay, Name: "X", ItemValue: decp(1)}
	palette := models.CatalogItem{ID: uuid.New(), Kind: enums.ItemTypePalette, Name: "P"}
	palette.ProductLines = []models.ProductLine{
		{ID: uuid.New(), CatalogItemID: palette.ID, Name: "A", ValuePerUnit: decimal.NewFromFloat(1.50)},
		{ID: uuid.New(), CatalogItemID: palette.ID, Name: "B", ValuePerUnit: decimal.NewFromFloat(1.50)},
	}
	index := NewCatalogIndex([]models.CatalogItem{flat, palette}, nil, nil)

	record := models.SubmissionRecord{
		ID: uuid.New(), WaveID: uuid.New(), RepID: uuid.New(),
		BatchID: uuid.New(), ItemType: enums.ItemTypePalette,
		ItemID: uuid.New(), Quantity: 1,
		ValuePerUnit: decp(1.50), CreatedAt: time.Now(),
	}

	activities := BuildActivities([]models.SubmissionRecord{record}, index)
	require.Len(t, activities, 1)
	require.Equal(t, enums.ResolutionUnresolved, activities[0].Resolution)
	require.True(t, activities[0].Value.Equal(decimal.NewFromFloat(1.50)))
}

func TestBuildActivitiesNewestFirst(t *testing.T) {
	index, flat, _ := testIndex()
	repID := firstKey(index.RepNames)

	old := models.SubmissionRecord{
		ID: uuid.New(), WaveID: uuid.New(), RepID: repID, BatchID: uuid.New(),
		ItemType: enums.ItemTypeDisplay, ItemID: flat.ID, Quantity: 1,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	recent := models.SubmissionRecord{
		ID: uuid.New(), WaveID: old.WaveID, RepID: repID, BatchID: uuid.New(),
		ItemType: enums.ItemTypeDisplay, ItemID: flat.ID, Quantity: 2,
		CreatedAt: time.Now(),
	}

	activities := BuildActivities([]models.SubmissionRecord{old, recent}, index)
	require.Len(t, activities, 2)
	require.Equal(t, 2, activities[0].Quantity)
	require.Equal(t, 1, activities[1].Quantity)
}

func TestBuildActivitiesKeepsInputOrderOnEqualTimestamps(t *testing.T) {
	index, flat, _ := testIndex()
	repID := firstKey(index.RepNames)
	at := time.Now()

	first := models.SubmissionRecord{
		ID: uuid.New(), WaveID: uuid.New(), RepID: repID, BatchID: uuid.New(),
		ItemType: enums.ItemTypeDisplay, ItemID: flat.ID, Quantity: 1,
		CreatedAt: at,
	}
	second := models.SubmissionRecord{
		ID: uuid.New(), WaveID: first.WaveID, RepID: repID, BatchID: uuid.New(),
		ItemType: enums.ItemTypeDisplay, ItemID: flat.ID, Quantity: 2,
		CreatedAt: at,
	}

	activities := BuildActivities([]models.SubmissionRecord{first, second}, index)
	require.Len(t, activities, 2)
	require.Equal(t, 1, activities[0].Quantity)
	require.Equal(t, 2, activities[1].Quantity)
}
