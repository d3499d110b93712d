package activity

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// OrphanPlaceholder names product lines whose catalog reference could not be
// recovered. The contributed value still counts via the snapshot.
const OrphanPlaceholder = "Unbekanntes Produkt"

// BuildActivities turns raw submission rows into display-ready activities.
// Flat-item rows map one to one. Composite rows are grouped into one activity
// per logical drop-off: by batch id when present, otherwise by
// (rep, market, parent item, minute bucket) for rows predating batch ids.
// Output is ordered newest first.
func BuildActivities(records []models.SubmissionRecord, index CatalogIndex) []Activity {
	var activities []Activity
	groups := make(map[compositeKey]*compositeGroup)
	var groupOrder []compositeKey

	for _, record := range records {
		if !record.ItemType.IsComposite() {
			activities = append(activities, resolveFlat(record, index))
			continue
		}

		line, parentID, status := resolveLine(record, index)
		key := groupKeyFor(record, parentID)
		group, ok := groups[key]
		if !ok {
			group = &compositeGroup{itemType: record.ItemType}
			groups[key] = group
			groupOrder = append(groupOrder, key)
		}
		group.add(record, line, status, index)
	}

	for _, key := range groupOrder {
		activities = append(activities, groups[key].toActivity(index))
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].OccurredAt.After(activities[j].OccurredAt)
	})
	return activities
}

type compositeKey struct {
	batchID  uuid.UUID
	repID    uuid.UUID
	marketID uuid.UUID
	parentID uuid.UUID
	bucket   int64
}

func groupKeyFor(record models.SubmissionRecord, parentID uuid.UUID) compositeKey {
	if record.BatchID != uuid.Nil {
		return compositeKey{batchID: record.BatchID, parentID: parentID}
	}
	marketID := uuid.Nil
	if record.MarketID != nil {
		marketID = *record.MarketID
	}
	return compositeKey{
		repID:    record.RepID,
		marketID: marketID,
		parentID: parentID,
		bucket:   record.CreatedAt.Truncate(time.Minute).Unix(),
	}
}

type compositeGroup struct {
	itemType      enums.ItemType
	waveID        uuid.UUID
	repID         uuid.UUID
	marketID      *uuid.UUID
	parentName    string
	quantity      int
	value         decimal.Decimal
	resolution    enums.ResolutionStatus
	occurredAt    time.Time
	submissionIDs []uuid.UUID
}

func (g *compositeGroup) add(record models.SubmissionRecord, line *models.ProductLine, status enums.ResolutionStatus, index CatalogIndex) {
	g.waveID = record.WaveID
	g.repID = record.RepID
	if record.MarketID != nil {
		g.marketID = record.MarketID
	}
	if record.CreatedAt.After(g.occurredAt) {
		g.occurredAt = record.CreatedAt
	}
	g.submissionIDs = append(g.submissionIDs, record.ID)
	g.quantity += record.Quantity
	g.value = g.value.Add(lineValue(record, line))
	g.resolution = worseResolution(g.resolution, status)
	if g.parentName == "" && line != nil {
		if parent, ok := index.Parents[line.CatalogItemID]; ok {
			g.parentName = parent.Name
		}
	}
}

func (g *compositeGroup) toActivity(index CatalogIndex) Activity {
	name := g.parentName
	if name == "" {
		name = OrphanPlaceholder
	}
	activity := Activity{
		WaveID:        g.waveID,
		RepID:         g.repID,
		RepName:       index.RepNames[g.repID],
		MarketID:      g.marketID,
		ItemType:      g.itemType,
		ItemName:      name,
		Quantity:      g.quantity,
		Value:         g.value.Round(2),
		Resolution:    g.resolution,
		OccurredAt:    g.occurredAt,
		SubmissionIDs: g.submissionIDs,
	}
	if g.marketID != nil {
		activity.MarketName = index.MarketNames[*g.marketID]
	}
	return activity
}

// lineValue always derives from the snapshot when present; name resolution
// failure must never zero a financial total.
func lineValue(record models.SubmissionRecord, line *models.ProductLine) decimal.Decimal {
	quantity := decimal.NewFromInt(int64(record.Quantity))
	if record.ValuePerUnit != nil {
		return quantity.Mul(*record.ValuePerUnit)
	}
	if line != nil {
		return quantity.Mul(line.ValuePerUnit)
	}
	return decimal.Zero
}

// resolveLine recovers the product line behind a composite submission.
// Stage one matches by id; stage two matches the snapshotted value per unit
// against live lines of the same wave, accepted only when unique.
func resolveLine(record models.SubmissionRecord, index CatalogIndex) (*models.ProductLine, uuid.UUID, enums.ResolutionStatus) {
	if line, ok := index.Lines[record.ItemID]; ok {
		return &line, line.CatalogItemID, enums.ResolutionResolved
	}
	if record.ValuePerUnit == nil {
		return nil, uuid.Nil, enums.ResolutionUnresolved
	}

	var match *models.ProductLine
	for i := range index.WaveLines {
		candidate := index.WaveLines[i]
		if !candidate.ValuePerUnit.Equal(*record.ValuePerUnit) {
			continue
		}
		if match != nil {
			// ambiguous, refuse to guess
			return nil, uuid.Nil, enums.ResolutionUnresolved
		}
		match = &candidate
	}
	if match == nil {
		return nil, uuid.Nil, enums.ResolutionUnresolved
	}
	return match, match.CatalogItemID, enums.ResolutionFallback
}

func resolveFlat(record models.SubmissionRecord, index CatalogIndex) Activity {
	activity := Activity{
		WaveID:        record.WaveID,
		RepID:         record.RepID,
		RepName:       index.RepNames[record.RepID],
		MarketID:      record.MarketID,
		ItemType:      record.ItemType,
		Quantity:      record.Quantity,
		OccurredAt:    record.CreatedAt,
		SubmissionIDs: []uuid.UUID{record.ID},
	}
	if record.MarketID != nil {
		activity.MarketName = index.MarketNames[*record.MarketID]
	}

	quantity := decimal.NewFromInt(int64(record.Quantity))
	if item, ok := index.FlatItems[record.ItemID]; ok {
		activity.ItemName = item.Name
		activity.Resolution = enums.ResolutionResolved
		if item.ItemValue != nil {
			activity.Value = quantity.Mul(*item.ItemValue).Round(2)
		} else if record.ValuePerUnit != nil {
			activity.Value = quantity.Mul(*record.ValuePerUnit).Round(2)
		}
		return activity
	}

	activity.ItemName = OrphanPlaceholder
	if record.ValuePerUnit != nil {
		activity.Value = quantity.Mul(*record.ValuePerUnit).Round(2)
		activity.Resolution = enums.ResolutionFallback
		return activity
	}
	activity.Resolution = enums.ResolutionUnresolved
	return activity
}

func worseResolution(current, next enums.ResolutionStatus) enums.ResolutionStatus {
	rank := map[enums.ResolutionStatus]int{
		enums.ResolutionResolved:   0,
		enums.ResolutionFallback:   1,
		enums.ResolutionUnresolved: 2,
	}
	if current == "" {
		return next
	}
	if rank[next] > rank[current] {
		return next
	}
	return current
}
