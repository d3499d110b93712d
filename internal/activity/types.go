package activity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// Activity is one display-ready unit of field work: either a single flat-item
// submission, or the grouped product lines of one composite drop-off.
type Activity struct {
	WaveID        uuid.UUID              `json:"wave_id"`
	RepID         uuid.UUID              `json:"rep_id"`
	RepName       string                 `json:"rep_name"`
	MarketID      *uuid.UUID             `json:"market_id,omitempty"`
	MarketName    string                 `json:"market_name,omitempty"`
	ItemType      enums.ItemType         `json:"item_type"`
	ItemName      string                 `json:"item_name"`
	Quantity      int                    `json:"quantity"`
	Value         decimal.Decimal        `json:"value"`
	Resolution    enums.ResolutionStatus `json:"resolution"`
	OccurredAt    time.Time              `json:"occurred_at"`
	SubmissionIDs []uuid.UUID            `json:"submission_ids"`
}

// CatalogIndex is an in-memory snapshot of the live catalog plus name
// directories, assembled once per resolve pass.
type CatalogIndex struct {
	FlatItems   map[uuid.UUID]models.CatalogItem
	Lines       map[uuid.UUID]models.ProductLine
	Parents     map[uuid.UUID]models.CatalogItem
	WaveLines   []models.ProductLine
	RepNames    map[uuid.UUID]string
	MarketNames map[uuid.UUID]string
}

// NewCatalogIndex builds the index from the items of one wave.
func NewCatalogIndex(items []models.CatalogItem, repNames, marketNames map[uuid.UUID]string) CatalogIndex {
	index := CatalogIndex{
		FlatItems:   make(map[uuid.UUID]models.CatalogItem),
		Lines:       make(map[uuid.UUID]models.ProductLine),
		Parents:     make(map[uuid.UUID]models.CatalogItem),
		RepNames:    repNames,
		MarketNames: marketNames,
	}
	if index.RepNames == nil {
		index.RepNames = map[uuid.UUID]string{}
	}
	if index.MarketNames == nil {
		index.MarketNames = map[uuid.UUID]string{}
	}
	for _, item := range items {
		if item.Kind.IsComposite() {
			index.Parents[item.ID] = item
			for _, line := range item.ProductLines {
				index.Lines[line.ID] = line
				index.WaveLines = append(index.WaveLines, line)
			}
			continue
		}
		index.FlatItems[item.ID] = item
	}
	return index
}
