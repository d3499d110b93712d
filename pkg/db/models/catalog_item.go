package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// CatalogItem is a trackable unit inside one wave. Display and Kartonware
// items are flat and price through ItemValue; Palette and Schütte items are
// composite and price through their product lines.
type CatalogItem struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WaveID       uuid.UUID        `gorm:"column:wave_id;type:uuid;not null;index"`
	Kind         enums.ItemType   `gorm:"column:kind;not null"`
	Name         string           `gorm:"column:name;not null"`
	TargetNumber int              `gorm:"column:target_number;not null;default:0"`
	ItemValue    *decimal.Decimal `gorm:"column:item_value;type:numeric(12,2)"`
	Size         *string          `gorm:"column:size"`
	ProductLines []ProductLine    `gorm:"foreignKey:CatalogItemID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductLine is one product row nested under a composite catalog item.
type ProductLine struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CatalogItemID uuid.UUID       `gorm:"column:catalog_item_id;type:uuid;not null;index"`
	Name          string          `gorm:"column:name;not null"`
	ValuePerUnit  decimal.Decimal `gorm:"column:value_per_unit;type:numeric(12,2);not null"`
	UnitCount     int             `gorm:"column:unit_count;not null;default:1"`
	ExternalCode  *string         `gorm:"column:external_code"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
