package models

import "github.com/google/uuid"

// WaveMarketAssignment links a wave to one of the markets it targets.
type WaveMarketAssignment struct {
	WaveID   uuid.UUID `gorm:"column:wave_id;type:uuid;primaryKey"`
	MarketID uuid.UUID `gorm:"column:market_id;type:uuid;primaryKey"`
}

// RepMarketAssignment is the static territory ownership of a market by a rep,
// independent of any wave.
type RepMarketAssignment struct {
	RepID    uuid.UUID `gorm:"column:rep_id;type:uuid;primaryKey"`
	MarketID uuid.UUID `gorm:"column:market_id;type:uuid;primaryKey"`
}
