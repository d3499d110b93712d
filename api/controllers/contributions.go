package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/api/responses"
	"github.com/merchpilot/fieldops-backend/api/validators"
	"github.com/merchpilot/fieldops-backend/internal/contributions"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
	pkgerrors "github.com/merchpilot/fieldops-backend/pkg/errors"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
)

type contributionLineRequest struct {
	ItemType     string           `json:"item_type" validate:"required"`
	ItemID       uuid.UUID        `json:"item_id" validate:"required"`
	Quantity     int              `json:"quantity" validate:"required"`
	ValuePerUnit *decimal.Decimal `json:"value_per_unit"`
}

// contributionRequest accepts either a single line (top-level item fields) or
// a batch (items array), never both.
type contributionRequest struct {
	WaveID   uuid.UUID  `json:"wave_id" validate:"required"`
	RepID    uuid.UUID  `json:"rep_id" validate:"required"`
	MarketID *uuid.UUID `json:"market_id"`

	ItemType     string           `json:"item_type"`
	ItemID       *uuid.UUID       `json:"item_id"`
	Quantity     *int             `json:"quantity"`
	ValuePerUnit *decimal.Decimal `json:"value_per_unit"`

	Items []contributionLineRequest `json:"items"`
}

// ContributionCreate appends submissions and advances the progress ledger.
// Negative quantities retract earlier contributions.
func ContributionCreate(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contributions service unavailable"))
			return
		}

		var req contributionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ContributionLedger returns the cumulative ledger of a wave, optionally
// narrowed to one rep.
func ContributionLedger(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contributions service unavailable"))
			return
		}

		waveID, err := pathUUID(r, "waveId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		repID, err := validators.ParseQueryUUID(r, "rep_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.Ledger(r.Context(), waveID, repID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"entries": entries})
	}
}

func (req contributionRequest) toInput() (contributions.RecordInput, error) {
	input := contributions.RecordInput{
		WaveID:   req.WaveID,
		RepID:    req.RepID,
		MarketID: req.MarketID,
	}

	single := req.ItemID != nil || req.Quantity != nil || req.ItemType != ""
	if single && len(req.Items) > 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "use either top-level item fields or items, not both")
	}

	if single {
		if req.ItemID == nil || req.Quantity == nil || req.ItemType == "" {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "item_type, item_id and quantity are required for a single contribution")
		}
		input.Lines = []contributions.LineInput{{
			ItemType:     enums.ItemType(req.ItemType),
			ItemID:       *req.ItemID,
			Quantity:     *req.Quantity,
			ValuePerUnit: req.ValuePerUnit,
		}}
		return input, nil
	}

	for _, line := range req.Items {
		input.Lines = append(input.Lines, contributions.LineInput{
			ItemType:     enums.ItemType(line.ItemType),
			ItemID:       line.ItemID,
			Quantity:     line.Quantity,
			ValuePerUnit: line.ValuePerUnit,
		})
	}
	return input, nil
}
