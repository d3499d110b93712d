package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/api/responses"
	"github.com/merchpilot/fieldops-backend/api/validators"
	"github.com/merchpilot/fieldops-backend/internal/waves"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
	pkgerrors "github.com/merchpilot/fieldops-backend/pkg/errors"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
)

type createWaveRequest struct {
	Name           string              `json:"name" validate:"required"`
	StartsOn       string              `json:"starts_on" validate:"required"`
	EndsOn         string              `json:"ends_on" validate:"required"`
	GoalType       string              `json:"goal_type" validate:"required"`
	GoalValue      *decimal.Decimal    `json:"goal_value"`
	GoalPercentage *decimal.Decimal    `json:"goal_percentage"`
	MarketIDs      []uuid.UUID         `json:"market_ids"`
	Items          []createItemRequest `json:"items"`
	SellWindows    []sellWindowRequest `json:"sell_windows"`
}

type createItemRequest struct {
	Kind         string                     `json:"kind" validate:"required"`
	Name         string                     `json:"name" validate:"required"`
	TargetNumber int                        `json:"target_number"`
	ItemValue    *decimal.Decimal           `json:"item_value"`
	Size         *string                    `json:"size"`
	ProductLines []createProductLineRequest `json:"product_lines"`
}

type createProductLineRequest struct {
	Name         string          `json:"name" validate:"required"`
	ValuePerUnit decimal.Decimal `json:"value_per_unit"`
	UnitCount    int             `json:"unit_count"`
	ExternalCode *string         `json:"external_code"`
}

type sellWindowRequest struct {
	ISOWeek int `json:"iso_week" validate:"required"`
	Weekday int `json:"weekday" validate:"required"`
}

// WaveCreate registers a campaign wave with its catalog and market
// assignments.
func WaveCreate(svc waves.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waves service unavailable"))
			return
		}

		var req createWaveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wave, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, wave)
	}
}

// WaveList returns every wave with its derived status.
func WaveList(svc waves.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waves service unavailable"))
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"waves": list})
	}
}

// WaveDetail returns one wave including catalog and sell windows.
func WaveDetail(svc waves.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waves service unavailable"))
			return
		}
		waveID, err := pathUUID(r, "waveId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		wave, err := svc.GetByID(r.Context(), waveID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, wave)
	}
}

// WaveDelete removes a wave, its catalog and its assignments. The submission
// log stays untouched.
func WaveDelete(svc waves.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waves service unavailable"))
			return
		}
		waveID, err := pathUUID(r, "waveId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), waveID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func (req createWaveRequest) toInput() (waves.CreateWaveInput, error) {
	startsOn, err := parseDate(req.StartsOn, "starts_on")
	if err != nil {
		return waves.CreateWaveInput{}, err
	}
	endsOn, err := parseDate(req.EndsOn, "ends_on")
	if err != nil {
		return waves.CreateWaveInput{}, err
	}

	input := waves.CreateWaveInput{
		Name:           req.Name,
		StartsOn:       startsOn,
		EndsOn:         endsOn,
		GoalType:       enums.GoalType(req.GoalType),
		GoalValue:      req.GoalValue,
		GoalPercentage: req.GoalPercentage,
		MarketIDs:      req.MarketIDs,
	}
	for _, item := range req.Items {
		itemInput := waves.CreateItemInput{
			Kind:         enums.ItemType(item.Kind),
			Name:         item.Name,
			TargetNumber: item.TargetNumber,
			ItemValue:    item.ItemValue,
			Size:         item.Size,
		}
		for _, line := range item.ProductLines {
			itemInput.ProductLines = append(itemInput.ProductLines, waves.ProductLineInput{
				Name:         line.Name,
				ValuePerUnit: line.ValuePerUnit,
				UnitCount:    line.UnitCount,
				ExternalCode: line.ExternalCode,
			})
		}
		input.Items = append(input.Items, itemInput)
	}
	for _, window := range req.SellWindows {
		input.SellWindows = append(input.SellWindows, waves.SellWindowInput{
			ISOWeek: window.ISOWeek,
			Weekday: window.Weekday,
		})
	}
	return input, nil
}

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid date (YYYY-MM-DD)").
			WithDetails(map[string]any{"field": field})
	}
	return t, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id in path").
			WithDetails(map[string]any{"param": param})
	}
	return id, nil
}
