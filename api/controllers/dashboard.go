package controllers

import (
	"net/http"
	"strings"

	"github.com/merchpilot/fieldops-backend/api/responses"
	"github.com/merchpilot/fieldops-backend/api/validators"
	"github.com/merchpilot/fieldops-backend/internal/dashboard"
	"github.com/merchpilot/fieldops-backend/internal/goals"
	"github.com/merchpilot/fieldops-backend/internal/markets"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
	pkgerrors "github.com/merchpilot/fieldops-backend/pkg/errors"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
)

// DashboardChainSummary aggregates progress across one retail chain grouping.
func DashboardChainSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		group, ok := markets.ParseGrouping(r.URL.Query().Get("chain"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown chain grouping").
				WithDetails(map[string]any{"field": "chain"}))
			return
		}
		filters, err := parseDashboardFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.ChainSummary(r.Context(), dashboard.ChainQuery{Group: group, Filters: filters})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// DashboardWaveSummaries returns per-wave dashboard cards, either for one
// wave or for the active and recently finished set.
func DashboardWaveSummaries(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		waveID, err := validators.ParseQueryUUID(r, "wave_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := parseDashboardFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summaries, err := svc.WaveSummaries(r.Context(), dashboard.WaveQuery{WaveID: waveID, Filters: filters})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"waves": summaries})
	}
}

func parseDashboardFilters(r *http.Request) (dashboard.Filters, error) {
	filters := dashboard.Filters{Reps: goals.AllReps()}

	repIDs, err := validators.ParseQueryUUIDList(r, "rep_ids")
	if err != nil {
		return filters, err
	}
	if repIDs != nil {
		filters.Reps = goals.Reps(repIDs...)
	}

	if filters.From, err = validators.ParseQueryDate(r, "from"); err != nil {
		return filters, err
	}
	if filters.To, err = validators.ParseQueryDate(r, "to"); err != nil {
		return filters, err
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("item_types")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			kind := enums.ItemType(strings.TrimSpace(part))
			if !kind.IsValid() {
				return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown item type").
					WithDetails(map[string]any{"field": "item_types", "value": part})
			}
			filters.ItemTypes = append(filters.ItemTypes, kind)
		}
	}
	return filters, nil
}
