package controllers

import (
	"net/http"
	"strings"

	"github.com/merchpilot/fieldops-backend/api/responses"
	"github.com/merchpilot/fieldops-backend/api/validators"
	"github.com/merchpilot/fieldops-backend/internal/activity"
	pkgerrors "github.com/merchpilot/fieldops-backend/pkg/errors"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
	"github.com/merchpilot/fieldops-backend/pkg/pagination"
)

// WaveActivity returns the resolved submission feed of a wave, newest first.
func WaveActivity(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		waveID, err := pathUUID(r, "waveId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		activities, next, err := svc.List(r.Context(), waveID, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"activities":  activities,
			"next_cursor": next,
		})
	}
}
