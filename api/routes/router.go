package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/merchpilot/fieldops-backend/api/controllers"
	"github.com/merchpilot/fieldops-backend/api/middleware"
	"github.com/merchpilot/fieldops-backend/internal/activity"
	"github.com/merchpilot/fieldops-backend/internal/contributions"
	"github.com/merchpilot/fieldops-backend/internal/dashboard"
	"github.com/merchpilot/fieldops-backend/internal/waves"
	"github.com/merchpilot/fieldops-backend/pkg/config"
	"github.com/merchpilot/fieldops-backend/pkg/db"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
	pkgredis "github.com/merchpilot/fieldops-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP pkgredis.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	wavesService waves.Service,
	contributionsService contributions.Service,
	activityService activity.Service,
	dashboardService dashboard.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.FeatureFlags.Idempotency {
			r.Use(middleware.Idempotency(idempotencyStore, logg))
		}

		r.Route("/waves", func(r chi.Router) {
			r.Get("/", controllers.WaveList(wavesService, logg))
			r.Post("/", controllers.WaveCreate(wavesService, logg))
			r.Get("/{waveId}", controllers.WaveDetail(wavesService, logg))
			r.Delete("/{waveId}", controllers.WaveDelete(wavesService, logg))
			r.Get("/{waveId}/ledger", controllers.ContributionLedger(contributionsService, logg))
			r.Get("/{waveId}/activity", controllers.WaveActivity(activityService, logg))
		})

		r.Post("/contributions", controllers.ContributionCreate(contributionsService, logg))

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/chain-summary", controllers.DashboardChainSummary(dashboardService, logg))
			r.Get("/wave-summary", controllers.DashboardWaveSummaries(dashboardService, logg))
		})
	})

	return r
}
