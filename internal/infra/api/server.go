package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"notion-reminder-service/internal/config"
	"notion-reminder-service/internal/domain/ports/repository"
	"notion-reminder-service/internal/usecase"
)

// Server exposes the job-trigger surface plus the small admin API. Job
// routes are called by an external scheduler with a shared secret header;
// admin routes sit behind a JWT session.
type Server struct {
	rainfallUC usecase.RainfallUseCase
	messageUC  usecase.WeatherMessageUseCase
	stations   repository.RainfallStationRepository
	intensity  repository.IntensitySettingsRepository
	auth       *AuthManager
	apiKey     string
	jobs       config.JobsConfig
	log        *zerolog.Logger
}

func NewServer(
	rainfallUC usecase.RainfallUseCase,
	messageUC usecase.WeatherMessageUseCase,
	stations repository.RainfallStationRepository,
	intensity repository.IntensitySettingsRepository,
	auth *AuthManager,
	apiKey string,
	jobs config.JobsConfig,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "APIServer").Logger()
	return &Server{
		rainfallUC: rainfallUC,
		messageUC:  messageUC,
		stations:   stations,
		intensity:  intensity,
		auth:       auth,
		apiKey:     apiKey,
		jobs:       jobs,
		log:        &l,
	}
}

// Router builds the full route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(s.log), RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/jobs", func(r chi.Router) {
		r.Use(SecretToken(s.jobs.SecretHeader, s.jobs.SecretToken, s.log), Timeout(30*time.Second))
		r.Patch("/refresh-stations", s.handleRefreshStations)
		r.Patch("/ingest-readings", s.handleIngestReadings)
		r.Post("/rainfall-summary", s.handleRainfallSummary)
		r.Post("/weather-forecast", s.handleWeatherForecast)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", s.handleSession)
		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAdmin())
			r.Get("/summary", s.handleSummary)
			r.Get("/stations", s.handleStations)
			r.Get("/intensity", s.handleGetIntensity)
			r.Put("/intensity", s.handlePutIntensity)
		})
	})

	return r
}

func (s *Server) checkAPIKey(key string) bool {
	if s.apiKey == "" {
		s.log.Error().Msg("admin API key is not configured")
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) == 1
}
