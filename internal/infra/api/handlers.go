package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"notion-reminder-service/internal/domain"
	"notion-reminder-service/internal/domain/model"
	"notion-reminder-service/internal/infra/logging"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ===== Job triggers =====

func (s *Server) handleRefreshStations(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithJob(r.Context(), "refresh-stations")

	n, err := s.rainfallUC.RefreshStations(ctx)
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("station refresh failed")
		http.Error(w, "station refresh failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"stations": n})
}

func (s *Server) handleIngestReadings(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithJob(r.Context(), "ingest-readings")

	stats, err := s.rainfallUC.IngestReadings(ctx)
	if err != nil {
		l := logging.With(ctx, s.log)
		switch {
		case errors.Is(err, domain.ErrIngestionLockHeld):
			l.Warn().Msg("ingestion already running")
			http.Error(w, "ingestion already running", http.StatusConflict)
		case errors.Is(err, domain.ErrEmptyReadingBatch):
			l.Warn().Msg("provider returned no readings")
			http.Error(w, "no readings available", http.StatusBadGateway)
		default:
			l.Error().Err(err).Msg("ingestion failed")
			http.Error(w, "ingestion failed", http.StatusBadGateway)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"skipped":        stats.Skipped,
		"slots_upserted": stats.SlotsUpserted,
		"slots_pruned":   stats.SlotsPruned,
	})
}

func (s *Server) handleRainfallSummary(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithJob(r.Context(), "rainfall-summary")

	chatID, _ := strconv.ParseInt(r.URL.Query().Get("chat_id"), 10, 64)
	if err := s.messageUC.SendRainfallSummary(ctx, chatID); err != nil {
		l := logging.With(ctx, s.log)
		if errors.Is(err, domain.ErrNoSlotsForHour) {
			l.Warn().Err(err).Msg("no rainfall data for the current hour")
			http.Error(w, "no rainfall data for the current hour", http.StatusNotFound)
			return
		}
		l.Error().Err(err).Msg("rainfall summary failed")
		http.Error(w, "rainfall summary failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleWeatherForecast(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithJob(r.Context(), "weather-forecast")

	chatID, _ := strconv.ParseInt(r.URL.Query().Get("chat_id"), 10, 64)
	if err := s.messageUC.SendForecast(ctx, chatID); err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("forecast message failed")
		http.Error(w, "forecast message failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ===== Admin API =====

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !s.checkAPIKey(req.APIKey) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.rainfallUC.LastHourSummary(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoSlotsForHour) {
			http.Error(w, "no rainfall data for the current hour", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to build summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Hour     int      `json:"hour"`
		None     []string `json:"none"`
		Light    []string `json:"light"`
		Moderate []string `json:"moderate"`
		Heavy    []string `json:"heavy"`
	}{summary.Hour, summary.None, summary.Light, summary.Moderate, summary.Heavy})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.stations.ListAll(r.Context(), nil)
	if err != nil {
		http.Error(w, "Failed to list stations", http.StatusInternalServerError)
		return
	}
	type stationResp struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	out := make([]stationResp, 0, len(stations))
	for _, st := range stations {
		out = append(out, stationResp{st.ID, st.Name, st.Latitude, st.Longitude})
	}
	writeJSON(w, http.StatusOK, out)
}

type intensityResponse struct {
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

func (s *Server) handleGetIntensity(w http.ResponseWriter, r *http.Request) {
	settings, err := s.intensity.Get(r.Context(), nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "intensity settings not configured", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, intensityResponse{settings.LowerBound, settings.UpperBound})
}

func (s *Server) handlePutIntensity(w http.ResponseWriter, r *http.Request) {
	var req intensityResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.LowerBound <= 0 || req.UpperBound <= req.LowerBound {
		http.Error(w, "bounds must satisfy 0 < lower < upper", http.StatusBadRequest)
		return
	}

	settings, err := s.intensity.Get(r.Context(), nil)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Failed to fetch settings", http.StatusInternalServerError)
			return
		}
		settings = &model.IntensitySettings{ID: "default"}
	}
	settings.LowerBound = req.LowerBound
	settings.UpperBound = req.UpperBound
	if err := s.intensity.Save(r.Context(), nil, settings); err != nil {
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, intensityResponse{settings.LowerBound, settings.UpperBound})
}
