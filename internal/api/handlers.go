package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/spotten/internal/briefing"
	"github.com/yegors/spotten/internal/config"
	"github.com/yegors/spotten/internal/dropzone"
	"github.com/yegors/spotten/internal/metrics"
	"github.com/yegors/spotten/internal/physics"
	"github.com/yegors/spotten/internal/spot"
	"github.com/yegors/spotten/internal/storage/sqlite"
	"github.com/yegors/spotten/internal/websocket"
	"github.com/yegors/spotten/pkg/logger"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// maxProfileLength caps settings profile names
const maxProfileLength = 64

// SettingsStore persists form settings per profile
type SettingsStore interface {
	Save(ctx context.Context, profile string, form briefing.FormInput) error
	Load(ctx context.Context, profile string) (*sqlite.SettingsRecord, error)
	Delete(ctx context.Context, profile string) error
	List(ctx context.Context) ([]*sqlite.SettingsRecord, error)
}

// Handler contains the API handlers
type Handler struct {
	briefingService *briefing.Service
	settings        SettingsStore
	config          *config.Config
	logger          *logger.Logger
	wsServer        *websocket.Server
	version         string
	startedAt       time.Time
}

// NewHandler creates a new API handler. wsServer may be nil when the preview is disabled.
func NewHandler(briefingService *briefing.Service, settings SettingsStore, config *config.Config, logger *logger.Logger, wsServer *websocket.Server, version string) *Handler {
	return &Handler{
		briefingService: briefingService,
		settings:        settings,
		config:          config,
		logger:          logger.Named("api-handler"),
		wsServer:        wsServer,
		version:         version,
		startedAt:       time.Now(),
	}
}

// GetHealth returns the service status
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	previewClients := 0
	if h.wsServer != nil {
		previewClients = h.wsServer.ClientCount()
	}

	response := map[string]any{
		"status":          "ok",
		"version":         h.version,
		"uptime_seconds":  int(time.Since(h.startedAt).Seconds()),
		"dropzone_count":  h.briefingService.Catalog().Len(),
		"preview_clients": previewClients,
	}

	WriteJSON(w, http.StatusOK, response)
}

// GetConfig returns the public configuration
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	calc := spot.BuildConfig(h.briefingService.Overrides())

	publicConfig := map[string]any{
		"calculator": calc,
		"calculator_display": map[string]any{
			"exit_altitude_ft":           physics.MToFt(calc.ExitAltitude),
			"depl_altitude_ft":           physics.MToFt(calc.DeplAltitude),
			"final_altitude_ft":          physics.MToFt(calc.FinalAltitude),
			"jump_run_tas_kt":            physics.MsToKt(calc.JumpRunTAS),
			"horizontal_canopy_speed_kt": physics.MsToKt(calc.HorizontalCanopySpeed),
			"vertical_canopy_speed_ms":   calc.VerticalCanopySpeed,
			"meters_between_groups":      calc.MetersBetweenGroups,
			"min_seconds_between_groups": calc.MinTimeBetweenGroups,
			"red_light_seconds":          calc.RedLightTime,
			"green_light_seconds":        calc.GreenLightTime,
			"published_distance_step_nm": physics.MToNM(spot.RoundingStep),
			"max_seconds_between_groups": spot.MaxTimeBetweenGroups,
			"max_form_wind_speed_kt":     briefing.MaxWindSpeedKt,
			"max_form_off_track_nm":      briefing.MaxOffTrackNM,
		},
		"preview": map[string]any{
			"enabled": h.wsServer != nil,
		},
		"rate_limit": map[string]any{
			"enabled":             h.config.RateLimit.Enabled,
			"requests_per_second": h.config.RateLimit.RequestsPerSecond,
			"burst":               h.config.RateLimit.Burst,
		},
		"default_form": briefing.DefaultFormInput(),
	}

	WriteJSON(w, http.StatusOK, publicConfig)
}

// GetDropzones returns every dropzone
func (h *Handler) GetDropzones(w http.ResponseWriter, r *http.Request) {
	dropzones := h.briefingService.Catalog().All()

	WriteJSON(w, http.StatusOK, map[string]any{
		"dropzones": dropzones,
		"count":     len(dropzones),
	})
}

// GetDropzone returns one dropzone
func (h *Handler) GetDropzone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dz, err := h.briefingService.Catalog().Get(id)
	if errors.Is(err, dropzone.ErrNotFound) {
		http.Error(w, fmt.Sprintf("Dropzone not found: %s", id), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to get dropzone", logger.Error(err), logger.String("id", id))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	WriteJSON(w, http.StatusOK, dz)
}

// CalculateSpot calculates the spot and briefing from form input
func (h *Handler) CalculateSpot(w http.ResponseWriter, r *http.Request) {
	form := briefing.DefaultFormInput()
	if err := decodeBody(w, r, &form); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := h.briefingService.Compute(form)
	metrics.ObserveCalculation(metrics.SourceAPI, start, err)
	if err != nil {
		h.writeCalculationError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// CalculateMetric runs the calculator directly on metric input
func (h *Handler) CalculateMetric(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.metricCalculator(w, r, metrics.SourceMetric)
	if !ok {
		return
	}

	start := time.Now()
	out := calc.Calculate()
	metrics.ObserveCalculation(metrics.SourceMetric, start, nil)

	WriteJSON(w, http.StatusOK, out)
}

// CalculateTrace runs the calculator on metric input and returns every simulation step
func (h *Handler) CalculateTrace(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.metricCalculator(w, r, metrics.SourceTrace)
	if !ok {
		return
	}

	start := time.Now()
	trace := calc.Trace()
	metrics.ObserveCalculation(metrics.SourceTrace, start, nil)

	WriteJSON(w, http.StatusOK, trace)
}

// metricCalculator decodes a metric input and creates its calculator. The server's calculator
// configuration applies unless the request overrides it. On failure the response has been
// written.
func (h *Handler) metricCalculator(w http.ResponseWriter, r *http.Request, source string) (*spot.Calculator, bool) {
	var input spot.Input
	if err := decodeBody(w, r, &input); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return nil, false
	}
	input.Config = h.briefingService.Overrides().Merge(input.Config)
	if err := input.Validate(); err != nil {
		metrics.ObserveCalculation(source, time.Now(), err)
		h.writeCalculationError(w, err)
		return nil, false
	}

	calc, err := spot.NewCalculator(input)
	if err != nil {
		metrics.ObserveCalculation(source, time.Now(), err)
		h.writeCalculationError(w, err)
		return nil, false
	}
	return calc, true
}

func (h *Handler) writeCalculationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, briefing.ErrInvalidForm), errors.Is(err, spot.ErrNoWinds), errors.Is(err, spot.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, dropzone.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("Spot calculation failed", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// ListSettings returns every saved profile
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	records, err := h.settings.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list settings", logger.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*sqlite.SettingsRecord{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"settings": records,
		"count":    len(records),
	})
}

// GetSettings returns a profile's saved form, or the default form when nothing is saved
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileParam(w, r)
	if !ok {
		return
	}

	record, err := h.settings.Load(r.Context(), profile)
	if errors.Is(err, sqlite.ErrSettingsNotFound) {
		WriteJSON(w, http.StatusOK, sqlite.SettingsRecord{Profile: profile, Form: briefing.DefaultFormInput()})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load settings", logger.Error(err), logger.String("profile", profile))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// PutSettings saves a profile's form
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileParam(w, r)
	if !ok {
		return
	}

	form := briefing.DefaultFormInput()
	if err := decodeBody(w, r, &form); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if err := form.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.settings.Save(r.Context(), profile, form); err != nil {
		h.logger.Error("Failed to save settings", logger.Error(err), logger.String("profile", profile))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Settings saved", logger.String("profile", profile))
	WriteJSON(w, http.StatusOK, sqlite.SettingsRecord{Profile: profile, Form: form, UpdatedAt: time.Now().UTC()})
}

// DeleteSettings removes a profile's form
func (h *Handler) DeleteSettings(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileParam(w, r)
	if !ok {
		return
	}

	err := h.settings.Delete(r.Context(), profile)
	if errors.Is(err, sqlite.ErrSettingsNotFound) {
		http.Error(w, fmt.Sprintf("No settings saved for %s", profile), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete settings", logger.Error(err), logger.String("profile", profile))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func profileParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	profile := strings.TrimSpace(chi.URLParam(r, "profile"))
	if profile == "" || len(profile) > maxProfileLength {
		http.Error(w, "Invalid profile name", http.StatusBadRequest)
		return "", false
	}
	return profile, true
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// WriteJSON writes a JSON response. Values that cannot be encoded give a 500 before any status
// is sent.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
