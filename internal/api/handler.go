package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kartoza/heart-risk/internal/config"
	"github.com/kartoza/heart-risk/internal/features"
	"github.com/kartoza/heart-risk/internal/models"
	"github.com/kartoza/heart-risk/internal/predict"
	"go.uber.org/zap"
)

// Client-facing error messages
const (
	MsgModelNotLoaded = "Model not loaded"
	MsgMissingFields  = "Missing fields"
	MsgNotAllowed     = "Method not allowed"
	msgNotAnObject    = "request body must be a JSON object"
	msgTrailingData   = "unexpected data after JSON body"
)

const maxBodyBytes = 1 << 20

// Handler provides HTTP API endpoints
type Handler struct {
	svc    *predict.Service
	cfg    config.Config
	logger *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc *predict.Service, cfg config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:    svc,
		cfg:    cfg,
		logger: logger,
	}
}

// RegisterRoutes sets up the prediction endpoint and the /api routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/predict", h.handlePredict).Methods(http.MethodPost)
	r.HandleFunc("/predict", handleNotAllowed)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/info", h.handleInfo).Methods(http.MethodGet)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

// handleInfo returns server and model information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.InfoResponse{
		Version:      h.cfg.Version,
		ModelLoaded:  h.svc.Ready(),
		ModelKind:    h.svc.Kind(),
		Features:     features.Columns[:],
		Categories:   features.Categories(),
		CacheEnabled: h.svc.CacheEnabled(),
	})
}

// handleNotAllowed answers /predict requests that are not POST
func handleNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	respondError(w, http.StatusMethodNotAllowed, MsgNotAllowed)
}

// handlePredict scores one patient. Every failure is reported as a JSON
// error body: 400 for missing fields, 500 for everything else.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(zap.String("request_id", RequestID(r.Context())))

	if !h.svc.Ready() {
		respondError(w, http.StatusInternalServerError, MsgModelNotLoaded)
		return
	}

	var body any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		logger.Warn("failed to decode prediction request", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		logger.Warn("trailing data after prediction request", zap.Error(err))
		respondError(w, http.StatusInternalServerError, msgTrailingData)
		return
	}

	var payload map[string]any
	switch v := body.(type) {
	case map[string]any:
		payload = v
	case []any:
		// A list carries no named fields
		logger.Info("prediction request is a list")
		respondError(w, http.StatusBadRequest, MsgMissingFields)
		return
	default:
		respondError(w, http.StatusInternalServerError, msgNotAnObject)
		return
	}

	result, err := h.svc.PredictPayload(r.Context(), payload)
	if err != nil {
		var mfe *features.MissingFieldsError
		switch {
		case errors.As(err, &mfe):
			logger.Info("prediction request missing fields", zap.Strings("fields", mfe.Fields))
			respondError(w, http.StatusBadRequest, MsgMissingFields)
		case errors.Is(err, predict.ErrModelNotLoaded):
			respondError(w, http.StatusInternalServerError, MsgModelNotLoaded)
		default:
			logger.Warn("prediction failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Debug("prediction served",
		zap.Float64("probability", result.Probability),
		zap.Int("prediction", result.Prediction),
	)
	respondJSON(w, http.StatusOK, result.Response())
}
