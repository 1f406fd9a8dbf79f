package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/cutoffs/internal/app"
	"github.com/okian/cutoffs/internal/domain/prediction"
	"github.com/okian/cutoffs/pkg/logger"
)

// maxBodyBytes bounds the size of a prediction request.
const maxBodyBytes = 64 << 10

// predictRequest is the body of POST /predict. Popularity holds one score
// per track in the order returned by GET /tracks.
type predictRequest struct {
	CohortSize int       `json:"cohort_size"`
	Popularity []float64 `json:"popularity"`
}

// PredictHandler handles forecast requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	f, err := h.deps.Forecast(r.Context(), req.CohortSize, req.Popularity)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, f)
	case errors.Is(err, prediction.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		logger.Get().Error(r.Context(), "forecast failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", nil)
	}
}
