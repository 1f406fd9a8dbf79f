package api

import (
	"net/http"

	"github.com/okian/cutoffs/internal/domain/reference"
)

// TracksHandler lists the tracks a prediction request must score.
type TracksHandler struct {
	deps Dependencies
}

// NewTracksHandler creates a new tracks handler.
func NewTracksHandler(deps Dependencies) *TracksHandler {
	return &TracksHandler{deps: deps}
}

type tracksResponse struct {
	Year   int               `json:"year"`
	Tracks []reference.Track `json:"tracks"`
}

// HandleTracks handles GET /tracks.
func (h *TracksHandler) HandleTracks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tracksResponse{Year: h.deps.TargetYear(), Tracks: h.deps.Tracks()})
}
