package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/servilocal/listing-service/internal/locality"
)

type LocalityHandler struct {
	directory *locality.Directory
	logger    *zap.Logger
}

func NewLocalityHandler(directory *locality.Directory, logger *zap.Logger) *LocalityHandler {
	return &LocalityHandler{directory: directory, logger: logger}
}

type localityResponse struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Area      string  `json:"area"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Search answers prefix autocomplete over the locality directory. An empty
// query yields an empty result set, not an error.
func (h *LocalityHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	places := h.directory.Search(q.Get("q"), atoiOr(q.Get("limit"), 0))

	out := make([]localityResponse, 0, len(places))
	for _, p := range places {
		out = append(out, localityResponse{
			Name:      p.Name,
			Region:    p.Region,
			Area:      p.Area,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}
