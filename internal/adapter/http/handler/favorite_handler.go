package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/servilocal/listing-service/internal/adapter/http/middleware"
	"github.com/servilocal/listing-service/internal/listing/domain"
	"github.com/servilocal/listing-service/internal/listing/usecase"
)

type FavoriteHandler struct {
	favorites *usecase.FavoriteUseCase
	logger    *zap.Logger
}

func NewFavoriteHandler(favorites *usecase.FavoriteUseCase, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

type favoriteResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toFavoriteResponse(f *domain.Favorite) favoriteResponse {
	return favoriteResponse{ID: f.ID, ListingID: f.ListingID, CreatedAt: f.CreatedAt}
}

type addFavoritePayload struct {
	ListingID string `json:"listing_id"`
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	var payload addFavoritePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ListingID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "listing_id is required"})
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())

	favorite, err := h.favorites.Add(r.Context(), principal, payload.ListingID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFavoriteResponse(favorite))
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	if err := h.favorites.Remove(r.Context(), principal, chi.URLParam(r, "listingID")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	favorites, err := h.favorites.List(r.Context(), principal)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]favoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, toFavoriteResponse(f))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": out})
}
