package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/servilocal/listing-service/internal/adapter/http/middleware"
	"github.com/servilocal/listing-service/internal/listing/domain"
	"github.com/servilocal/listing-service/internal/listing/usecase"
)

// AdminHandler serves the moderation surface. Every route behind it already
// passed the capability check in the router, but the use cases verify the
// principal again so the rules hold no matter how they are reached.
type AdminHandler struct {
	listings   *usecase.ListingUseCase
	promotions *usecase.PromotionUseCase
	logger     *zap.Logger
}

func NewAdminHandler(listings *usecase.ListingUseCase, promotions *usecase.PromotionUseCase, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{listings: listings, promotions: promotions, logger: logger}
}

type moderationPayload struct {
	Status   string `json:"status"`
	Reviewed *bool  `json:"reviewed"`
}

func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var payload moderationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	listing, err := h.listings.SetStatus(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.PrincipalFromContext(r.Context()),
		domain.ListingStatus(payload.Status),
		payload.Reviewed,
	)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

type adminPromotePayload struct {
	Enabled bool `json:"enabled"`
	Portal  bool `json:"portal"`
}

// SetPromotion flips one of the two promotion flags without an entitlement
// check. The portal field selects which flag the toggle applies to.
func (h *AdminHandler) SetPromotion(w http.ResponseWriter, r *http.Request) {
	var payload adminPromotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	id := chi.URLParam(r, "id")
	principal := middleware.PrincipalFromContext(r.Context())

	var (
		listing *domain.Listing
		err     error
	)
	if payload.Portal {
		listing, err = h.promotions.SetPromotedInPortalAdmin(r.Context(), id, principal, payload.Enabled)
	} else {
		listing, err = h.promotions.SetPromotedAdmin(r.Context(), id, principal, payload.Enabled)
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}
