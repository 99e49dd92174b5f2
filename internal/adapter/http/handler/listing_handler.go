package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/servilocal/listing-service/internal/adapter/http/middleware"
	"github.com/servilocal/listing-service/internal/listing/domain"
	"github.com/servilocal/listing-service/internal/listing/usecase"
)

const maxPhotoUploadBytes = 10 << 20

type ListingHandler struct {
	listings   *usecase.ListingUseCase
	search     *usecase.SearchUseCase
	promotions *usecase.PromotionUseCase
	photos     *usecase.PhotoUseCase
	logger     *zap.Logger
}

func NewListingHandler(
	listings *usecase.ListingUseCase,
	search *usecase.SearchUseCase,
	promotions *usecase.PromotionUseCase,
	photos *usecase.PhotoUseCase,
	logger *zap.Logger,
) *ListingHandler {
	return &ListingHandler{
		listings:   listings,
		search:     search,
		promotions: promotions,
		photos:     photos,
		logger:     logger,
	}
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	filter, err := parseSearchFilter(r, principal)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.search.Search(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filter.Normalize()
	writeJSON(w, http.StatusOK, searchResponse{
		Data:       toListingResponses(result.Listings),
		Page:       filter.Page,
		TotalPages: result.TotalPages,
		TotalItems: result.TotalItems,
	})
}

func (h *ListingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	limit := atoiOr(r.URL.Query().Get("limit"), 0)

	listings, err := h.search.Portal(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, portalResponse{Data: toListingResponses(listings)})
}

func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponseFor(listing, middleware.PrincipalFromContext(r.Context())))
}

type listingPayload struct {
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Headline    string       `json:"headline"`
	Description string       `json:"description"`
	Contact     string       `json:"contact"`
	Phone       string       `json:"phone"`
	Locality    string       `json:"locality"`
	Region      string       `json:"region"`
	Area        string       `json:"area"`
	VideoURL    string       `json:"video_url"`
	Location    *geoPointDTO `json:"location"`
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload listingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	input := usecase.CreateListingInput{
		Name:        payload.Name,
		Category:    payload.Category,
		Headline:    payload.Headline,
		Description: payload.Description,
		Contact:     payload.Contact,
		Phone:       payload.Phone,
		Locality:    payload.Locality,
		Region:      payload.Region,
		Area:        payload.Area,
		VideoURL:    payload.VideoURL,
	}
	if payload.Location != nil {
		input.Location = &domain.GeoPoint{Latitude: payload.Location.Latitude, Longitude: payload.Location.Longitude}
	}

	listing, err := h.listings.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toListingResponse(listing))
}

type updateListingPayload struct {
	Name        *string      `json:"name"`
	Category    *string      `json:"category"`
	Headline    *string      `json:"headline"`
	Description *string      `json:"description"`
	Contact     *string      `json:"contact"`
	Phone       *string      `json:"phone"`
	Locality    *string      `json:"locality"`
	Region      *string      `json:"region"`
	Area        *string      `json:"area"`
	VideoURL    *string      `json:"video_url"`
	Location    *geoPointDTO `json:"location"`
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload updateListingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	input := usecase.UpdateListingInput{
		Name:        payload.Name,
		Category:    payload.Category,
		Headline:    payload.Headline,
		Description: payload.Description,
		Contact:     payload.Contact,
		Phone:       payload.Phone,
		Locality:    payload.Locality,
		Region:      payload.Region,
		Area:        payload.Area,
		VideoURL:    payload.VideoURL,
	}
	if payload.Location != nil {
		input.Location = &domain.GeoPoint{Latitude: payload.Location.Latitude, Longitude: payload.Location.Longitude}
	}

	listing, err := h.listings.Update(r.Context(), chi.URLParam(r, "id"), middleware.PrincipalFromContext(r.Context()), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.listings.Delete(r.Context(), chi.URLParam(r, "id"), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart payload"})
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "photo file is required"})
		return
	}
	defer file.Close()

	data, err := readBoundedPhoto(file)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	listing, err := h.photos.AddPhoto(r.Context(), chi.URLParam(r, "id"), middleware.PrincipalFromContext(r.Context()), header.Filename, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

// readBoundedPhoto reads at most the upload limit plus one byte so an
// oversized file is rejected outright rather than truncated into a corrupt
// image.
func readBoundedPhoto(file io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxPhotoUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read photo", domain.ErrInvalidInput)
	}
	if len(data) > maxPhotoUploadBytes {
		return nil, fmt.Errorf("%w: photo exceeds the %d byte limit", domain.ErrInvalidInput, maxPhotoUploadBytes)
	}
	return data, nil
}

type promotePayload struct {
	Enabled bool `json:"enabled"`
}

// Promote toggles self-service promotion for the caller's own listing.
// Enabling requires a live entitlement; disabling never does.
func (h *ListingHandler) Promote(w http.ResponseWriter, r *http.Request) {
	var payload promotePayload
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
	if payload.Enabled {
		listing, err = h.promotions.Activate(r.Context(), id, principal)
	} else {
		listing, err = h.promotions.Deactivate(r.Context(), id, principal)
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}
