package listing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/homescope/homescope-api/internal/middleware"
	"github.com/homescope/homescope-api/internal/pkg/response"
	"github.com/homescope/homescope-api/internal/pkg/validator"
)

// Handler handles listing HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /listings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	l, err := h.service.Create(r.Context(), middleware.GetAccountID(r.Context()), &req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create listing")
		response.InternalError(w)
		return
	}

	response.Created(w, ListingResponseFromEntity(l))
}

// Get handles GET /listings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return
	}

	l, photos, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			response.NotFound(w, "Listing not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get listing")
		response.InternalError(w)
		return
	}

	resp := ListingResponseFromEntity(l)
	resp.Photos = make([]PhotoResponse, len(photos))
	for i := range photos {
		resp.Photos[i] = PhotoResponseFromEntity(&photos[i])
	}

	response.OK(w, resp)
}

// List handles GET /listings
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	listings, total, err := h.service.ListActive(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list listings")
		response.InternalError(w)
		return
	}

	items := make([]ListingResponse, len(listings))
	for i := range listings {
		items[i] = ListingResponseFromEntity(&listings[i])
	}

	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasNext: offset+len(items) < total,
	})
}

// ListMine handles GET /listings/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	listings, err := h.service.ListMine(r.Context(), middleware.GetAccountID(r.Context()), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list own listings")
		response.InternalError(w)
		return
	}

	items := make([]ListingResponse, len(listings))
	for i := range listings {
		items[i] = ListingResponseFromEntity(&listings[i])
	}

	response.OK(w, items)
}

// Update handles PUT /listings/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return
	}

	var req UpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	l, err := h.service.Update(r.Context(), middleware.GetAccountID(r.Context()), id, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update listing")
		return
	}

	response.OK(w, ListingResponseFromEntity(l))
}

// Delete handles DELETE /listings/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetAccountID(r.Context()), id); err != nil {
		h.writeError(w, err, "Failed to delete listing")
		return
	}

	response.OK(w, map[string]string{"message": "Listing deleted"})
}

// PresignPhoto handles POST /listings/{id}/photos/presign
func (h *Handler) PresignPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return
	}

	var req PresignRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.service.PresignPhoto(r.Context(), middleware.GetAccountID(r.Context()), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMimeType):
			response.BadRequest(w, "Only JPEG, PNG and WebP images are supported")
		case errors.Is(err, ErrPhotoLimitReached):
			response.BadRequest(w, "Photo limit reached for this listing")
		default:
			h.writeError(w, err, "Failed to presign upload")
		}
		return
	}

	response.OK(w, result)
}

// ConfirmPhoto handles POST /listings/{id}/photos/confirm
func (h *Handler) ConfirmPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return
	}

	var req ConfirmPhotoRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	p, err := h.service.ConfirmPhoto(r.Context(), middleware.GetAccountID(r.Context()), id, &req)
	if err != nil {
		if errors.Is(err, ErrUploadNotVerified) {
			response.BadRequest(w, "Upload not found, did the PUT succeed?")
			return
		}
		h.writeError(w, err, "Failed to confirm photo")
		return
	}

	response.Created(w, PhotoResponseFromEntity(p))
}

// DeletePhoto handles DELETE /listings/{id}/photos/{photoID}
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return
	}

	photoID, err := uuid.Parse(chi.URLParam(r, "photoID"))
	if err != nil {
		response.BadRequest(w, "Invalid photo ID")
		return
	}

	if err := h.service.DeletePhoto(r.Context(), middleware.GetAccountID(r.Context()), id, photoID); err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			response.NotFound(w, "Photo not found")
			return
		}
		h.writeError(w, err, "Failed to delete photo")
		return
	}

	response.OK(w, map[string]string{"message": "Photo deleted"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrListingNotFound):
		response.NotFound(w, "Listing not found")
	case errors.Is(err, ErrNotListingOwner):
		response.Forbidden(w, "You don't own this listing")
	default:
		log.Error().Err(err).Msg(msg)
		response.InternalError(w)
	}
}
