package pin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/homescope/homescope-api/internal/middleware"
	"github.com/homescope/homescope-api/internal/pkg/response"
	"github.com/homescope/homescope-api/internal/pkg/validator"
)

// Handler handles pin HTTP requests
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /pins
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

	now := time.Now()
	p := &Pin{
		ID:        uuid.New(),
		AccountID: middleware.GetAccountID(r.Context()),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Label:     req.Label,
		Note:      req.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		log.Error().Err(err).Msg("Failed to create pin")
		response.InternalError(w)
		return
	}

	response.Created(w, PinResponseFromEntity(p))
}

// Get handles GET /pins/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid pin ID")
		return
	}

	p, err := h.repo.GetByID(r.Context(), middleware.GetAccountID(r.Context()), id)
	if err != nil {
		if errors.Is(err, ErrPinNotFound) {
			response.NotFound(w, "Pin not found")
			return
		}
		log.Error().Err(err).Msg("Failed to get pin")
		response.InternalError(w)
		return
	}

	response.OK(w, PinResponseFromEntity(p))
}

// List handles GET /pins
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	pins, err := h.repo.ListByAccount(r.Context(), middleware.GetAccountID(r.Context()), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list pins")
		response.InternalError(w)
		return
	}

	items := make([]PinResponse, len(pins))
	for i := range pins {
		items[i] = PinResponseFromEntity(&pins[i])
	}

	response.OK(w, items)
}

// Update handles PUT /pins/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid pin ID")
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

	accountID := middleware.GetAccountID(r.Context())

	p := &Pin{
		ID:        id,
		AccountID: accountID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Label:     req.Label,
		Note:      req.Note,
	}

	if err := h.repo.Update(r.Context(), p); err != nil {
		if errors.Is(err, ErrPinNotFound) {
			response.NotFound(w, "Pin not found")
			return
		}
		log.Error().Err(err).Msg("Failed to update pin")
		response.InternalError(w)
		return
	}

	updated, err := h.repo.GetByID(r.Context(), accountID, id)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reload pin")
		response.InternalError(w)
		return
	}

	response.OK(w, PinResponseFromEntity(updated))
}

// Delete handles DELETE /pins/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid pin ID")
		return
	}

	if err := h.repo.Delete(r.Context(), middleware.GetAccountID(r.Context()), id); err != nil {
		if errors.Is(err, ErrPinNotFound) {
			response.NotFound(w, "Pin not found")
			return
		}
		log.Error().Err(err).Msg("Failed to delete pin")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"message": "Pin deleted"})
}
