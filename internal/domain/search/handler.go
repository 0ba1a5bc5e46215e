package search

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/homescope/homescope-api/internal/domain/credit"
	"github.com/homescope/homescope-api/internal/middleware"
	"github.com/homescope/homescope-api/internal/pkg/propertydata"
	"github.com/homescope/homescope-api/internal/pkg/response"
	"github.com/homescope/homescope-api/internal/pkg/validator"
)

// Handler handles search HTTP requests
type Handler struct {
	service *Service
	gate    credit.Service
}

func NewHandler(service *Service, gate credit.Service) *Handler {
	return &Handler{service: service, gate: gate}
}

// Run handles POST /searches
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	accountID := middleware.GetAccountIDPtr(r.Context())

	result, err := h.service.Run(r.Context(), accountID, req.Query, credit.Tier(req.Tier))
	if err != nil {
		switch {
		case errors.Is(err, credit.ErrAuthenticationRequired):
			response.Unauthorized(w, "Sign in to run smart searches")
		case errors.Is(err, credit.ErrInsufficientCredits):
			response.PaymentRequired(w, "Not enough credits for a smart search")
		case errors.Is(err, credit.ErrInvalidTier):
			response.BadRequest(w, "Unknown search tier")
		case errors.Is(err, propertydata.ErrNotFound):
			response.NotFound(w, "No property found for that query")
		case errors.Is(err, credit.ErrStoreUnavailable), errors.Is(err, ErrProviderFailed):
			response.ServiceUnavailable(w)
		default:
			log.Error().Err(err).Msg("Search failed")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, &RunResponse{
		SearchID:         result.Search.ID,
		Tier:             result.Search.Tier,
		CreditsConsumed:  result.CreditsConsumed,
		RemainingCredits: result.RemainingCredits,
		Report:           result.Report,
	})
}

// Validate handles POST /search/validate, the advisory pre-check the UI
// calls before showing the paid-search confirmation.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	accountID := middleware.GetAccountIDPtr(r.Context())

	result, err := h.gate.Validate(r.Context(), accountID, credit.Tier(req.Tier))
	if err != nil {
		if errors.Is(err, credit.ErrInvalidTier) {
			response.BadRequest(w, "Unknown search tier")
			return
		}
		response.ServiceUnavailable(w)
		return
	}

	response.OK(w, credit.ValidateResponseFromResult(result))
}

// Tiers handles GET /search/tiers
func (h *Handler) Tiers(w http.ResponseWriter, r *http.Request) {
	response.OK(w, credit.Policies())
}

// History handles GET /searches
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	searches, err := h.service.History(r.Context(), accountID, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list search history")
		response.InternalError(w)
		return
	}

	items := make([]HistoryItem, len(searches))
	for i, s := range searches {
		items[i] = HistoryItemFromEntity(s)
	}

	response.OK(w, items)
}
