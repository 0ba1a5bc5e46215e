package payment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/homescope/homescope-api/internal/middleware"
	"github.com/homescope/homescope-api/internal/pkg/response"
	"github.com/homescope/homescope-api/internal/pkg/validator"
)

const maxWebhookBody = 64 * 1024

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Packages handles GET /payments/packages
func (h *Handler) Packages(w http.ResponseWriter, r *http.Request) {
	response.OK(w, Packages())
}

// Checkout handles POST /payments/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.service.Checkout(r.Context(), middleware.GetAccountID(r.Context()), req.PackageID)
	if err != nil {
		if errors.Is(err, ErrUnknownPackage) {
			response.BadRequest(w, "Unknown credit package")
			return
		}
		log.Error().Err(err).Msg("Checkout failed")
		response.ServiceUnavailable(w)
		return
	}

	response.OK(w, result)
}

// Webhook handles POST /payments/webhook, called by the gateway
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "Failed to read body")
		return
	}

	signature := r.Header.Get("X-Paylink-Signature")

	if err := h.service.HandleWebhook(r.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			response.Unauthorized(w, "Invalid signature")
		case errors.Is(err, ErrPaymentNotFound):
			response.NotFound(w, "Unknown order")
		default:
			// Non-2xx makes the gateway retry, which is what we want
			// for transient store failures.
			log.Error().Err(err).Msg("Webhook processing failed")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"status": "ok"})
}

// History handles GET /payments
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	payments, err := h.service.History(r.Context(), middleware.GetAccountID(r.Context()), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list payments")
		response.InternalError(w)
		return
	}

	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = PaymentResponseFromEntity(&payments[i])
	}

	response.OK(w, items)
}
