package credit

import (
	"net/http"
	"strconv"

	"github.com/homescope/homescope-api/internal/middleware"
	"github.com/homescope/homescope-api/internal/pkg/response"
)

// Handler handles credit HTTP requests
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetBalance handles GET /credits/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	balance, err := h.service.GetBalance(r.Context(), accountID)
	if err != nil {
		response.ServiceUnavailable(w)
		return
	}

	response.OK(w, &BalanceResponse{Balance: balance})
}

// ListTransactions handles GET /credits/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.service.ListTransactions(r.Context(), accountID, limit, offset)
	if err != nil {
		response.ServiceUnavailable(w)
		return
	}

	items := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		items[i] = TransactionResponseFromEntity(t)
	}

	response.OK(w, items)
}
