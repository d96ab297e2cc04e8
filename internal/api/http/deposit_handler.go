package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/service"
)

// DepositHandler exposes the deposit ledger
type DepositHandler struct {
	deposits service.DepositService
}

func NewDepositHandler(deposits service.DepositService) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

type depositDetailResponse struct {
	Deposit      *domain.Deposit             `json:"deposit"`
	Transactions []domain.DepositTransaction `json:"transactions"`
}

// GetDeposit handles GET /deposits/{id}
func (h *DepositHandler) GetDeposit(w http.ResponseWriter, r *http.Request) {
	depositID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	dep, entries, err := h.deposits.GetDeposit(r.Context(), userIDFromContext(r.Context()), depositID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.DepositTransaction{}
	}
	writeJSON(w, http.StatusOK, depositDetailResponse{Deposit: dep, Transactions: entries})
}

// ListDeposits handles GET /deposits
func (h *DepositHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	deps, err := h.deposits.ListDeposits(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if deps == nil {
		deps = []domain.Deposit{}
	}
	writeJSON(w, http.StatusOK, deps)
}

type processPaymentBody struct {
	Reference string `json:"reference"`
}

// ProcessPayment handles POST /deposits/{id}/process-payment
func (h *DepositHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	depositID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body processPaymentBody
	_ = json.NewDecoder(r.Body).Decode(&body) // reference is optional

	dep, err := h.deposits.ProcessPayment(r.Context(), userIDFromContext(r.Context()), depositID, body.Reference)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dep)
}

// ProcessReturn handles POST /deposits/{id}/process-return
func (h *DepositHandler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	depositID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	dep, err := h.deposits.ProcessRefund(r.Context(), userIDFromContext(r.Context()), depositID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dep)
}

type processForfeitBody struct {
	AmountCents int32  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

// ProcessForfeit handles POST /deposits/{id}/process-forfeit
func (h *DepositHandler) ProcessForfeit(w http.ResponseWriter, r *http.Request) {
	depositID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body processForfeitBody
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
			return
		}
	}

	dep, err := h.deposits.ProcessForfeit(r.Context(), userIDFromContext(r.Context()), depositID, body.AmountCents, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dep)
}
