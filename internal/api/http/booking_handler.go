package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/service"
)

// BookingHandler exposes the borrow request lifecycle
type BookingHandler struct {
	booking service.BookingService
}

func NewBookingHandler(booking service.BookingService) *BookingHandler {
	return &BookingHandler{booking: booking}
}

type createRequestBody struct {
	ToolID    int32   `json:"tool_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Message   string  `json:"message"`
}

// CreateRequest handles POST /borrow-requests
func (h *BookingHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
		return
	}
	if body.ToolID <= 0 {
		writeError(w, fmt.Errorf("%w: tool_id is required", domain.ErrValidation))
		return
	}

	window := domain.Window{
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	}
	req, err := h.booking.CreateRequest(r.Context(), userIDFromContext(r.Context()), body.ToolID, window, body.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type ownerResponseBody struct {
	OwnerResponse string `json:"owner_response"`
}

// ApproveRequest handles POST /borrow-requests/{id}/approve
func (h *BookingHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body ownerResponseBody
	_ = json.NewDecoder(r.Body).Decode(&body) // response note is optional

	rental, err := h.booking.ApproveRequest(r.Context(), userIDFromContext(r.Context()), requestID, body.OwnerResponse)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

// RejectRequest handles POST /borrow-requests/{id}/reject
func (h *BookingHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body ownerResponseBody
	_ = json.NewDecoder(r.Body).Decode(&body)

	req, err := h.booking.RejectRequest(r.Context(), userIDFromContext(r.Context()), requestID, body.OwnerResponse)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// CancelRequest handles POST /borrow-requests/{id}/cancel
func (h *BookingHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := h.booking.CancelRequest(r.Context(), userIDFromContext(r.Context()), requestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ListRequests handles GET /borrow-requests?role=borrower|owner&status=...
func (h *BookingHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	status := r.URL.Query().Get("status")

	var (
		reqs []domain.BorrowRequest
		err  error
	)
	switch role := r.URL.Query().Get("role"); role {
	case "", "borrower":
		reqs, err = h.booking.ListBorrowerRequests(r.Context(), userID, status)
	case "owner":
		reqs, err = h.booking.ListOwnerRequests(r.Context(), userID, status)
	default:
		writeError(w, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if reqs == nil {
		reqs = []domain.BorrowRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}
