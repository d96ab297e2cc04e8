package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/service"
)

// AvailabilityHandler exposes the conflict check and availability calendar
type AvailabilityHandler struct {
	availability service.AvailabilityService
}

func NewAvailabilityHandler(availability service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// CheckConflict handles POST /tools/{id}/conflict-check
func (h *AvailabilityHandler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var window domain.Window
	if err := json.NewDecoder(r.Body).Decode(&window); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
		return
	}

	report, err := h.availability.CheckConflict(r.Context(), toolID, window)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetAvailability handles GET /tools/{id}/availability
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	availability, err := h.availability.GetToolAvailability(r.Context(), toolID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

type createPatternRequest struct {
	PatternType domain.PatternType `json:"pattern_type"`
	StartDate   string             `json:"start_date"`
	EndDate     *string            `json:"end_date,omitempty"`
	DaysOfWeek  []int              `json:"days_of_week"`
	StartTime   string             `json:"start_time"`
	EndTime     string             `json:"end_time"`
}

type createPatternResponse struct {
	PatternID int32 `json:"pattern_id"`
	SlotCount int32 `json:"slot_count"`
}

// CreateRecurringPattern handles POST /tools/{id}/recurring-availability
func (h *AvailabilityHandler) CreateRecurringPattern(w http.ResponseWriter, r *http.Request) {
	toolID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req createPatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", domain.ErrValidation))
		return
	}

	pattern := &domain.RecurringPattern{
		ToolID:      toolID,
		PatternType: req.PatternType,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		DaysOfWeek:  req.DaysOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	slots, err := h.availability.CreateRecurringPattern(r.Context(), userIDFromContext(r.Context()), pattern)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createPatternResponse{PatternID: pattern.ID, SlotCount: slots})
}

// pathID parses the named route variable as an int32 identifier
func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrValidation, name, raw)
	}
	return int32(id), nil
}
