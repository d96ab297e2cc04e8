package service

import (
	"context"
	"fmt"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
	"toolshare-backend/internal/utils"
)

type bookingService struct {
	store              repository.Store
	emailSvc           EmailService
	depositAmountCents int32
	requestTTL         time.Duration
	now                func() time.Time
}

func NewBookingService(store repository.Store, emailSvc EmailService, depositAmountCents int32, requestTTL time.Duration) BookingService {
	return &bookingService{
		store:              store,
		emailSvc:           emailSvc,
		depositAmountCents: depositAmountCents,
		requestTTL:         requestTTL,
		now:                time.Now,
	}
}

func (s *bookingService) CreateRequest(ctx context.Context, borrowerID, toolID int32, window domain.Window, message string) (*domain.BorrowRequest, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}
	// yyyy-mm-dd compares correctly as a string.
	if window.StartDate < s.now().Format(dateLayout) {
		return nil, fmt.Errorf("%w: start date %s is in the past", domain.ErrValidation, window.StartDate)
	}

	tool, err := s.store.Tools().GetByID(ctx, toolID)
	if err != nil {
		return nil, err
	}
	if tool.OwnerID == borrowerID {
		return nil, fmt.Errorf("%w: cannot borrow your own tool", domain.ErrConflict)
	}
	if !tool.Available {
		return nil, fmt.Errorf("%w: tool %d is currently unavailable", domain.ErrConflict, toolID)
	}

	req := &domain.BorrowRequest{
		ToolID:     toolID,
		BorrowerID: borrowerID,
		OwnerID:    tool.OwnerID,
		StartDate:  window.StartDate,
		EndDate:    window.EndDate,
		StartTime:  window.StartTime,
		EndTime:    window.EndTime,
		Message:    message,
		Status:     domain.BorrowRequestStatusPending,
		ExpiresAt:  s.now().Add(s.requestTTL),
	}
	if err := s.store.BorrowRequests().Create(ctx, req); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "borrow request created",
		"request_id", req.ID, "tool_id", toolID, "borrower_id", borrowerID,
		"start_date", req.StartDate, "end_date", req.EndDate)

	s.notifyOwner(ctx, req, tool)
	return req, nil
}

func (s *bookingService) ApproveRequest(ctx context.Context, ownerID, requestID int32, ownerResponse string) (*domain.RentalTransaction, error) {
	var (
		rental  *domain.RentalTransaction
		lapsed  bool
		request *domain.BorrowRequest
		tool    *domain.Tool
	)
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		req, err := tx.BorrowRequests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.OwnerID != ownerID {
			return fmt.Errorf("%w: user %d does not own the tool on request %d", domain.ErrForbidden, ownerID, requestID)
		}
		if req.Status != domain.BorrowRequestStatusPending {
			return fmt.Errorf("%w: request %d is %s, only pending requests can be approved", domain.ErrInvalidState, requestID, req.Status)
		}
		if req.IsExpired(s.now()) {
			// Persist the lapse; the commit must survive the failed approval.
			req.Status = domain.BorrowRequestStatusExpired
			lapsed = true
			return tx.BorrowRequests().Update(ctx, req)
		}

		// The tool row lock serializes concurrent approvals for the same tool,
		// so the conflict check below decides on a stable view.
		t, err := tx.Tools().GetByIDForUpdate(ctx, req.ToolID)
		if err != nil {
			return err
		}
		if !t.Available {
			return fmt.Errorf("%w: tool %d is currently unavailable", domain.ErrConflict, req.ToolID)
		}

		conflicts, err := collectConflicts(ctx, tx, req.ToolID, req.Window())
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return fmt.Errorf("%w: tool %d is booked during %s to %s", domain.ErrConflict, req.ToolID, req.StartDate, req.EndDate)
		}

		req.Status = domain.BorrowRequestStatusApproved
		req.OwnerResponse = ownerResponse
		if err := tx.BorrowRequests().Update(ctx, req); err != nil {
			return err
		}

		hours, err := utils.RentalDurationHours(req.StartDate, req.EndDate)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		price, err := utils.CalculateRentalPrice(t, hours)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}

		r := &domain.RentalTransaction{
			ToolID:          req.ToolID,
			BorrowerID:      req.BorrowerID,
			OwnerID:         req.OwnerID,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			TotalPriceCents: price,
			PaymentStatus:   domain.PaymentStatusPending,
			Status:          domain.RentalStatusActive,
		}
		if err := tx.Rentals().Create(ctx, r); err != nil {
			return err
		}

		if _, err := openDeposit(ctx, tx, r.ID, s.depositAmountCents); err != nil {
			return err
		}
		if err := tx.Tools().SetAvailable(ctx, req.ToolID, false); err != nil {
			return err
		}

		rental, request, tool = r, req, t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if lapsed {
		return nil, fmt.Errorf("%w: request %d lapsed before approval", domain.ErrExpired, requestID)
	}

	logger.InfoContext(ctx, "borrow request approved",
		"request_id", requestID, "rental_id", rental.ID,
		"total_price_cents", rental.TotalPriceCents)
	s.notifyBorrower(ctx, request, tool, true)
	return rental, nil
}

func (s *bookingService) RejectRequest(ctx context.Context, ownerID, requestID int32, ownerResponse string) (*domain.BorrowRequest, error) {
	var (
		request *domain.BorrowRequest
		tool    *domain.Tool
	)
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		req, err := tx.BorrowRequests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.OwnerID != ownerID {
			return fmt.Errorf("%w: user %d does not own the tool on request %d", domain.ErrForbidden, ownerID, requestID)
		}
		if req.Status != domain.BorrowRequestStatusPending {
			return fmt.Errorf("%w: request %d is %s, only pending requests can be rejected", domain.ErrInvalidState, requestID, req.Status)
		}
		req.Status = domain.BorrowRequestStatusRejected
		req.OwnerResponse = ownerResponse
		if err := tx.BorrowRequests().Update(ctx, req); err != nil {
			return err
		}
		t, err := tx.Tools().GetByID(ctx, req.ToolID)
		if err != nil {
			return err
		}
		request, tool = req, t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "borrow request rejected", "request_id", requestID)
	s.notifyBorrower(ctx, request, tool, false)
	return request, nil
}

func (s *bookingService) CancelRequest(ctx context.Context, borrowerID, requestID int32) (*domain.BorrowRequest, error) {
	var request *domain.BorrowRequest
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		req, err := tx.BorrowRequests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.BorrowerID != borrowerID {
			return fmt.Errorf("%w: user %d did not create request %d", domain.ErrForbidden, borrowerID, requestID)
		}
		if req.Status != domain.BorrowRequestStatusPending {
			return fmt.Errorf("%w: request %d is %s, only pending requests can be cancelled", domain.ErrInvalidState, requestID, req.Status)
		}
		req.Status = domain.BorrowRequestStatusCancelled
		if err := tx.BorrowRequests().Update(ctx, req); err != nil {
			return err
		}
		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "borrow request cancelled", "request_id", requestID)
	return request, nil
}

func (s *bookingService) ListBorrowerRequests(ctx context.Context, borrowerID int32, status string) ([]domain.BorrowRequest, error) {
	if err := validateRequestStatusFilter(status); err != nil {
		return nil, err
	}
	return s.store.BorrowRequests().ListByBorrower(ctx, borrowerID, status)
}

func (s *bookingService) ListOwnerRequests(ctx context.Context, ownerID int32, status string) ([]domain.BorrowRequest, error) {
	if err := validateRequestStatusFilter(status); err != nil {
		return nil, err
	}
	return s.store.BorrowRequests().ListByOwner(ctx, ownerID, status)
}

func (s *bookingService) ExpirePendingRequests(ctx context.Context, now time.Time) ([]int32, error) {
	ids, err := s.store.BorrowRequests().ExpirePending(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		logger.InfoContext(ctx, "borrow requests expired", "count", len(ids), "request_ids", ids)
	}
	return ids, nil
}

func validateRequestStatusFilter(status string) error {
	switch domain.BorrowRequestStatus(status) {
	case "", domain.BorrowRequestStatusPending, domain.BorrowRequestStatusApproved,
		domain.BorrowRequestStatusRejected, domain.BorrowRequestStatusCancelled,
		domain.BorrowRequestStatusExpired:
		return nil
	}
	return fmt.Errorf("%w: unknown status filter %q", domain.ErrValidation, status)
}

// notifyOwner emails the tool owner about a new request. Email failures are
// logged and swallowed; the booking operation already committed.
func (s *bookingService) notifyOwner(ctx context.Context, req *domain.BorrowRequest, tool *domain.Tool) {
	owner, err := s.store.Users().GetByID(ctx, req.OwnerID)
	if err != nil {
		logger.WarnContext(ctx, "skipping owner notification", "request_id", req.ID, "error", err)
		return
	}
	borrower, err := s.store.Users().GetByID(ctx, req.BorrowerID)
	if err != nil {
		logger.WarnContext(ctx, "skipping owner notification", "request_id", req.ID, "error", err)
		return
	}
	if err := s.emailSvc.SendBorrowRequestNotification(ctx, owner.Email, borrower.Name, tool.Name); err != nil {
		logger.WarnContext(ctx, "owner notification failed", "request_id", req.ID, "error", err)
	}
}

func (s *bookingService) notifyBorrower(ctx context.Context, req *domain.BorrowRequest, tool *domain.Tool, approved bool) {
	borrower, err := s.store.Users().GetByID(ctx, req.BorrowerID)
	if err != nil {
		logger.WarnContext(ctx, "skipping borrower notification", "request_id", req.ID, "error", err)
		return
	}
	if approved {
		err = s.emailSvc.SendRequestApprovedNotification(ctx, borrower.Email, tool.Name, req.OwnerResponse)
	} else {
		err = s.emailSvc.SendRequestRejectedNotification(ctx, borrower.Email, tool.Name, req.OwnerResponse)
	}
	if err != nil {
		logger.WarnContext(ctx, "borrower notification failed", "request_id", req.ID, "error", err)
	}
}
