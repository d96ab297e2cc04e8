package domain

import "time"

type BorrowRequestStatus string

const (
	BorrowRequestStatusPending   BorrowRequestStatus = "PENDING"
	BorrowRequestStatusApproved  BorrowRequestStatus = "APPROVED"
	BorrowRequestStatusRejected  BorrowRequestStatus = "REJECTED"
	BorrowRequestStatusCancelled BorrowRequestStatus = "CANCELLED"
	BorrowRequestStatusExpired   BorrowRequestStatus = "EXPIRED"
)

type BorrowRequest struct {
	ID            int32               `json:"id"`
	ToolID        int32               `json:"tool_id"`
	BorrowerID    int32               `json:"borrower_id"`
	OwnerID       int32               `json:"owner_id"`
	StartDate     string              `json:"start_date"`
	EndDate       string              `json:"end_date"`
	StartTime     *string             `json:"start_time,omitempty"`
	EndTime       *string             `json:"end_time,omitempty"`
	Message       string              `json:"message"`
	Status        BorrowRequestStatus `json:"status"`
	OwnerResponse string              `json:"owner_response"`
	ExpiresAt     time.Time           `json:"expires_at"`
	CreatedOn     string              `json:"created_on"`
	UpdatedOn     string              `json:"updated_on"`
}

// IsExpired reports whether the request's soft timeout has lapsed at now.
func (r *BorrowRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Window returns the requested booking window.
func (r *BorrowRequest) Window() Window {
	return Window{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}
