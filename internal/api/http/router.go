package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"toolshare-backend/internal/security"
	"toolshare-backend/internal/service"
)

// Services holds the service dependencies the HTTP layer routes to
type Services struct {
	Availability service.AvailabilityService
	Booking      service.BookingService
	Deposit      service.DepositService
	Rental       service.RentalService
}

// NewRouter wires every endpoint. Everything under /api/v1 requires a valid
// access token; /healthz is public.
func NewRouter(services *Services, tokens security.TokenManager) http.Handler {
	root := mux.NewRouter()
	root.Use(LoggingMiddleware)

	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := root.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	availability := NewAvailabilityHandler(services.Availability)
	api.HandleFunc("/tools/{id}/conflict-check", availability.CheckConflict).Methods(http.MethodPost)
	api.HandleFunc("/tools/{id}/availability", availability.GetAvailability).Methods(http.MethodGet)
	api.HandleFunc("/tools/{id}/recurring-availability", availability.CreateRecurringPattern).Methods(http.MethodPost)

	booking := NewBookingHandler(services.Booking)
	api.HandleFunc("/borrow-requests", booking.CreateRequest).Methods(http.MethodPost)
	api.HandleFunc("/borrow-requests", booking.ListRequests).Methods(http.MethodGet)
	api.HandleFunc("/borrow-requests/{id}/approve", booking.ApproveRequest).Methods(http.MethodPost)
	api.HandleFunc("/borrow-requests/{id}/reject", booking.RejectRequest).Methods(http.MethodPost)
	api.HandleFunc("/borrow-requests/{id}/cancel", booking.CancelRequest).Methods(http.MethodPost)

	deposits := NewDepositHandler(services.Deposit)
	api.HandleFunc("/deposits", deposits.ListDeposits).Methods(http.MethodGet)
	api.HandleFunc("/deposits/{id}", deposits.GetDeposit).Methods(http.MethodGet)
	api.HandleFunc("/deposits/{id}/process-payment", deposits.ProcessPayment).Methods(http.MethodPost)
	api.HandleFunc("/deposits/{id}/process-return", deposits.ProcessReturn).Methods(http.MethodPost)
	api.HandleFunc("/deposits/{id}/process-forfeit", deposits.ProcessForfeit).Methods(http.MethodPost)

	rentals := NewRentalHandler(services.Rental)
	api.HandleFunc("/rentals/{id}", rentals.GetRental).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/complete", rentals.CompleteRental).Methods(http.MethodPost)

	return root
}
