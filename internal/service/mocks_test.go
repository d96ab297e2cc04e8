package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockToolRepo
type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) SetAvailable(ctx context.Context, id int32, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

// MockBorrowRequestRepo
type MockBorrowRequestRepo struct {
	mock.Mock
}

func (m *MockBorrowRequestRepo) Create(ctx context.Context, req *domain.BorrowRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockBorrowRequestRepo) GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRequest), args.Error(1)
}
func (m *MockBorrowRequestRepo) Update(ctx context.Context, req *domain.BorrowRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockBorrowRequestRepo) ListApprovedOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.BorrowRequest, error) {
	args := m.Called(ctx, toolID, startDate, endDate)
	return args.Get(0).([]domain.BorrowRequest), args.Error(1)
}
func (m *MockBorrowRequestRepo) ListByBorrower(ctx context.Context, borrowerID int32, status string) ([]domain.BorrowRequest, error) {
	args := m.Called(ctx, borrowerID, status)
	return args.Get(0).([]domain.BorrowRequest), args.Error(1)
}
func (m *MockBorrowRequestRepo) ListByOwner(ctx context.Context, ownerID int32, status string) ([]domain.BorrowRequest, error) {
	args := m.Called(ctx, ownerID, status)
	return args.Get(0).([]domain.BorrowRequest), args.Error(1)
}
func (m *MockBorrowRequestRepo) ExpirePending(ctx context.Context, now time.Time) ([]int32, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]int32), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.RentalTransaction) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.RentalTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalTransaction), args.Error(1)
}
func (m *MockRentalRepo) UpdateStatus(ctx context.Context, id int32, status domain.RentalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockRentalRepo) ListActiveOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.RentalTransaction, error) {
	args := m.Called(ctx, toolID, startDate, endDate)
	return args.Get(0).([]domain.RentalTransaction), args.Error(1)
}
func (m *MockRentalRepo) ListOverdue(ctx context.Context, today string) ([]domain.RentalTransaction, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]domain.RentalTransaction), args.Error(1)
}

// MockAvailabilityRepo
type MockAvailabilityRepo struct {
	mock.Mock
}

func (m *MockAvailabilityRepo) ListBlocks(ctx context.Context, toolID int32) ([]domain.AvailabilityBlock, error) {
	args := m.Called(ctx, toolID)
	return args.Get(0).([]domain.AvailabilityBlock), args.Error(1)
}
func (m *MockAvailabilityRepo) ListBookedBlocksOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.AvailabilityBlock, error) {
	args := m.Called(ctx, toolID, startDate, endDate)
	return args.Get(0).([]domain.AvailabilityBlock), args.Error(1)
}
func (m *MockAvailabilityRepo) ListUnavailableExceptionsOverlapping(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.FlexibleException, error) {
	args := m.Called(ctx, toolID, startDate, endDate)
	return args.Get(0).([]domain.FlexibleException), args.Error(1)
}
func (m *MockAvailabilityRepo) CreatePattern(ctx context.Context, pattern *domain.RecurringPattern) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}
func (m *MockAvailabilityRepo) GetPatternByID(ctx context.Context, id int32) (*domain.RecurringPattern, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringPattern), args.Error(1)
}
func (m *MockAvailabilityRepo) CreateSlotIfAbsent(ctx context.Context, slot *domain.HourlySlot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}
func (m *MockAvailabilityRepo) ListBookedSlotsInRange(ctx context.Context, toolID int32, startDate, endDate string) ([]domain.HourlySlot, error) {
	args := m.Called(ctx, toolID, startDate, endDate)
	return args.Get(0).([]domain.HourlySlot), args.Error(1)
}
func (m *MockAvailabilityRepo) CountSlotsForPattern(ctx context.Context, toolID int32, startDate, endDate string) (int32, error) {
	args := m.Called(ctx, toolID, startDate, endDate)
	return args.Get(0).(int32), args.Error(1)
}

// MockDepositRepo
type MockDepositRepo struct {
	mock.Mock
}

func (m *MockDepositRepo) Create(ctx context.Context, deposit *domain.Deposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}
func (m *MockDepositRepo) GetByID(ctx context.Context, id int32) (*domain.Deposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}
func (m *MockDepositRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Deposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}
func (m *MockDepositRepo) GetByRentalID(ctx context.Context, rentalID int32) (*domain.Deposit, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}
func (m *MockDepositRepo) UpdateStatus(ctx context.Context, id int32, status domain.DepositStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockDepositRepo) AppendTransaction(ctx context.Context, tx *domain.DepositTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockDepositRepo) ListTransactions(ctx context.Context, depositID int32) ([]domain.DepositTransaction, error) {
	args := m.Called(ctx, depositID)
	return args.Get(0).([]domain.DepositTransaction), args.Error(1)
}
func (m *MockDepositRepo) ListForUser(ctx context.Context, userID int32) ([]domain.Deposit, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Deposit), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBorrowRequestNotification(ctx context.Context, ownerEmail, borrowerName, toolName string) error {
	args := m.Called(ctx, ownerEmail, borrowerName, toolName)
	return args.Error(0)
}
func (m *MockEmailService) SendRequestApprovedNotification(ctx context.Context, borrowerEmail, toolName, ownerResponse string) error {
	args := m.Called(ctx, borrowerEmail, toolName, ownerResponse)
	return args.Error(0)
}
func (m *MockEmailService) SendRequestRejectedNotification(ctx context.Context, borrowerEmail, toolName, ownerResponse string) error {
	args := m.Called(ctx, borrowerEmail, toolName, ownerResponse)
	return args.Error(0)
}
func (m *MockEmailService) SendDepositForfeitedNotification(ctx context.Context, borrowerEmail, toolName string, amountCents int32) error {
	args := m.Called(ctx, borrowerEmail, toolName, amountCents)
	return args.Error(0)
}

// mockStore bundles the repo mocks behind the Store interface. ExecTx runs
// the callback against the same repos, which is what the tx-bound store does
// in production.
type mockStore struct {
	users    *MockUserRepo
	tools    *MockToolRepo
	requests *MockBorrowRequestRepo
	rentals  *MockRentalRepo
	avail    *MockAvailabilityRepo
	deposits *MockDepositRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    new(MockUserRepo),
		tools:    new(MockToolRepo),
		requests: new(MockBorrowRequestRepo),
		rentals:  new(MockRentalRepo),
		avail:    new(MockAvailabilityRepo),
		deposits: new(MockDepositRepo),
	}
}

func (s *mockStore) Users() repository.UserRepository                   { return s.users }
func (s *mockStore) Tools() repository.ToolRepository                   { return s.tools }
func (s *mockStore) BorrowRequests() repository.BorrowRequestRepository { return s.requests }
func (s *mockStore) Rentals() repository.RentalRepository               { return s.rentals }
func (s *mockStore) Availability() repository.AvailabilityRepository    { return s.avail }
func (s *mockStore) Deposits() repository.DepositRepository             { return s.deposits }
func (s *mockStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}
