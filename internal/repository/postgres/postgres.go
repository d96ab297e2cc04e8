package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, letting every repository
// run against the pool or against an open transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	maxTxRetries   = 3
	txRetryBackoff = 100 * time.Millisecond
)

type Store struct {
	db   *sql.DB // nil when bound to a transaction
	dbtx DBTX

	users          repository.UserRepository
	tools          repository.ToolRepository
	borrowRequests repository.BorrowRequestRepository
	rentals        repository.RentalRepository
	availability   repository.AvailabilityRepository
	deposits       repository.DepositRepository
}

func NewStore(db *sql.DB) *Store {
	s := newStoreWith(db)
	s.db = db
	return s
}

func newStoreWith(dbtx DBTX) *Store {
	return &Store{
		dbtx:           dbtx,
		users:          NewUserRepository(dbtx),
		tools:          NewToolRepository(dbtx),
		borrowRequests: NewBorrowRequestRepository(dbtx),
		rentals:        NewRentalRepository(dbtx),
		availability:   NewAvailabilityRepository(dbtx),
		deposits:       NewDepositRepository(dbtx),
	}
}

func (s *Store) Users() repository.UserRepository                   { return s.users }
func (s *Store) Tools() repository.ToolRepository                   { return s.tools }
func (s *Store) BorrowRequests() repository.BorrowRequestRepository { return s.borrowRequests }
func (s *Store) Rentals() repository.RentalRepository               { return s.rentals }
func (s *Store) Availability() repository.AvailabilityRepository    { return s.availability }
func (s *Store) Deposits() repository.DepositRepository             { return s.deposits }

// ExecTx runs fn against a serializable transaction and retries on
// serialization failures. Calling ExecTx on a store that is already bound to
// a transaction joins the open transaction instead of nesting a new one, so
// composed services share one atomic unit.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	var err error
	for attempt := 0; attempt <= maxTxRetries; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
		if attempt < maxTxRetries {
			wait := time.Duration(attempt+1) * txRetryBackoff
			logger.Warn("Retrying transaction after serialization failure",
				"attempt", attempt+1, "wait", wait.String())
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("transaction failed after %d retries: %w", maxTxRetries, err)
}

func (s *Store) runTx(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newStoreWith(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error("Failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isSerializationFailure reports whether err is a retryable concurrency
// error: serialization_failure (40001) or deadlock_detected (40P01).
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

const dateLayout = "2006-01-02"

// nullTimeOfDay converts a nullable TIME column value to *string (HH:MM).
func nullTimeOfDay(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	v := ns.String
	if len(v) > 5 {
		v = v[:5]
	}
	return &v
}
