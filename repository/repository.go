// Package repository holds the per-entity data access used by the services.
// Each repository returns plain model records; aggregates are composed by callers.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrStaleVersion means a compare-and-swap update matched no row.
	ErrStaleVersion = errors.New("record was modified concurrently")
)

// Store bundles the repositories that share one database handle.
type Store struct {
	db           *gorm.DB
	Users        UserRepository
	Products     ProductRepository
	Transactions TransactionRepository
	Orders       OrderRepository
	History      HistoryRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserRepository(db),
		Products:     NewProductRepository(db),
		Transactions: NewTransactionRepository(db),
		Orders:       NewOrderRepository(db),
		History:      NewHistoryRepository(db),
	}
}

// Atomic runs fn against a Store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Atomic(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
