package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/davidbz/howl/internal/domain"
)

// Store is the gorm-backed domain.LedgerStore.
type Store struct {
	db *gorm.DB
}

// NewStore creates a ledger store over db (DI constructor).
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn in a database transaction, committing if fn returns nil.
// Errors returned by fn pass through unchanged; begin and commit failures
// are wrapped with domain.ErrPersistence.
func (s *Store) InTx(ctx context.Context, fn func(repo domain.LedgerRepository) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(newRepository(tx))
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return persistenceErr("transaction", err)
}

// Repository returns a repository that runs each call on its own connection.
func (s *Store) Repository() domain.LedgerRepository {
	return newRepository(s.db)
}
