package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer DB stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any tx is started.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users                   { return &usersRepo{db: t.tx} }
func (t *txStore) Referrals() store.Referrals           { return &referralsRepo{db: t.tx} }
func (t *txStore) Applications() store.Applications     { return &applicationsRepo{db: t.tx} }
func (t *txStore) Registrations() store.Registrations   { return &intakeRepo{db: t.tx} }
func (t *txStore) Contacts() store.Contacts             { return &intakeRepo{db: t.tx} }
func (t *txStore) PasswordResets() store.PasswordResets { return &passwordResetsRepo{db: t.tx} }
func (t *txStore) Verifications() store.Verifications   { return &verificationsRepo{db: t.tx} }
