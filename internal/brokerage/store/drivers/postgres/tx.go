package postgres

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/brokerage/internal/brokerage/store"
	"github.com/jackc/pgx/v5"
)

var errNestedTx = errors.New("postgres: nested transactions are not supported")

type txStore struct {
	tx pgx.Tx

	// ctx is the context the transaction was started with; Commit and
	// Rollback run under it.
	ctx context.Context
}

func (t *txStore) Commit() error { return t.tx.Commit(t.ctx) }

func (t *txStore) Rollback() error {
	err := t.tx.Rollback(t.ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// Close is a no-op; the pool stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
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
