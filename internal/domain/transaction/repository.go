package transaction

import "context"

// Repository persists ledger rows. Implementations must return rows from
// List ordered newest-first by timestamp.
type Repository interface {
	Insert(ctx context.Context, tx *NewTransaction) (*Transaction, error)
	List(ctx context.Context) ([]*Transaction, error)
	// UpdateQRStatus records the Bluecode-reported payment state for the
	// row keyed by merchant reference.
	UpdateQRStatus(ctx context.Context, merchantReference, state string) error
}
