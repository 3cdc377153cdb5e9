package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tundeakins/billspay/internal/domain/transaction"
)

// TransactionRepository implements transaction.Repository using PostgreSQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Insert writes a new ledger row and returns it with the assigned id.
func (r *TransactionRepository) Insert(ctx context.Context, tx *transaction.NewTransaction) (*transaction.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO transactions
		 (merchant_reference, customer_id, basket_id, amount, qr_status, confirm_status, timestamp, user_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id, merchant_reference, customer_id, basket_id, amount, qr_status, confirm_status, timestamp, user_id`,
		tx.MerchantReference, tx.CustomerID, tx.BasketID, tx.Amount,
		tx.QRStatus, tx.ConfirmStatus, tx.Timestamp, tx.UserID,
	)
	return scanTransaction(row)
}

// List returns all ledger rows, newest first.
func (r *TransactionRepository) List(ctx context.Context) ([]*transaction.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, merchant_reference, customer_id, basket_id, amount, qr_status, confirm_status, timestamp, user_id
		 FROM transactions
		 ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateQRStatus records the Bluecode-reported state for a merchant
// reference. A missing row is not an error; callbacks can arrive before the
// ledger row is written.
func (r *TransactionRepository) UpdateQRStatus(ctx context.Context, merchantReference, state string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE transactions SET qr_status = $1 WHERE merchant_reference = $2`,
		state, merchantReference,
	)
	if err != nil {
		return fmt.Errorf("update qr_status: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := row.Scan(
		&t.ID, &t.MerchantReference, &t.CustomerID, &t.BasketID,
		&t.Amount, &t.QRStatus, &t.ConfirmStatus, &t.Timestamp, &t.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return &t, nil
}
