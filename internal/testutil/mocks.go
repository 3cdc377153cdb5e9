package testutil

import (
	"context"
	"sync"

	"github.com/tundeakins/billspay/internal/domain/transaction"
)

// MockTransactionRepository is an in-memory implementation of
// transaction.Repository. Per-method Func fields override the default
// behavior when set.
type MockTransactionRepository struct {
	mu     sync.Mutex
	rows   []*transaction.Transaction
	nextID int64

	InsertFunc         func(ctx context.Context, row *transaction.NewTransaction) (*transaction.Transaction, error)
	ListFunc           func(ctx context.Context) ([]*transaction.Transaction, error)
	UpdateQRStatusFunc func(ctx context.Context, merchantReference, state string) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{nextID: 1}
}

func (m *MockTransactionRepository) Insert(ctx context.Context, row *transaction.NewTransaction) (*transaction.Transaction, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	created := &transaction.Transaction{
		ID:                m.nextID,
		MerchantReference: row.MerchantReference,
		CustomerID:        row.CustomerID,
		BasketID:          row.BasketID,
		Amount:            row.Amount,
		QRStatus:          row.QRStatus,
		ConfirmStatus:     row.ConfirmStatus,
		Timestamp:         row.Timestamp,
		UserID:            row.UserID,
	}
	m.nextID++
	m.rows = append([]*transaction.Transaction{created}, m.rows...)
	return created, nil
}

func (m *MockTransactionRepository) List(ctx context.Context) ([]*transaction.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*transaction.Transaction, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *MockTransactionRepository) UpdateQRStatus(ctx context.Context, merchantReference, state string) error {
	if m.UpdateQRStatusFunc != nil {
		return m.UpdateQRStatusFunc(ctx, merchantReference, state)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.MerchantReference == merchantReference {
			row.QRStatus = state
		}
	}
	return nil
}

// Rows returns a snapshot of the stored ledger, newest first.
func (m *MockTransactionRepository) Rows() []*transaction.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*transaction.Transaction, len(m.rows))
	copy(out, m.rows)
	return out
}
