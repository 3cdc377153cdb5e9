package controller

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/tundeakins/billspay/internal/domain/transaction"
	"github.com/tundeakins/billspay/internal/infrastructure/observability"
)

// TransactionController exposes the payment ledger.
type TransactionController struct {
	ledger  transaction.Repository
	metrics *observability.Metrics
	logger  zerolog.Logger
}

func NewTransactionController(ledger transaction.Repository, metrics *observability.Metrics, logger zerolog.Logger) *TransactionController {
	return &TransactionController{ledger: ledger, metrics: metrics, logger: logger}
}

// Create handles POST /transactions.
func (h *TransactionController) Create(w http.ResponseWriter, r *http.Request) {
	var req transaction.NewTransaction
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "validation_error"})
		return
	}
	if req.Timestamp == 0 {
		req.Timestamp = time.Now().Unix()
	}

	created, err := h.ledger.Insert(r.Context(), &req)
	if err != nil {
		h.logger.Error().Err(err).
			Str("merchant_reference", req.MerchantReference).
			Msg("transaction insert failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to record transaction", Code: "storage_error"})
		return
	}

	if h.metrics != nil {
		h.metrics.TransactionsRecorded.WithLabelValues("api").Inc()
	}
	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /transactions, newest first.
func (h *TransactionController) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.ledger.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("transaction list failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list transactions", Code: "storage_error"})
		return
	}
	if rows == nil {
		rows = []*transaction.Transaction{}
	}
	writeJSON(w, http.StatusOK, rows)
}
