package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	domainErrors "github.com/tundeakins/billspay/internal/domain/errors"
	"github.com/tundeakins/billspay/internal/domain/transaction"
	"github.com/tundeakins/billspay/internal/infrastructure/observability"
	"github.com/tundeakins/billspay/internal/processor"
)

// DSTVController handles DSTV account lookups, payment confirmation and the
// Bluecode QR flow the DSTV checkout uses.
type DSTVController struct {
	dstv     *processor.DSTV
	bluecode *processor.Bluecode
	ledger   transaction.Repository
	metrics  *observability.Metrics
	logger   zerolog.Logger
}

func NewDSTVController(
	dstv *processor.DSTV,
	bluecode *processor.Bluecode,
	ledger transaction.Repository,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *DSTVController {
	return &DSTVController{dstv: dstv, bluecode: bluecode, ledger: ledger, metrics: metrics, logger: logger}
}

// Lookup handles POST /dstv/lookup.
func (h *DSTVController) Lookup(w http.ResponseWriter, r *http.Request) {
	var req DstvLookupRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "validation_error"})
		return
	}

	result, err := h.dstv.Lookup(r.Context(), req.CustomerID)
	if err != nil {
		h.logger.Error().Err(err).Str("customer_id", req.CustomerID).Msg("dstv lookup failed")
		writeJSON(w, http.StatusOK, processor.DSTVLookupResult{
			Message: "Lookup failed",
			Success: false,
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ConfirmPayment handles POST /dstv/confirm-payment.
func (h *DSTVController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req DstvConfirmPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "validation_error"})
		return
	}

	raw, err := h.dstv.ConfirmPayment(r.Context(), processor.DSTVConfirmRequest{
		MerchantReference: req.MerchantReference,
		CustomerID:        req.CustomerID,
		BasketID:          req.BasketID,
		AmountInCents:     req.Amount,
	})
	if err != nil {
		h.logger.Error().Err(err).
			Str("merchant_reference", req.MerchantReference).
			Msg("dstv payment confirmation failed")

		status, msg := "failed", "DSTV payment confirmation failed"
		if errors.Is(err, domainErrors.ErrRequeryPending) {
			status, msg = "pending", "Transaction is still pending"
		}
		h.recordConfirm(r, req, status)
		writeJSON(w, http.StatusOK, DstvConfirmPaymentResponse{Success: false, Message: &msg})
		return
	}

	h.recordConfirm(r, req, "confirmed")
	msg := "Payment confirmed successfully"
	writeJSON(w, http.StatusOK, DstvConfirmPaymentResponse{Success: true, RawXML: &raw, Message: &msg})
}

// InitiatePayment handles POST /dstv/initiate-payment: registers a Bluecode
// QR payment for the checkout.
func (h *DSTVController) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentInitRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "validation_error"})
		return
	}

	payment, err := h.bluecode.Register(r.Context(), "", req.Amount)
	if err != nil {
		h.logger.Error().Err(err).Msg("bluecode registration failed")
		writeJSON(w, http.StatusOK, processor.BluecodePayment{State: "FAILED"})
		return
	}

	ledgerRow := &transaction.NewTransaction{
		MerchantReference: payment.MerchantTxID,
		Amount:            req.Amount,
		QRStatus:          payment.State,
		Timestamp:         time.Now().Unix(),
	}
	if _, err := h.ledger.Insert(r.Context(), ledgerRow); err != nil {
		// adapter outcome already settled; the ledger write is best-effort
		h.logger.Error().Err(err).
			Str("merchant_tx_id", payment.MerchantTxID).
			Msg("failed to record initiated payment")
	} else if h.metrics != nil {
		h.metrics.TransactionsRecorded.WithLabelValues("bluecode_register").Inc()
	}

	writeJSON(w, http.StatusOK, payment)
}

// Requery handles GET /dstv/requery/{merchant_tx_id}: a Bluecode status
// check for an initiated payment.
func (h *DSTVController) Requery(w http.ResponseWriter, r *http.Request) {
	merchantTxID := chi.URLParam(r, "merchant_tx_id")

	wrapper, err := h.bluecode.Status(r.Context(), merchantTxID)
	if err != nil {
		h.logger.Error().Err(err).Str("merchant_tx_id", merchantTxID).Msg("bluecode status failed")
		writeJSON(w, http.StatusOK, processor.BluecodeStatusWrapper{
			Result:  "ERROR",
			Payment: processor.BluecodeStatusPayment{State: "UNKNOWN"},
		})
		return
	}

	writeJSON(w, http.StatusOK, wrapper)
}

func (h *DSTVController) recordConfirm(r *http.Request, req DstvConfirmPaymentRequest, status string) {
	row := &transaction.NewTransaction{
		MerchantReference: req.MerchantReference,
		CustomerID:        req.CustomerID,
		BasketID:          req.BasketID,
		Amount:            req.Amount,
		ConfirmStatus:     status,
		Timestamp:         time.Now().Unix(),
	}
	if _, err := h.ledger.Insert(r.Context(), row); err != nil {
		h.logger.Error().Err(err).
			Str("merchant_reference", req.MerchantReference).
			Msg("failed to record confirmation outcome")
		return
	}
	if h.metrics != nil {
		h.metrics.TransactionsRecorded.WithLabelValues("dstv_confirm").Inc()
	}
}
