package controller

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tundeakins/billspay/internal/domain/transaction"
)

// BluecodeController receives asynchronous payment state callbacks from the
// Bluecode acquiring side.
type BluecodeController struct {
	ledger transaction.Repository
	secret string
	logger zerolog.Logger
}

func NewBluecodeController(ledger transaction.Repository, secret string, logger zerolog.Logger) *BluecodeController {
	return &BluecodeController{ledger: ledger, secret: secret, logger: logger}
}

type bluecodeCallback struct {
	MerchantTxID string `json:"merchant_tx_id"`
	State        string `json:"state"`
}

// Callback handles POST /bluecode/callback. The acquirer retries on non-2xx,
// so anything after authentication acknowledges with 200 regardless of how
// the body parsed.
func (h *BluecodeController) Callback(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		provided := r.Header.Get("X-Callback-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid callback secret", Code: "unauthorized"})
			return
		}
	}

	var payload bluecodeCallback
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn().Err(err).Msg("unparseable bluecode callback body")
		writeJSON(w, http.StatusOK, AckResponse{Status: "received"})
		return
	}

	if payload.MerchantTxID != "" && payload.State != "" {
		if err := h.ledger.UpdateQRStatus(r.Context(), payload.MerchantTxID, payload.State); err != nil {
			h.logger.Error().Err(err).
				Str("merchant_tx_id", payload.MerchantTxID).
				Str("state", payload.State).
				Msg("failed to apply callback state")
		} else {
			h.logger.Info().
				Str("merchant_tx_id", payload.MerchantTxID).
				Str("state", payload.State).
				Msg("bluecode callback applied")
		}
	}

	writeJSON(w, http.StatusOK, AckResponse{Status: "received"})
}
