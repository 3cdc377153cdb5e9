package controller

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tundeakins/billspay/internal/processor"
)

// AirtimeController handles airtime top-up requests.
type AirtimeController struct {
	airtime *processor.Airtime
	logger  zerolog.Logger
}

func NewAirtimeController(airtime *processor.Airtime, logger zerolog.Logger) *AirtimeController {
	return &AirtimeController{airtime: airtime, logger: logger}
}

// Purchase handles POST /airtime/purchase. Adapter failures degrade to the
// vendor envelope's own error shape; taxonomy detail is logged, not
// surfaced.
func (h *AirtimeController) Purchase(w http.ResponseWriter, r *http.Request) {
	var req processor.AirtimePurchaseRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "validation_error"})
		return
	}

	resp, err := h.airtime.Purchase(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).
			Str("client_reference", req.ClientTransactionReference).
			Msg("airtime purchase failed")
		msg := "airtime purchase failed"
		writeJSON(w, http.StatusOK, processor.AirtimePurchaseResponse{
			HasError:     true,
			ErrorMessage: &msg,
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
