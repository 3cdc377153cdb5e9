package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/tundeakins/billspay/internal/service"
)

// BillersController exposes the Quickteller biller catalog.
type BillersController struct {
	billers *service.BillersService
	logger  zerolog.Logger
}

func NewBillersController(billers *service.BillersService, logger zerolog.Logger) *BillersController {
	return &BillersController{billers: billers, logger: logger}
}

// Categories handles GET /billers/categories.
func (h *BillersController) Categories(w http.ResponseWriter, r *http.Request) {
	resp, err := h.billers.Categories(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("biller categories fetch failed")
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "failed to fetch biller categories", Code: "upstream_error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// All handles GET /billers: every biller grouped by category.
func (h *BillersController) All(w http.ResponseWriter, r *http.Request) {
	groups, err := h.billers.AllBillers(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("biller catalog fetch failed")
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "failed to fetch billers", Code: "upstream_error"})
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// ByCategory handles GET /billers/categories/{category_id}.
func (h *BillersController) ByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.Atoi(chi.URLParam(r, "category_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "category_id must be an integer", Code: "validation_error"})
		return
	}

	resp, err := h.billers.BillersByCategory(r.Context(), categoryID)
	if err != nil {
		h.logger.Error().Err(err).Int("category_id", categoryID).Msg("billers by category fetch failed")
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "failed to fetch billers", Code: "upstream_error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PaymentItems handles GET /billers/{service_id}/payment-items.
func (h *BillersController) PaymentItems(w http.ResponseWriter, r *http.Request) {
	serviceID, err := strconv.Atoi(chi.URLParam(r, "service_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "service_id must be an integer", Code: "validation_error"})
		return
	}

	items, err := h.billers.PaymentItems(r.Context(), serviceID)
	if err != nil {
		h.logger.Error().Err(err).Int("service_id", serviceID).Msg("payment items fetch failed")
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "failed to fetch payment items", Code: "upstream_error"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}
