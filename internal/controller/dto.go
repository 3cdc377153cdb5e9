package controller

// DstvLookupRequest is the inbound account lookup body.
type DstvLookupRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
}

// DstvConfirmPaymentRequest identifies one payment to confirm.
type DstvConfirmPaymentRequest struct {
	CustomerID        string `json:"customer_id" validate:"required"`
	BasketID          string `json:"basket_id" validate:"required"`
	Amount            int64  `json:"amount" validate:"gt=0"`
	MerchantReference string `json:"merchant_reference" validate:"required"`
}

// DstvConfirmPaymentResponse carries the confirm outcome. RawXML holds the
// vendor's response body verbatim on success.
type DstvConfirmPaymentResponse struct {
	Success bool    `json:"success"`
	RawXML  *string `json:"raw_xml,omitempty"`
	Message *string `json:"message,omitempty"`
}

// PaymentInitRequest is the inbound Bluecode QR initiation body. Amount is
// in minor units (kobo).
type PaymentInitRequest struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

// AckResponse acknowledges a vendor callback.
type AckResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the ledger endpoints' error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
