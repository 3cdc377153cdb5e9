package transaction

// Transaction is one row of the payment ledger. Status fields are
// processor-specific: qr_status tracks the Bluecode payment state, while
// confirm_status tracks the DSTV vendor confirmation outcome.
type Transaction struct {
	ID                int64   `json:"id"`
	MerchantReference string  `json:"merchant_reference"`
	CustomerID        string  `json:"customer_id"`
	BasketID          string  `json:"basket_id"`
	Amount            int64   `json:"amount"`
	QRStatus          string  `json:"qr_status"`
	ConfirmStatus     string  `json:"confirm_status"`
	Timestamp         int64   `json:"timestamp"`
	UserID            *string `json:"user_id"`
}

// NewTransaction is a ledger row before the store assigns its id.
type NewTransaction struct {
	MerchantReference string  `json:"merchant_reference" validate:"required"`
	CustomerID        string  `json:"customer_id"`
	BasketID          string  `json:"basket_id"`
	Amount            int64   `json:"amount"`
	QRStatus          string  `json:"qr_status"`
	ConfirmStatus     string  `json:"confirm_status"`
	Timestamp         int64   `json:"timestamp"`
	UserID            *string `json:"user_id"`
}
