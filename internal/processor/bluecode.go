package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	domainErrors "github.com/tundeakins/billspay/internal/domain/errors"
	"github.com/tundeakins/billspay/internal/infrastructure/config"
	"github.com/tundeakins/billspay/internal/infrastructure/observability"
)

const bluecodeName = "bluecode"

// Bluecode talks to the Bluecode merchant API for QR check-in payments.
type Bluecode struct {
	cfg     config.BluecodeConfig
	client  *http.Client
	logger  zerolog.Logger
	metrics *observability.Metrics
}

func NewBluecode(cfg config.BluecodeConfig, client *http.Client, logger zerolog.Logger, metrics *observability.Metrics) *Bluecode {
	if client == nil {
		client = NewHTTPClient()
	}
	return &Bluecode{cfg: cfg, client: client, logger: logger, metrics: metrics}
}

func (b *Bluecode) Name() string { return bluecodeName }

// NewMerchantTxID generates the idempotency-style transaction identifier
// carried by a register call: a fixed prefix plus a fresh random token.
func NewMerchantTxID() string {
	return "TXN-" + uuid.NewString()
}

type bluecodeRegisterRequest struct {
	MerchantTxID        string `json:"merchant_tx_id"`
	BranchExtID         string `json:"branch_ext_id"`
	Scheme              string `json:"scheme"`
	RequestedAmount     int64  `json:"requested_amount"`
	Currency            string `json:"currency"`
	Terminal            string `json:"terminal"`
	Source              string `json:"source"`
	MerchantCallbackURL string `json:"merchant_callback_url"`
	ReturnURLFailure    string `json:"return_url_failure"`
	ReturnURLSuccess    string `json:"return_url_success"`
	ReturnURLCancel     string `json:"return_url_cancel"`
}

// BluecodePayment is the inner payment object of a register response.
type BluecodePayment struct {
	MerchantTxID string `json:"merchant_tx_id"`
	CheckinCode  string `json:"checkin_code"`
	State        string `json:"state"`
}

type bluecodeRegisterEnvelope struct {
	Result  string          `json:"result"`
	Payment BluecodePayment `json:"payment"`
}

// BluecodeStatusPayment is the payment object of a status response.
type BluecodeStatusPayment struct {
	State        string `json:"state"`
	MerchantTxID string `json:"merchant_tx_id"`
}

// BluecodeStatusWrapper is the status response envelope, returned verbatim
// to callers.
type BluecodeStatusWrapper struct {
	Result  string                `json:"result"`
	Payment BluecodeStatusPayment `json:"payment"`
}

// Register submits a QR payment registration for the given amount in minor
// units. merchantTxID may be empty, in which case a fresh one is generated.
// The one-level response envelope is unwrapped to the inner payment object.
func (b *Bluecode) Register(ctx context.Context, merchantTxID string, amountMinor int64) (payment *BluecodePayment, err error) {
	start := time.Now()
	defer func() { observe(b.metrics, bluecodeName, "register", start, err) }()

	if err := b.checkCredentials(); err != nil {
		return nil, err
	}
	if merchantTxID == "" {
		merchantTxID = NewMerchantTxID()
	}

	req := bluecodeRegisterRequest{
		MerchantTxID:        merchantTxID,
		BranchExtID:         b.cfg.BranchExtID,
		Scheme:              b.cfg.Scheme,
		RequestedAmount:     amountMinor,
		Currency:            b.cfg.Currency,
		Terminal:            b.cfg.Terminal,
		Source:              b.cfg.Source,
		MerchantCallbackURL: b.cfg.CallbackURL,
		ReturnURLFailure:    b.cfg.RedirectURL,
		ReturnURLSuccess:    b.cfg.SuccessURL,
		ReturnURLCancel:     b.cfg.CancelURL,
	}

	var envelope bluecodeRegisterEnvelope
	if err := b.post(ctx, "/v4/register", req, &envelope); err != nil {
		return nil, err
	}
	if envelope.Payment.MerchantTxID == "" {
		return nil, domainErrors.Internal(bluecodeName, "register response has no payment object")
	}
	return &envelope.Payment, nil
}

// Status fetches the current state of a registered payment.
func (b *Bluecode) Status(ctx context.Context, merchantTxID string) (wrapper *BluecodeStatusWrapper, err error) {
	start := time.Now()
	defer func() { observe(b.metrics, bluecodeName, "status", start, err) }()

	if err := b.checkCredentials(); err != nil {
		return nil, err
	}

	req := struct {
		MerchantTxID string `json:"merchant_tx_id"`
	}{MerchantTxID: merchantTxID}

	var out BluecodeStatusWrapper
	if err := b.post(ctx, "/v4/status", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *Bluecode) checkCredentials() error {
	switch {
	case b.cfg.BaseURL == "":
		return domainErrors.ConfigMissing(bluecodeName, "BLUECODE_API_BASE_URL")
	case b.cfg.MerchantAccess == "":
		return domainErrors.ConfigMissing(bluecodeName, "BLUECODE_MERCHANT_ACCESS")
	case b.cfg.MerchantSecret == "":
		return domainErrors.ConfigMissing(bluecodeName, "BLUECODE_MERCHANT_SECRET")
	}
	return nil
}

// post performs one basic-authenticated JSON round trip. Upstream rejections
// and undecodable bodies stay distinct taxonomy kinds.
func (b *Bluecode) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return domainErrors.Internal(bluecodeName, fmt.Sprintf("marshal request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return domainErrors.Internal(bluecodeName, fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(b.cfg.MerchantAccess, b.cfg.MerchantSecret)

	httpResp, err := b.client.Do(httpReq)
	if err != nil {
		b.logger.Error().Err(err).Str("path", path).Msg("bluecode call failed")
		return domainErrors.Transport(bluecodeName, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return domainErrors.Transport(bluecodeName, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		b.logger.Warn().
			Int("status", httpResp.StatusCode).
			Str("body", string(raw)).
			Str("path", path).
			Msg("bluecode rejected request")
		return domainErrors.Upstream(bluecodeName, httpResp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domainErrors.Decode(bluecodeName, err)
	}
	return nil
}
