package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	domainErrors "github.com/tundeakins/billspay/internal/domain/errors"
	"github.com/tundeakins/billspay/internal/infrastructure/config"
	"github.com/tundeakins/billspay/internal/infrastructure/observability"
)

const airtimeName = "airtime"

// Airtime forwards top-up purchases to the airtime vendor gateway.
type Airtime struct {
	cfg     config.AirtimeConfig
	client  *http.Client
	logger  zerolog.Logger
	metrics *observability.Metrics
}

func NewAirtime(cfg config.AirtimeConfig, client *http.Client, logger zerolog.Logger, metrics *observability.Metrics) *Airtime {
	if client == nil {
		client = NewHTTPClient()
	}
	return &Airtime{cfg: cfg, client: client, logger: logger, metrics: metrics}
}

func (a *Airtime) Name() string { return airtimeName }

// AirtimePurchaseRequest mirrors the vendor wire format field for field.
type AirtimePurchaseRequest struct {
	ClientTransactionReference string  `json:"clientTransactionReference" validate:"required"`
	AccountNumber              string  `json:"accountNumber" validate:"required"`
	CIF                        string  `json:"cif"`
	Network                    string  `json:"network" validate:"required"`
	PhoneNumber                string  `json:"phoneNumber" validate:"required"`
	Amount                     float64 `json:"amount" validate:"gt=0"`
	Pin                        string  `json:"pin" validate:"required"`
	ChannelID                  string  `json:"channelId"`
	SecurityInfo               string  `json:"securityInfo"`
	IsForPoint                 bool    `json:"isForPoint"`
}

// AirtimePurchaseResult is the inner result object present on success.
type AirtimePurchaseResult struct {
	Status                       *string `json:"status"`
	Message                      *string `json:"message"`
	Narration                    *string `json:"narration"`
	TransactionReference         *string `json:"transactionReference"`
	PlatformTransactionReference *string `json:"platformTransactionReference"`
	TransactionStan              *string `json:"transactionStan"`
	// Field name reproduces the vendor's own spelling.
	OrinalTxnTransactionDate *string `json:"orinalTxnTransactionDate"`
}

// AirtimePurchaseResponse is the vendor envelope. The vendor signals failure
// through hasError rather than the HTTP status.
type AirtimePurchaseResponse struct {
	Result        *AirtimePurchaseResult `json:"result"`
	ErrorMessage  *string                `json:"errorMessage"`
	ErrorMessages []string               `json:"errorMessages"`
	HasError      bool                   `json:"hasError"`
	TimeGenerated *string                `json:"timeGenerated"`
}

// Purchase performs one PurchaseAirtimeWithPin call.
func (a *Airtime) Purchase(ctx context.Context, req AirtimePurchaseRequest) (resp *AirtimePurchaseResponse, err error) {
	start := time.Now()
	defer func() { observe(a.metrics, airtimeName, "purchase", start, err) }()

	switch {
	case a.cfg.BaseURL == "":
		return nil, domainErrors.ConfigMissing(airtimeName, "AIRTIME_API_BASE_URL")
	case a.cfg.APIKey == "":
		return nil, domainErrors.ConfigMissing(airtimeName, "AIRTIME_API_KEY")
	case a.cfg.AccessID == "":
		return nil, domainErrors.ConfigMissing(airtimeName, "ACCESS_ID")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, domainErrors.Internal(airtimeName, fmt.Sprintf("marshal request: %v", err))
	}

	url := a.cfg.BaseURL + "/api/Airtime/PurchaseAirtimeWithPin"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domainErrors.Internal(airtimeName, fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.APIKey)
	httpReq.Header.Set("AccessId", a.cfg.AccessID)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		a.logger.Error().Err(err).Str("processor", airtimeName).Msg("purchase call failed")
		return nil, domainErrors.Transport(airtimeName, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, domainErrors.Transport(airtimeName, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		a.logger.Warn().
			Int("status", httpResp.StatusCode).
			Str("body", string(raw)).
			Msg("airtime gateway rejected purchase")
		return nil, domainErrors.Upstream(airtimeName, httpResp.StatusCode, string(raw))
	}

	var parsed AirtimePurchaseResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, domainErrors.Decode(airtimeName, err)
	}
	if !parsed.HasError && parsed.Result == nil {
		return nil, domainErrors.Internal(airtimeName, "response has neither result nor error")
	}
	return &parsed, nil
}
