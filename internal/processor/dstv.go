package processor

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	domainErrors "github.com/tundeakins/billspay/internal/domain/errors"
	"github.com/tundeakins/billspay/internal/infrastructure/config"
	"github.com/tundeakins/billspay/internal/infrastructure/observability"
)

const dstvName = "dstv"

// Custom field keys the Multichoice vendor uses in lookup responses.
const (
	customFieldSurname        = "SURNAME"
	customFieldCustomerNumber = "DSTV_CUSTOMER_NUMBER"
)

// DSTV talks to the Multichoice vendor API. Confirmation is a two-step
// protocol: the confirm call is authoritative when it answers, but the
// vendor sometimes times out or returns an empty body even when the
// underlying transaction went through, so an ambiguous confirm outcome is
// resolved through a read-only status requery instead of being reported as
// a failure.
type DSTV struct {
	cfg     config.DSTVConfig
	client  *http.Client
	logger  zerolog.Logger
	metrics *observability.Metrics
}

func NewDSTV(cfg config.DSTVConfig, client *http.Client, logger zerolog.Logger, metrics *observability.Metrics) *DSTV {
	if client == nil {
		client = NewHTTPClient()
	}
	return &DSTV{cfg: cfg, client: client, logger: logger, metrics: metrics}
}

func (d *DSTV) Name() string { return dstvName }

// DSTVConfirmRequest identifies one payment to confirm with the vendor.
type DSTVConfirmRequest struct {
	MerchantReference string
	CustomerID        string
	BasketID          string
	AmountInCents     int64
}

// DSTVLookupResult is the parsed account lookup response. CustomFields keeps
// the full extracted mapping so fields not explicitly modeled stay reachable.
type DSTVLookupResult struct {
	AccountName  *string           `json:"account_name"`
	CustomerID   *string           `json:"customer_id"`
	Message      string            `json:"message"`
	Success      bool              `json:"success"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// Vendor XML envelope. Ver rides as an attribute, custom fields as
// attribute-keyed Customfield elements.
type payUVasRequest struct {
	XMLName           xml.Name         `xml:"PayUVasRequest"`
	Ver               string           `xml:"Ver,attr"`
	MerchantID        string           `xml:"MerchantId"`
	MerchantReference string           `xml:"MerchantReference"`
	TransactionType   string           `xml:"TransactionType"`
	VasID             string           `xml:"VasId"`
	CountryCode       string           `xml:"CountryCode"`
	AmountInCents     int64            `xml:"AmountInCents,omitempty"`
	CustomerID        string           `xml:"CustomerId"`
	CustomFields      *xmlCustomFields `xml:"CustomFields,omitempty"`
}

type xmlCustomFields struct {
	Fields []xmlCustomField `xml:"Customfield"`
}

type xmlCustomField struct {
	Key   string `xml:"Key,attr"`
	Value string `xml:"Value,attr"`
}

type payUVasResponse struct {
	ResultCode    string           `xml:"ResultCode"`
	ResultMessage string           `xml:"ResultMessage"`
	CustomFields  *xmlCustomFields `xml:"CustomFields"`
}

type requeryItem struct {
	MerchantReference string `json:"merchantreference"`
	Smartcard         string `json:"smartcard"`
	Status            int    `json:"status"`
	BasketID          string `json:"basketid"`
}

// ConfirmPayment runs the confirm step and, when its outcome is ambiguous
// (transport failure, non-success status, or an empty body), falls back to
// exactly one requery. On success the vendor's raw response body is returned
// verbatim; callers interpret the vendor's own result codes downstream.
func (d *DSTV) ConfirmPayment(ctx context.Context, req DSTVConfirmRequest) (raw string, err error) {
	start := time.Now()
	defer func() { observe(d.metrics, dstvName, "confirm", start, err) }()

	if err := d.checkConfig(d.cfg.PaymentURL, "DSTV_PAYMENT_URL"); err != nil {
		return "", err
	}

	envelope := payUVasRequest{
		Ver:               "1.0",
		MerchantID:        d.cfg.MerchantID,
		MerchantReference: req.MerchantReference,
		TransactionType:   "SINGLE",
		VasID:             d.cfg.VasID,
		CountryCode:       d.cfg.CountryCode,
		AmountInCents:     req.AmountInCents,
		CustomerID:        req.CustomerID,
		CustomFields: &xmlCustomFields{
			Fields: []xmlCustomField{{Key: "BasketId", Value: req.BasketID}},
		},
	}

	body, status, err := d.postXML(ctx, d.cfg.PaymentURL, envelope)
	switch {
	case err != nil:
		d.logger.Warn().Err(err).
			Str("merchant_reference", req.MerchantReference).
			Msg("confirm transport failure, falling back to requery")
		return d.requery(ctx, req.MerchantReference)
	case status < 200 || status > 299, strings.TrimSpace(body) == "":
		d.logger.Warn().
			Int("status", status).
			Str("merchant_reference", req.MerchantReference).
			Msg("confirm unresolved, falling back to requery")
		return d.requery(ctx, req.MerchantReference)
	}

	return body, nil
}

// requery resolves an ambiguous confirmation through the vendor's read-only
// transaction status endpoint. The first array element's status field is
// tri-state: 1 settled, -1 still pending, anything else failed.
func (d *DSTV) requery(ctx context.Context, reference string) (string, error) {
	if err := d.checkConfig(d.cfg.StatusURL, "DSTV_STATUS_URL"); err != nil {
		return "", err
	}

	requeryURL := strings.TrimSuffix(d.cfg.StatusURL, "/") + "/" + url.PathEscape(reference)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, requeryURL, nil)
	if err != nil {
		return "", domainErrors.Internal(dstvName, fmt.Sprintf("build requery request: %v", err))
	}
	httpReq.SetBasicAuth(d.cfg.Username, d.cfg.Password)

	httpResp, err := d.client.Do(httpReq)
	if err != nil {
		d.recordRequery("transport_error")
		return "", domainErrors.Transport(dstvName, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		d.recordRequery("transport_error")
		return "", domainErrors.Transport(dstvName, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		d.recordRequery("upstream_error")
		return "", domainErrors.Upstream(dstvName, httpResp.StatusCode, string(raw))
	}

	body := string(raw)
	if strings.TrimSpace(body) == "" {
		d.recordRequery("empty")
		return "", domainErrors.Internal(dstvName, "empty requery response")
	}

	var items []requeryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		d.recordRequery("decode_error")
		return "", domainErrors.Decode(dstvName, err)
	}
	if len(items) == 0 {
		d.recordRequery("empty")
		return "", domainErrors.Internal(dstvName, "requery returned empty array")
	}

	switch items[0].Status {
	case 1:
		d.recordRequery("success")
		return body, nil
	case -1:
		d.recordRequery("pending")
		return "", domainErrors.Pending(dstvName, fmt.Sprintf("merchant reference %s", reference))
	default:
		d.recordRequery("failed")
		return "", domainErrors.Internal(dstvName, fmt.Sprintf("requery returned failed status: %d", items[0].Status))
	}
}

// Lookup resolves a customer identifier to account details. Empty bodies are
// hard errors, never "not found".
func (d *DSTV) Lookup(ctx context.Context, customerID string) (result *DSTVLookupResult, err error) {
	start := time.Now()
	defer func() { observe(d.metrics, dstvName, "lookup", start, err) }()

	if err := d.checkConfig(d.cfg.LookupURL, "DSTV_LOOKUP_URL"); err != nil {
		return nil, err
	}

	envelope := payUVasRequest{
		Ver:               "1.0",
		MerchantID:        d.cfg.MerchantID,
		MerchantReference: "lookup-" + uuid.NewString(),
		TransactionType:   "ACCOUNT_LOOKUP",
		VasID:             d.cfg.VasID,
		CountryCode:       d.cfg.CountryCode,
		CustomerID:        customerID,
	}

	body, status, err := d.postXML(ctx, d.cfg.LookupURL, envelope)
	if err != nil {
		return nil, domainErrors.Transport(dstvName, err)
	}
	if status < 200 || status > 299 {
		return nil, domainErrors.Upstream(dstvName, status, body)
	}
	if strings.TrimSpace(body) == "" {
		return nil, domainErrors.Internal(dstvName, "empty lookup response")
	}

	var parsed payUVasResponse
	if err := xml.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, domainErrors.Decode(dstvName, err)
	}

	result = &DSTVLookupResult{
		Message:      "Success",
		Success:      true,
		CustomFields: map[string]string{},
	}
	if parsed.CustomFields != nil {
		for _, f := range parsed.CustomFields.Fields {
			result.CustomFields[f.Key] = f.Value
			switch f.Key {
			case customFieldSurname:
				v := f.Value
				result.AccountName = &v
			case customFieldCustomerNumber:
				v := f.Value
				result.CustomerID = &v
			}
		}
	}
	return result, nil
}

// postXML serializes the envelope and submits it the way the vendor expects:
// the XML document rides as a single form field named "xml" in an
// application/x-www-form-urlencoded body, under basic auth. It returns the
// response body and status; err is non-nil only for transport failures.
func (d *DSTV) postXML(ctx context.Context, endpoint string, envelope payUVasRequest) (string, int, error) {
	doc, err := xml.Marshal(envelope)
	if err != nil {
		return "", 0, fmt.Errorf("serialize envelope: %w", err)
	}
	xmlString := `<?xml version="1.0" encoding="UTF-8"?>` + string(doc)

	form := url.Values{"xml": {xmlString}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(d.cfg.Username, d.cfg.Password)

	httpResp, err := d.client.Do(httpReq)
	if err != nil {
		return "", 0, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", httpResp.StatusCode, err
	}
	return string(raw), httpResp.StatusCode, nil
}

func (d *DSTV) checkConfig(endpoint, name string) error {
	switch {
	case endpoint == "":
		return domainErrors.ConfigMissing(dstvName, name)
	case d.cfg.Username == "":
		return domainErrors.ConfigMissing(dstvName, "DSTV_USERNAME")
	case d.cfg.Password == "":
		return domainErrors.ConfigMissing(dstvName, "DSTV_PASSWORD")
	case d.cfg.MerchantID == "":
		return domainErrors.ConfigMissing(dstvName, "dstv.merchant_id")
	}
	return nil
}

func (d *DSTV) recordRequery(outcome string) {
	if d.metrics == nil {
		return
	}
	d.metrics.RequeryFallbacksTotal.WithLabelValues(outcome).Inc()
}
