package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	domainErrors "github.com/tundeakins/billspay/internal/domain/errors"
	"github.com/tundeakins/billspay/internal/infrastructure/config"
	"github.com/tundeakins/billspay/internal/infrastructure/observability"
)

const quicktellerName = "quickteller"

// Quickteller reads the Interswitch biller catalog: categories, billers per
// category, and the payment items a biller accepts.
type Quickteller struct {
	cfg     config.QuicktellerConfig
	client  *http.Client
	logger  zerolog.Logger
	metrics *observability.Metrics
}

func NewQuickteller(cfg config.QuicktellerConfig, client *http.Client, logger zerolog.Logger, metrics *observability.Metrics) *Quickteller {
	if client == nil {
		client = NewHTTPClient()
	}
	return &Quickteller{cfg: cfg, client: client, logger: logger, metrics: metrics}
}

func (q *Quickteller) Name() string { return quicktellerName }

// BillerCategory is one entry of the catalog's category listing.
type BillerCategory struct {
	ID          int    `json:"Id"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// BillerCategoriesResponse is the category listing envelope.
type BillerCategoriesResponse struct {
	BillerCategories []BillerCategory `json:"BillerCategories"`
	ResponseCode     *string          `json:"ResponseCode"`
}

// Biller is one biller inside a category.
type Biller struct {
	ID             int     `json:"Id"`
	Name           string  `json:"Name"`
	ShortName      *string `json:"ShortName"`
	CustomerField1 *string `json:"CustomerField1"`
	LogoURL        *string `json:"LogoUrl"`
	NetworkID      *string `json:"NetworkId"`
	ProductCode    *string `json:"ProductCode"`
}

// BillerCategoryGroup is a category with its billers inlined.
type BillerCategoryGroup struct {
	ID          int      `json:"Id"`
	Name        string   `json:"Name"`
	Description string   `json:"Description"`
	Billers     []Biller `json:"Billers"`
}

type billerList struct {
	Count    int                   `json:"Count"`
	Category []BillerCategoryGroup `json:"Category"`
}

// BillersByCategoryResponse is the per-category biller listing envelope.
type BillersByCategoryResponse struct {
	BillerList   billerList `json:"BillerList"`
	ResponseCode string     `json:"ResponseCode"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// AccessToken exchanges the client credentials for a bearer token.
func (q *Quickteller) AccessToken(ctx context.Context) (token string, err error) {
	start := time.Now()
	defer func() { observe(q.metrics, quicktellerName, "token", start, err) }()

	if err := q.checkConfig(); err != nil {
		return "", err
	}

	form := url.Values{"grant_type": {"client_credentials"}, "scope": {"profile"}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		q.cfg.BaseURL+"/passport/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", domainErrors.Internal(quicktellerName, fmt.Sprintf("build token request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(q.cfg.ClientID, q.cfg.SecretKey)

	var parsed accessTokenResponse
	if err := q.do(httpReq, &parsed); err != nil {
		return "", err
	}
	if parsed.AccessToken == "" {
		return "", domainErrors.Internal(quicktellerName, "token response has no access_token")
	}
	return parsed.AccessToken, nil
}

// BillerCategories lists the catalog's top-level categories.
func (q *Quickteller) BillerCategories(ctx context.Context, token string) (resp *BillerCategoriesResponse, err error) {
	start := time.Now()
	defer func() { observe(q.metrics, quicktellerName, "categories", start, err) }()

	if err := q.checkConfig(); err != nil {
		return nil, err
	}

	httpReq, err := q.catalogRequest(ctx, token, "/api/v2/quickteller/billers/categories")
	if err != nil {
		return nil, err
	}

	var parsed BillerCategoriesResponse
	if err := q.do(httpReq, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// BillersByCategory lists the billers registered under one category.
func (q *Quickteller) BillersByCategory(ctx context.Context, token string, categoryID int) (resp *BillersByCategoryResponse, err error) {
	start := time.Now()
	defer func() { observe(q.metrics, quicktellerName, "billers_by_category", start, err) }()

	if err := q.checkConfig(); err != nil {
		return nil, err
	}

	httpReq, err := q.catalogRequest(ctx, token, fmt.Sprintf("/api/v2/quickteller/billers/category/%d", categoryID))
	if err != nil {
		return nil, err
	}

	var parsed BillersByCategoryResponse
	if err := q.do(httpReq, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// BillerPaymentItems lists the payment items a biller service accepts. The
// vendor payload varies per biller, so it is surfaced as-is.
func (q *Quickteller) BillerPaymentItems(ctx context.Context, token string, serviceID int) (items map[string]any, err error) {
	start := time.Now()
	defer func() { observe(q.metrics, quicktellerName, "payment_items", start, err) }()

	if err := q.checkConfig(); err != nil {
		return nil, err
	}

	httpReq, err := q.catalogRequest(ctx, token, fmt.Sprintf("/api/v2/quickteller/billers/%d/paymentitems", serviceID))
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := q.do(httpReq, &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func (q *Quickteller) catalogRequest(ctx context.Context, token, path string) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, q.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, domainErrors.Internal(quicktellerName, fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("TerminalID", q.cfg.TerminalID)
	return httpReq, nil
}

func (q *Quickteller) do(httpReq *http.Request, out any) error {
	httpResp, err := q.client.Do(httpReq)
	if err != nil {
		q.logger.Error().Err(err).Str("url", httpReq.URL.Path).Msg("quickteller call failed")
		return domainErrors.Transport(quicktellerName, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return domainErrors.Transport(quicktellerName, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return domainErrors.Upstream(quicktellerName, httpResp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domainErrors.Decode(quicktellerName, err)
	}
	return nil
}

func (q *Quickteller) checkConfig() error {
	switch {
	case q.cfg.BaseURL == "":
		return domainErrors.ConfigMissing(quicktellerName, "QUICKTELLER_BASE_URL")
	case q.cfg.ClientID == "":
		return domainErrors.ConfigMissing(quicktellerName, "QUICKTELLER_CLIENT_ID")
	case q.cfg.SecretKey == "":
		return domainErrors.ConfigMissing(quicktellerName, "QUICKTELLER_SECRET_KEY")
	case q.cfg.TerminalID == "":
		return domainErrors.ConfigMissing(quicktellerName, "INTERSWITCH_TERMINAL_ID")
	}
	return nil
}
