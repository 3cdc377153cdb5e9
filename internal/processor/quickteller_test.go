package processor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/tundeakins/billspay/internal/domain/errors"
	"github.com/tundeakins/billspay/internal/infrastructure/config"
)

func quicktellerConfig(baseURL string) config.QuicktellerConfig {
	return config.QuicktellerConfig{
		BaseURL:    baseURL,
		ClientID:   "client-1",
		SecretKey:  "secret-1",
		TerminalID: "3DMO0001",
	}
}

func newQuickteller(cfg config.QuicktellerConfig) *Quickteller {
	return NewQuickteller(cfg, nil, zerolog.Nop(), nil)
}

func TestQuickteller_AccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/passport/oauth/token", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-1", user)
		assert.Equal(t, "secret-1", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		fmt.Fprint(w, `{"access_token":"eyJ.header.payload","token_type":"Bearer"}`)
	}))
	defer srv.Close()

	q := newQuickteller(quicktellerConfig(srv.URL))
	token, err := q.AccessToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "eyJ.header.payload", token)
}

func TestQuickteller_AccessToken_MissingTokenIsInternal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"token_type":"Bearer"}`)
	}))
	defer srv.Close()

	q := newQuickteller(quicktellerConfig(srv.URL))
	_, err := q.AccessToken(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrInternal)
}

func TestQuickteller_BillerCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/quickteller/billers/categories", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "3DMO0001", r.Header.Get("TerminalID"))

		fmt.Fprint(w, `{
			"BillerCategories": [
				{"Id": 1, "Name": "Utilities", "Description": "Electricity and water"},
				{"Id": 4, "Name": "Cable TV", "Description": "TV subscriptions"}
			],
			"ResponseCode": "90000"
		}`)
	}))
	defer srv.Close()

	q := newQuickteller(quicktellerConfig(srv.URL))
	resp, err := q.BillerCategories(context.Background(), "tok-1")

	require.NoError(t, err)
	require.NotNil(t, resp.ResponseCode)
	assert.Equal(t, "90000", *resp.ResponseCode)
	require.Len(t, resp.BillerCategories, 2)
	assert.Equal(t, "Cable TV", resp.BillerCategories[1].Name)
}

func TestQuickteller_BillersByCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/quickteller/billers/category/4", r.URL.Path)
		fmt.Fprint(w, `{
			"BillerList": {
				"Count": 1,
				"Category": [
					{"Id": 4, "Name": "Cable TV", "Description": "TV subscriptions",
					 "Billers": [{"Id": 104, "Name": "DSTV", "ShortName": "DSTV", "ProductCode": "10401"}]}
				]
			},
			"ResponseCode": "90000"
		}`)
	}))
	defer srv.Close()

	q := newQuickteller(quicktellerConfig(srv.URL))
	resp, err := q.BillersByCategory(context.Background(), "tok-1", 4)

	require.NoError(t, err)
	assert.Equal(t, "90000", resp.ResponseCode)
	require.Len(t, resp.BillerList.Category, 1)
	require.Len(t, resp.BillerList.Category[0].Billers, 1)
	assert.Equal(t, "DSTV", resp.BillerList.Category[0].Billers[0].Name)
}

func TestQuickteller_BillerPaymentItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/quickteller/billers/17305/paymentitems", r.URL.Path)
		fmt.Fprint(w, `{"ResponseCode":"90000","PaymentItems":[{"Id":1,"Name":"Airtel Top-up"}]}`)
	}))
	defer srv.Close()

	q := newQuickteller(quicktellerConfig(srv.URL))
	items, err := q.BillerPaymentItems(context.Background(), "tok-1", 17305)

	require.NoError(t, err)
	assert.Contains(t, items, "ResponseCode")
	assert.Contains(t, items, "PaymentItems")
}

func TestQuickteller_ConfigMissingBeforeNetwork(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()

	cfg := quicktellerConfig(srv.URL)
	cfg.TerminalID = ""

	q := newQuickteller(cfg)
	_, err := q.BillerCategories(context.Background(), "tok-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrConfigMissing)
	assert.Zero(t, atomic.LoadInt64(&calls))
}
