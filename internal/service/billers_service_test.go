package service

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
	"github.com/tundeakins/billspay/internal/processor"
)

func newCatalogServer(t *testing.T) (*httptest.Server, *int64) {
	t.Helper()
	var categoryFetches int64

	mux := http.NewServeMux()
	mux.HandleFunc("/passport/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-1"}`)
	})
	mux.HandleFunc("/api/v2/quickteller/billers/categories", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"BillerCategories": [
				{"Id": 1, "Name": "Utilities", "Description": "Electricity"},
				{"Id": 4, "Name": "Cable TV", "Description": "TV"}
			],
			"ResponseCode": "90000"
		}`)
	})
	mux.HandleFunc("/api/v2/quickteller/billers/category/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&categoryFetches, 1)
		fmt.Fprint(w, `{
			"BillerList": {"Count": 1, "Category": [
				{"Id": 1, "Name": "cat", "Description": "", "Billers": [{"Id": 10, "Name": "Biller A"}]}
			]},
			"ResponseCode": "90000"
		}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &categoryFetches
}

func newBillersService(baseURL string) *BillersService {
	qt := processor.NewQuickteller(config.QuicktellerConfig{
		BaseURL:    baseURL,
		ClientID:   "c",
		SecretKey:  "s",
		TerminalID: "3DMO0001",
	}, nil, zerolog.Nop(), nil)
	return NewBillersService(qt, nil, 0, zerolog.Nop())
}

func TestBillersService_Categories(t *testing.T) {
	srv, _ := newCatalogServer(t)
	s := newBillersService(srv.URL)

	resp, err := s.Categories(context.Background())

	require.NoError(t, err)
	require.Len(t, resp.BillerCategories, 2)
	assert.Equal(t, "Utilities", resp.BillerCategories[0].Name)
}

func TestBillersService_AllBillers_FansOutPerCategory(t *testing.T) {
	srv, categoryFetches := newCatalogServer(t)
	s := newBillersService(srv.URL)

	groups, err := s.AllBillers(context.Background())

	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, int64(2), atomic.LoadInt64(categoryFetches))
	assert.Equal(t, 1, groups[0].ID)
	assert.Equal(t, 4, groups[1].ID)
	require.Len(t, groups[0].Billers, 1)
	assert.Equal(t, "Biller A", groups[0].Billers[0].Name)
}

func TestBillersService_AllBillers_FailingCategoryFailsFanOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/passport/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-1"}`)
	})
	mux.HandleFunc("/api/v2/quickteller/billers/categories", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"BillerCategories": [{"Id": 1, "Name": "Utilities", "Description": ""}], "ResponseCode": "90000"}`)
	})
	mux.HandleFunc("/api/v2/quickteller/billers/category/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "catalog offline", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newBillersService(srv.URL)
	_, err := s.AllBillers(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrUpstream)
}

func TestBillersService_PaymentItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/passport/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-1"}`)
	})
	mux.HandleFunc("/api/v2/quickteller/billers/17305/paymentitems", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ResponseCode":"90000","PaymentItems":[]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newBillersService(srv.URL)
	items, err := s.PaymentItems(context.Background(), 17305)

	require.NoError(t, err)
	assert.Contains(t, items, "ResponseCode")
}
