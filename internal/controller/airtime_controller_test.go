package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tundeakins/billspay/internal/infrastructure/config"
	"github.com/tundeakins/billspay/internal/processor"
)

func airtimePurchaseBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(processor.AirtimePurchaseRequest{
		ClientTransactionReference: "ctr-001",
		AccountNumber:              "0123456789",
		Network:                    "MTN",
		PhoneNumber:                "08030000000",
		Amount:                     500,
		Pin:                        "1234",
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestAirtimeController_Purchase_Success(t *testing.T) {
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"status":"Successful","transactionReference":"TR-9"},"hasError":false}`))
	}))
	defer vendor.Close()

	airtime := processor.NewAirtime(config.AirtimeConfig{
		BaseURL:  vendor.URL,
		APIKey:   "subkey",
		AccessID: "access-1",
	}, processor.NewHTTPClient(), zerolog.Nop(), nil)
	h := NewAirtimeController(airtime, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Purchase(rec, httptest.NewRequest(http.MethodPost, "/airtime/purchase", airtimePurchaseBody(t)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp processor.AirtimePurchaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.HasError)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "TR-9", *resp.Result.TransactionReference)
}

func TestAirtimeController_Purchase_AdapterFailureStaysHTTP200(t *testing.T) {
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}))
	defer vendor.Close()

	airtime := processor.NewAirtime(config.AirtimeConfig{
		BaseURL:  vendor.URL,
		APIKey:   "subkey",
		AccessID: "access-1",
	}, processor.NewHTTPClient(), zerolog.Nop(), nil)
	h := NewAirtimeController(airtime, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Purchase(rec, httptest.NewRequest(http.MethodPost, "/airtime/purchase", airtimePurchaseBody(t)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp processor.AirtimePurchaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HasError)
	require.NotNil(t, resp.ErrorMessage)
	assert.Equal(t, "airtime purchase failed", *resp.ErrorMessage)
	assert.NotContains(t, rec.Body.String(), "upstream exploded", "upstream detail is not leaked")
}

func TestAirtimeController_Purchase_RejectsInvalidBody(t *testing.T) {
	h := NewAirtimeController(processor.NewAirtime(config.AirtimeConfig{}, processor.NewHTTPClient(), zerolog.Nop(), nil), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Purchase(rec, httptest.NewRequest(http.MethodPost, "/airtime/purchase", bytes.NewBufferString(`{"amount":0}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
