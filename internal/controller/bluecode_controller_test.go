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
	"github.com/tundeakins/billspay/internal/domain/transaction"
	"github.com/tundeakins/billspay/internal/testutil"
)

func TestBluecodeController_Callback_AppliesState(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	_, err := repo.Insert(t.Context(), &transaction.NewTransaction{
		MerchantReference: "TXN-abc",
		Amount:            500000,
		QRStatus:          "PROCESSING",
	})
	require.NoError(t, err)

	h := NewBluecodeController(repo, "", zerolog.Nop())

	body := bytes.NewBufferString(`{"merchant_tx_id":"TXN-abc","state":"APPROVED"}`)
	rec := httptest.NewRecorder()
	h.Callback(rec, httptest.NewRequest(http.MethodPost, "/bluecode/callback", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var ack AckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, "received", ack.Status)

	rows := repo.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "APPROVED", rows[0].QRStatus)
}

func TestBluecodeController_Callback_AcknowledgesGarbage(t *testing.T) {
	h := NewBluecodeController(testutil.NewMockTransactionRepository(), "", zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Callback(rec, httptest.NewRequest(http.MethodPost, "/bluecode/callback", bytes.NewBufferString(`not json`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var ack AckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, "received", ack.Status)
}

func TestBluecodeController_Callback_SecretRequired(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	h := NewBluecodeController(repo, "topsecret", zerolog.Nop())

	t.Run("missing secret rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := bytes.NewBufferString(`{"merchant_tx_id":"TXN-abc","state":"APPROVED"}`)
		h.Callback(rec, httptest.NewRequest(http.MethodPost, "/bluecode/callback", body))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := bytes.NewBufferString(`{"merchant_tx_id":"TXN-abc","state":"APPROVED"}`)
		req := httptest.NewRequest(http.MethodPost, "/bluecode/callback", body)
		req.Header.Set("X-Callback-Secret", "guess")
		h.Callback(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("correct secret accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := bytes.NewBufferString(`{"merchant_tx_id":"TXN-abc","state":"APPROVED"}`)
		req := httptest.NewRequest(http.MethodPost, "/bluecode/callback", body)
		req.Header.Set("X-Callback-Secret", "topsecret")
		h.Callback(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
