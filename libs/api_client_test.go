package libs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"shop-cart/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var session = models.Session{Token: "tok"}

func TestAPIClient_SendsJSONWithBearer(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart/items", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id":"cart-1","items":[{"productId":"P1","quantity":2,"price":30}]}`))
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL+"/", time.Second, zap.NewNop())

	var cart models.RemoteCart
	err := client.Do(context.Background(), session, http.MethodPost, "/cart/items",
		map[string]any{"productId": "P1", "quantity": 2}, &cart)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"productId":"P1","quantity":2}`, gotBody)
	assert.Equal(t, "cart-1", cart.ID)
	assert.Equal(t, 2, cart.QuantityOf("P1"))
}

func TestAPIClient_AnonymousRequestHasNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL, time.Second, zap.NewNop())
	assert.NoError(t, client.Do(context.Background(), models.Session{}, http.MethodGet, "/health", nil, nil))
}

func TestAPIClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		body    any
		kind    models.ErrorKind
		message string
	}{
		{http.StatusBadRequest, map[string]string{"message": "Insufficient points"}, models.KindDomain, "Insufficient points"},
		{http.StatusBadRequest, map[string]string{"error": "Cart is empty"}, models.KindDomain, "Cart is empty"},
		{http.StatusUnauthorized, map[string]string{"message": "jwt expired"}, models.KindAuthorization, models.MsgUnauthorized},
		{http.StatusNotFound, nil, models.KindDomain, models.MsgNotFound},
		{http.StatusTooManyRequests, nil, models.KindUnknown, models.MsgRateLimited},
		{http.StatusInternalServerError, map[string]string{"message": "boom"}, models.KindUnknown, models.MsgServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != nil {
					json.NewEncoder(w).Encode(tt.body)
				}
			}))
			defer srv.Close()

			client := NewAPIClient(srv.URL, time.Second, zap.NewNop())
			err := client.Do(context.Background(), session, http.MethodGet, "/cart", nil, &models.RemoteCart{})

			appErr := models.AsAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestAPIClient_TimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewAPIClient(srv.URL, 50*time.Millisecond, zap.NewNop())
	err := client.Do(context.Background(), session, http.MethodGet, "/cart", nil, nil)

	appErr := models.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, models.KindNetwork, appErr.Kind)
	assert.Equal(t, models.MsgNetwork, appErr.Message)
}

func TestAPIClient_UnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewAPIClient(url, time.Second, zap.NewNop())
	err := client.Do(context.Background(), session, http.MethodGet, "/cart", nil, nil)

	assert.Equal(t, models.KindNetwork, models.KindOf(err))
}

func TestAPIClient_UndecodableBodyIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL, time.Second, zap.NewNop())
	err := client.Do(context.Background(), session, http.MethodGet, "/cart", nil, &models.RemoteCart{})

	appErr := models.AsAppError(err)
	assert.Equal(t, models.KindUnknown, appErr.Kind)
	assert.Equal(t, http.StatusOK, appErr.Status)
}
