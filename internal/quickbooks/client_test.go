package quickbooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"copier-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTokenStore struct {
	updated *models.QuickBooksToken
}

func (m *memoryTokenStore) UpdateTokens(ctx context.Context, t *models.QuickBooksToken) error {
	copied := *t
	m.updated = &copied
	return nil
}

func validToken() *models.QuickBooksToken {
	return &models.QuickBooksToken{
		ID:               1,
		CompanyID:        1,
		RealmID:          "9130347",
		ClientID:         "client-id",
		ClientSecret:     "client-secret",
		AccessToken:      "live-access",
		RefreshToken:     "live-refresh",
		ExpiresIn:        3600,
		RefreshExpiresIn: 8726400,
		UpdatedAt:        time.Now(),
	}
}

func TestAccessTokenStillValid(t *testing.T) {
	client := NewClient("http://unused", "http://unused", &memoryTokenStore{})

	access, err := client.AccessToken(context.Background(), validToken())

	require.NoError(t, err)
	assert.Equal(t, "live-access", access)
}

func TestAccessTokenRefreshesExpired(t *testing.T) {
	var gotGrant, gotRefresh string
	var gotUser, gotPass string
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrant = r.FormValue("grant_type")
		gotRefresh = r.FormValue("refresh_token")
		gotUser, gotPass, _ = r.BasicAuth()
		json.NewEncoder(w).Encode(tokenResponse{
			AccessToken:            "fresh-access",
			RefreshToken:           "fresh-refresh",
			ExpiresIn:              3600,
			XRefreshTokenExpiresIn: 8726400,
			TokenType:              "bearer",
		})
	}))
	defer tokenSrv.Close()

	store := &memoryTokenStore{}
	client := NewClient("http://unused", tokenSrv.URL, store)

	token := validToken()
	token.UpdatedAt = time.Now().Add(-2 * time.Hour)

	access, err := client.AccessToken(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "fresh-access", access)
	assert.Equal(t, "refresh_token", gotGrant)
	assert.Equal(t, "live-refresh", gotRefresh)
	assert.Equal(t, "client-id", gotUser)
	assert.Equal(t, "client-secret", gotPass)

	require.NotNil(t, store.updated)
	assert.Equal(t, "fresh-access", store.updated.AccessToken)
	assert.Equal(t, "fresh-refresh", store.updated.RefreshToken)
}

func TestAccessTokenRefreshExpired(t *testing.T) {
	client := NewClient("http://unused", "http://unused", &memoryTokenStore{})

	token := validToken()
	token.UpdatedAt = time.Now().Add(-200 * 24 * time.Hour)

	_, err := client.AccessToken(context.Background(), token)

	require.ErrorIs(t, err, ErrReauthRequired)
}

func TestCreateInvoice(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload InvoicePayload
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(invoiceEnvelope{Invoice: Invoice{
			ID:        "4512",
			DocNumber: gotPayload.DocNumber,
			TotalAmt:  221,
			Balance:   221,
		}})
	}))
	defer apiSrv.Close()

	client := NewClient(apiSrv.URL, "http://unused", &memoryTokenStore{})
	payload := &InvoicePayload{DocNumber: "INV9-4321"}

	created, err := client.CreateInvoice(context.Background(), validToken(), payload)

	require.NoError(t, err)
	assert.Equal(t, "4512", created.ID)
	assert.Equal(t, "/9130347/invoice", gotPath)
	assert.Equal(t, "Bearer live-access", gotAuth)
	assert.Equal(t, "INV9-4321", gotPayload.DocNumber)
}

func TestCreateInvoiceRemoteError(t *testing.T) {
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"Fault":{}}`, http.StatusBadRequest)
	}))
	defer apiSrv.Close()

	client := NewClient(apiSrv.URL, "http://unused", &memoryTokenStore{})

	_, err := client.CreateInvoice(context.Background(), validToken(), &InvoicePayload{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestGetInvoice(t *testing.T) {
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/9130347/invoice/4512", r.URL.Path)
		json.NewEncoder(w).Encode(invoiceEnvelope{Invoice: Invoice{
			ID: "4512", TotalAmt: 221, Balance: 0,
		}})
	}))
	defer apiSrv.Close()

	client := NewClient(apiSrv.URL, "http://unused", &memoryTokenStore{})

	remote, err := client.GetInvoice(context.Background(), validToken(), 4512)

	require.NoError(t, err)
	assert.Zero(t, remote.Balance)
}
