package mps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"copier-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mpsConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.MPS.BaseURL = baseURL
	cfg.MPS.GrantType = "password"
	cfg.MPS.ClientID = "dealer-client"
	cfg.MPS.ClientSecret = "dealer-secret"
	cfg.MPS.Username = "dealer-user"
	cfg.MPS.Password = "dealer-pass"
	cfg.MPS.Scope = "counters"
	cfg.MPS.DealerCode = "DLR-42"
	return cfg
}

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.FormValue("grant_type"))
		assert.Equal(t, "dealer-client", r.FormValue("client_id"))
		assert.Equal(t, "dealer-user", r.FormValue("username"))
		assert.Equal(t, "counters", r.FormValue("scope"))
		json.NewEncoder(w).Encode(Token{AccessToken: "fleet-token", TokenType: "bearer", ExpiresIn: 3600})
	}))
	defer srv.Close()

	client := NewClient(mpsConfig(srv.URL))

	token, err := client.Register(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "fleet-token", token.AccessToken)
	assert.EqualValues(t, 3600, token.ExpiresIn)
}

func TestRegisterRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(mpsConfig(srv.URL))

	_, err := client.Register(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestListReadings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Counter/List", r.URL.Path)
		assert.Equal(t, "Bearer fleet-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "DLR-42", body["DealerCode"])

		json.NewEncoder(w).Encode(counterListResponse{Result: []AssetCounters{
			{AssetNumber: "CP-1001", Counters: []Counter{{Mono: 2100, Color: 830}, {Mono: 2000, Color: 800}}},
			{AssetNumber: "CP-2002", Counters: []Counter{{Mono: 501, Color: 0}}},
		}})
	}))
	defer srv.Close()

	client := NewClient(mpsConfig(srv.URL))

	fleet, err := client.ListReadings(context.Background(), "fleet-token")

	require.NoError(t, err)
	require.Len(t, fleet, 2)
	assert.Equal(t, "CP-1001", fleet[0].AssetNumber)
	assert.Equal(t, 2100, fleet[0].Counters[0].Mono)
	assert.Equal(t, 830, fleet[0].Counters[0].Color)
}
