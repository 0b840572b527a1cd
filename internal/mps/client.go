package mps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"copier-backend/internal/config"

	"github.com/hashicorp/go-retryablehttp"
)

// Token is the password-grant response from the fleet platform
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Counter is one counter snapshot reported for an asset
type Counter struct {
	Mono  int `json:"Mono"`
	Color int `json:"Color"`
}

// AssetCounters groups the reported counters of one device. The platform
// returns counters newest first.
type AssetCounters struct {
	AssetNumber string    `json:"AssetNumber"`
	Counters    []Counter `json:"Counters"`
}

type counterListResponse struct {
	Result []AssetCounters `json:"Result"`
}

// Client talks to the managed print services fleet platform
type Client struct {
	baseURL string
	cfg     config.Config
	http    *retryablehttp.Client
}

func NewClient(cfg *config.Config) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL: strings.TrimRight(cfg.MPS.BaseURL, "/"),
		cfg:     *cfg,
		http:    rc,
	}
}

// Register exchanges the configured credentials for an access token
func (c *Client) Register(ctx context.Context) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", c.cfg.MPS.GrantType)
	form.Set("client_id", c.cfg.MPS.ClientID)
	form.Set("client_secret", c.cfg.MPS.ClientSecret)
	form.Set("username", c.cfg.MPS.Username)
	form.Set("password", c.cfg.MPS.Password)
	if c.cfg.MPS.Scope != "" {
		form.Set("scope", c.cfg.MPS.Scope)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mps register: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mps register failed: status %d: %s", resp.StatusCode, raw)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("mps register decode: %w", err)
	}
	log.Printf("[MPS] Registered, token valid for %ds", token.ExpiresIn)
	return &token, nil
}

// ListReadings fetches the current counters for the dealer's whole fleet
func (c *Client) ListReadings(ctx context.Context, accessToken string) ([]AssetCounters, error) {
	body, err := json.Marshal(map[string]string{
		"DealerCode": c.cfg.MPS.DealerCode,
	})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/Counter/List", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mps counter list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mps counter list failed: status %d: %s", resp.StatusCode, raw)
	}

	var cl counterListResponse
	if err := json.NewDecoder(resp.Body).Decode(&cl); err != nil {
		return nil, fmt.Errorf("mps counter list decode: %w", err)
	}
	return cl.Result, nil
}
