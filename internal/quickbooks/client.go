package quickbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"copier-backend/internal/models"
)

// ErrReauthRequired means the refresh token itself has expired and new
// credentials must be obtained through the interactive OAuth flow.
var ErrReauthRequired = errors.New("quickbooks: refresh token expired, reauthorization required")

// TokenStore persists refreshed OAuth material
type TokenStore interface {
	UpdateTokens(ctx context.Context, t *models.QuickBooksToken) error
}

type Client struct {
	apiBaseURL string
	tokenURL   string
	http       *http.Client
	tokens     TokenStore
}

func NewClient(apiBaseURL, tokenURL string, tokens TokenStore) *Client {
	return &Client{
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		tokenURL:   tokenURL,
		http:       &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
}

// AccessToken returns a usable access token for the realm, refreshing it
// through the token endpoint when the stored one has expired.
func (c *Client) AccessToken(ctx context.Context, token *models.QuickBooksToken) (string, error) {
	now := time.Now().Unix()
	if now < token.UpdatedAt.Unix()+token.ExpiresIn {
		return token.AccessToken, nil
	}
	if now >= token.UpdatedAt.Unix()+token.RefreshExpiresIn {
		return "", ErrReauthRequired
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", token.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(token.ClientID, token.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token refresh failed: status %d: %s", resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("token refresh decode: %w", err)
	}

	token.AccessToken = tr.AccessToken
	token.RefreshToken = tr.RefreshToken
	token.ExpiresIn = tr.ExpiresIn
	token.RefreshExpiresIn = tr.XRefreshTokenExpiresIn
	if err := c.tokens.UpdateTokens(ctx, token); err != nil {
		return "", fmt.Errorf("persist refreshed tokens: %w", err)
	}
	log.Printf("[QuickBooks] Refreshed access token for realm %s", token.RealmID)

	return token.AccessToken, nil
}

// CreateInvoice posts a new invoice to the realm and returns the created
// remote entity.
func (c *Client) CreateInvoice(ctx context.Context, token *models.QuickBooksToken, payload *InvoicePayload) (*Invoice, error) {
	access, err := c.AccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/invoice?minorversion=65", c.apiBaseURL, token.RealmID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create invoice failed: status %d: %s", resp.StatusCode, raw)
	}

	var env invoiceEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("create invoice decode: %w", err)
	}
	return &env.Invoice, nil
}

// GetInvoice fetches a remote invoice by its id
func (c *Client) GetInvoice(ctx context.Context, token *models.QuickBooksToken, invoiceID int64) (*Invoice, error) {
	access, err := c.AccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/invoice/%d?minorversion=65", c.apiBaseURL, token.RealmID, invoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get invoice failed: status %d: %s", resp.StatusCode, raw)
	}

	var env invoiceEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("get invoice decode: %w", err)
	}
	return &env.Invoice, nil
}
