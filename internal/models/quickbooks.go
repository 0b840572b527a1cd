package models

import "time"

// QuickBooksToken holds the OAuth credentials for one company realm.
// Expiry is computed from UpdatedAt plus the lifetime the token endpoint
// reported when the tokens were stored.
type QuickBooksToken struct {
	ID               int       `json:"id"`
	CompanyID        int       `json:"company_id"`
	RealmID          string    `json:"realm_id"`
	ClientID         string    `json:"client_id"`
	ClientSecret     string    `json:"-"`
	AccessToken      string    `json:"-"`
	RefreshToken     string    `json:"-"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshExpiresIn int64     `json:"refresh_expires_in"`
	UpdatedAt        time.Time `json:"updated_at"`
}
