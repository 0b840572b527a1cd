package models

import "time"

// Billing modes for a contract type. Resolved once when the contract type
// is entered instead of re-parsing the display name on every calculation.
const (
	BillingModeItemized = "itemized"
	BillingModeFlat     = "flat"
)

// ContractType drives how an asset is billed
type ContractType struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	BillingMode string    `json:"billing_mode"`
	Billable    bool      `json:"billable"`
	CreatedAt   time.Time `json:"created_at"`
}
