package models

import "time"

// Setting is the process-wide singleton row. ActiveBilling together with
// BillsGeneratedAt forms the billing-run gate: only one run may be active,
// and a new run is rejected within the cooldown window of the last one.
type Setting struct {
	ID               int        `json:"id"`
	ActiveBilling    bool       `json:"active_billing"`
	BillsGeneratedAt *time.Time `json:"bills_generated_at"`
	BillsGeneratedBy *int       `json:"bills_generated_by"`
	NotifyOnItem     int        `json:"notify_on_item"`
	HstTax           float64    `json:"hst_tax"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
