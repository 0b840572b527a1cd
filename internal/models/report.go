package models

import "time"

// Report types
const (
	ReportTypeBill    = "bill"
	ReportTypeMpsSync = "mps_sync"
)

// AuditReport is one immutable row per (asset, invoice) pair capturing the
// counters an invoice was billed on, independent of later invoice mutation.
type AuditReport struct {
	ID         int        `json:"id"`
	AssetID    int        `json:"asset_id"`
	CompanyID  int        `json:"company_id"`
	MonoBegin  int        `json:"mono_begin"`
	MonoEnd    int        `json:"mono_end"`
	ColorBegin int        `json:"color_begin"`
	ColorEnd   int        `json:"color_end"`
	DueDate    *time.Time `json:"due_date"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BillingRunReport is one record per billing run with the asset buckets
type BillingRunReport struct {
	ID           int       `json:"id"`
	Type         string    `json:"type"`
	Success      []int     `json:"success"`
	Failed       []int     `json:"failed"`
	MissingInMps []int     `json:"missing_in_mps"`
	Total        int       `json:"total"`
	CreatedAt    time.Time `json:"created_at"`
}
