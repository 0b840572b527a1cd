package models

import "time"

// Asset is a leased copier/printer tracked for billing
type Asset struct {
	ID             int        `json:"id"`
	AssetNumber    string     `json:"asset_number"`
	Model          string     `json:"model"`
	SerialNo       string     `json:"serial_no"`
	CustomerID     int        `json:"customer_id"`
	ContractTypeID int        `json:"contract_type_id"`
	MonoBegin      int        `json:"mono_begin"`
	ColorBegin     int        `json:"color_begin"`
	CoveredMono    int        `json:"covered_mono"`
	CoveredColor   int        `json:"covered_color"`
	MonoPrice      float64    `json:"mono_price"`
	ColorPrice     float64    `json:"color_price"`
	ContractAmount float64    `json:"contract_amount"`
	BaseAdj        float64    `json:"base_adj"`
	RentalCharge   float64    `json:"rental_charge"`
	IsActive       bool       `json:"is_active"`
	DeletedAt      *time.Time `json:"deleted_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// BillingAsset is an asset joined with the customer, company and contract
// type fields the billing engine needs.
type BillingAsset struct {
	Asset
	CustomerUsername  string `json:"customer_username"`
	CustomerName      string `json:"customer_name"`
	BillingSchedule   string `json:"billing_schedule"`
	CompanyID         int    `json:"company_id"`
	CompanyName       string `json:"company_name"`
	QuickBooksTracked bool   `json:"quickbooks_tracked"`
	ContractTypeName  string `json:"contract_type_name"`
	BillingMode       string `json:"billing_mode"`
	ContractBillable  bool   `json:"contract_billable"`
}
