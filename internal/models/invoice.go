package models

import "time"

// Invoice statuses
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// ServiceInvoice groups one or more (asset, meter reading) pairs under one
// invoice number for a customer. A non-nil QuickBooksInvoiceID means the
// invoice has already been posted to the accounting system.
type ServiceInvoice struct {
	ID                  int           `json:"id"`
	InvoiceNo           string        `json:"invoice_no"`
	CustomerName        string        `json:"customer_name"`
	Status              string        `json:"status"`
	Discount            float64       `json:"discount"`
	DueDate             time.Time     `json:"due_date"`
	QuickBooksInvoiceID *int64        `json:"quickbooks_invoice_id"`
	Assets              []InvoiceLine `json:"assets"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// InvoiceLine ties an asset and the meter reading consumed for it
type InvoiceLine struct {
	ID        int `json:"id"`
	InvoiceID int `json:"invoice_id"`
	AssetID   int `json:"asset_id"`
	MeterID   int `json:"meter_id"`
}

// InvoiceListItem is the listing projection with customer/company context
type InvoiceListItem struct {
	ID                  int       `json:"id"`
	InvoiceNo           string    `json:"invoice_no"`
	Status              string    `json:"status"`
	DueDate             time.Time `json:"due_date"`
	QuickBooksInvoiceID *int64    `json:"quickbooks_invoice_id"`
	CustomerUsername    string    `json:"customer_username"`
	CustomerName        string    `json:"customer_name"`
	CompanyName         string    `json:"company_name"`
	CreatedAt           time.Time `json:"created_at"`
}
