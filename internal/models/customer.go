package models

import "time"

// Billing schedules control how often a customer is billed and how rental
// charges scale.
const (
	ScheduleMonthly    = "monthly"
	ScheduleQuarterly  = "quarterly"
	ScheduleHalfYearly = "half yearly"
	ScheduleAnnually   = "annually"
)

// Customer represents a leasing customer
type Customer struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	SecondaryEmail  string    `json:"secondary_email"`
	PhoneNumber     string    `json:"phone_number"`
	BillingAddress  string    `json:"billing_address"`
	ShippingAddress string    `json:"shipping_address"`
	BillingSchedule string    `json:"billing_schedule"`
	IsActive        bool      `json:"is_active"`
	CompanyID       *int      `json:"company_id"`
	QuickBooksID    *int64    `json:"quickbooks_id"`
	MpsCustomerCode string    `json:"mps_customer_code"`
	CreatedAt       time.Time `json:"created_at"`
}
