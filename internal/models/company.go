package models

import "time"

// Company is one of the operating companies customers belong to.
// QuickBooksTracked marks the company whose invoices are posted to the
// external accounting system.
type Company struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	City              string    `json:"city"`
	PostCode          string    `json:"post_code"`
	QuickBooksTracked bool      `json:"quickbooks_tracked"`
	CreatedAt         time.Time `json:"created_at"`
}
