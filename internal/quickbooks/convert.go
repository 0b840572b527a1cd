package quickbooks

import (
	"fmt"
	"time"

	"copier-backend/internal/models"
)

// LineInput is one billable line computed locally, before conversion to the
// remote invoice format.
type LineInput struct {
	Description string
	Qty         float64
	Rate        float64
	Amount      float64
}

// BuildInvoicePayload converts locally computed bill lines into the remote
// invoice body. Lines with a non-positive quantity or amount are skipped so
// zero-usage meter blocks never reach the accounting system.
func BuildInvoicePayload(docNumber string, customer *models.Customer, companyCity,
	companyPostCode string, dueDate time.Time, lines []LineInput) *InvoicePayload {
	payload := &InvoicePayload{
		DocNumber:   docNumber,
		CustomerRef: Ref{Value: fmt.Sprintf("%d", derefQBID(customer)), Name: customer.Name},
		CurrencyRef: Ref{Value: "CAD", Name: "Canadian Dollar"},
		DueDate:     dueDate.Format("2006-01-02"),
		CustomField: []CustomField{
			{DefinitionID: "1", Name: "Email", Type: "StringType", StringValue: customer.Email},
			{DefinitionID: "2", Name: "Invoice", Type: "StringType", StringValue: docNumber},
			{DefinitionID: "3", Name: "Billing Schedule", Type: "StringType", StringValue: customer.BillingSchedule},
		},
	}
	if customer.SecondaryEmail != "" {
		payload.CustomField = append(payload.CustomField, CustomField{
			DefinitionID: "4", Name: "Secondary Email", Type: "StringType",
			StringValue: customer.SecondaryEmail,
		})
	}
	if customer.Email != "" {
		payload.BillEmail = &EmailAddress{Address: customer.Email}
	}
	if customer.BillingAddress != "" {
		payload.BillAddr = &Address{
			Line1:                  customer.BillingAddress,
			City:                   companyCity,
			CountrySubDivisionCode: "CA",
			PostalCode:             companyPostCode,
		}
	}
	if customer.ShippingAddress != "" {
		payload.ShipAddr = &Address{
			Line1:                  customer.ShippingAddress,
			City:                   companyCity,
			CountrySubDivisionCode: "CA",
			PostalCode:             companyPostCode,
		}
	}

	for _, in := range lines {
		if in.Qty <= 0 || in.Amount <= 0 {
			continue
		}
		payload.Line = append(payload.Line, Line{
			Amount:      in.Amount,
			Description: in.Description,
			DetailType:  "SalesItemLineDetail",
			SalesItemLineDetail: SalesItemLineDetail{
				ItemRef:   Ref{Value: "1", Name: "Services"},
				Qty:       in.Qty,
				UnitPrice: in.Rate,
			},
		})
	}
	return payload
}

func derefQBID(customer *models.Customer) int64 {
	if customer.QuickBooksID == nil {
		return 0
	}
	return *customer.QuickBooksID
}
