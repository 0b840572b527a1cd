package quickbooks

import (
	"testing"
	"time"

	"copier-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadCustomer() *models.Customer {
	qbID := int64(88)
	return &models.Customer{
		ID:              1,
		Name:            "Acme Corp",
		Username:        "acme",
		Email:           "billing@acme.test",
		SecondaryEmail:  "ap@acme.test",
		BillingAddress:  "12 King St W",
		ShippingAddress: "40 Bay St",
		BillingSchedule: models.ScheduleQuarterly,
		QuickBooksID:    &qbID,
	}
}

func TestBuildInvoicePayload(t *testing.T) {
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	lines := []LineInput{
		{Description: "CP-1001 Meter - Mono (1,000 - 2,000)", Qty: 1000, Rate: 0.02, Amount: 16},
		{Description: "CP-1001 Rental Charge (3 month(s))", Qty: 1, Rate: 30, Amount: 30},
	}

	payload := BuildInvoicePayload("INV9-4321", payloadCustomer(), "Toronto", "M5H 1A1", due, lines)

	assert.Equal(t, "INV9-4321", payload.DocNumber)
	assert.Equal(t, "88", payload.CustomerRef.Value)
	assert.Equal(t, "CAD", payload.CurrencyRef.Value)
	assert.Equal(t, "2026-10-01", payload.DueDate)
	require.NotNil(t, payload.BillEmail)
	assert.Equal(t, "billing@acme.test", payload.BillEmail.Address)

	require.NotNil(t, payload.BillAddr)
	assert.Equal(t, "12 King St W", payload.BillAddr.Line1)
	assert.Equal(t, "Toronto", payload.BillAddr.City)
	assert.Equal(t, "CA", payload.BillAddr.CountrySubDivisionCode)
	require.NotNil(t, payload.ShipAddr)
	assert.Equal(t, "40 Bay St", payload.ShipAddr.Line1)

	require.Len(t, payload.CustomField, 4)
	assert.Equal(t, "billing@acme.test", payload.CustomField[0].StringValue)
	assert.Equal(t, "INV9-4321", payload.CustomField[1].StringValue)
	assert.Equal(t, "quarterly", payload.CustomField[2].StringValue)
	assert.Equal(t, "ap@acme.test", payload.CustomField[3].StringValue)

	require.Len(t, payload.Line, 2)
	assert.Equal(t, "SalesItemLineDetail", payload.Line[0].DetailType)
	assert.InDelta(t, 1000.0, payload.Line[0].SalesItemLineDetail.Qty, 1e-9)
	assert.InDelta(t, 16.0, payload.Line[0].Amount, 1e-9)
}

func TestBuildInvoicePayloadSkipsNonPositiveLines(t *testing.T) {
	due := time.Now()
	lines := []LineInput{
		{Description: "zero usage", Qty: 0, Rate: 0.02, Amount: 0},
		{Description: "covered usage", Qty: 500, Rate: 0.02, Amount: 0},
		{Description: "negative delta", Qty: -10, Rate: 0.02, Amount: 5},
		{Description: "real charge", Qty: 100, Rate: 0.02, Amount: 2},
	}

	customer := payloadCustomer()
	customer.Email = ""
	customer.SecondaryEmail = ""
	customer.BillingAddress = ""
	customer.ShippingAddress = ""

	payload := BuildInvoicePayload("INV1-1000", customer, "", "", due, lines)

	require.Len(t, payload.Line, 1)
	assert.Equal(t, "real charge", payload.Line[0].Description)
	assert.Nil(t, payload.BillEmail)
	assert.Nil(t, payload.BillAddr)
	assert.Nil(t, payload.ShipAddr)
	require.Len(t, payload.CustomField, 3)
}
