package quickbooks

// tokenResponse is the OAuth token endpoint reply
type tokenResponse struct {
	AccessToken            string `json:"access_token"`
	RefreshToken           string `json:"refresh_token"`
	ExpiresIn              int64  `json:"expires_in"`
	XRefreshTokenExpiresIn int64  `json:"x_refresh_token_expires_in"`
	TokenType              string `json:"token_type"`
}

// Ref is a value/name reference pair used throughout the invoice API
type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// SalesItemLineDetail carries the quantity and unit price of a line
type SalesItemLineDetail struct {
	ItemRef   Ref     `json:"ItemRef"`
	Qty       float64 `json:"Qty"`
	UnitPrice float64 `json:"UnitPrice"`
}

// Line is one sales item line on an invoice
type Line struct {
	Amount              float64             `json:"Amount"`
	Description         string              `json:"Description"`
	DetailType          string              `json:"DetailType"`
	SalesItemLineDetail SalesItemLineDetail `json:"SalesItemLineDetail"`
}

// CustomField mirrors the invoice-level custom fields
type CustomField struct {
	DefinitionID string `json:"DefinitionId"`
	Name         string `json:"Name"`
	Type         string `json:"Type"`
	StringValue  string `json:"StringValue"`
}

// EmailAddress wraps the billing email on the payload
type EmailAddress struct {
	Address string `json:"Address"`
}

// Address is the billing or shipping address block
type Address struct {
	Line1                  string `json:"Line1,omitempty"`
	City                   string `json:"City,omitempty"`
	CountrySubDivisionCode string `json:"CountrySubDivisionCode,omitempty"`
	PostalCode             string `json:"PostalCode,omitempty"`
}

// InvoicePayload is the create-invoice request body
type InvoicePayload struct {
	DocNumber             string        `json:"DocNumber"`
	Line                  []Line        `json:"Line"`
	CustomerRef           Ref           `json:"CustomerRef"`
	CurrencyRef           Ref           `json:"CurrencyRef"`
	DueDate               string        `json:"DueDate"`
	BillAddr              *Address      `json:"BillAddr,omitempty"`
	ShipAddr              *Address      `json:"ShipAddr,omitempty"`
	CustomField           []CustomField `json:"CustomField,omitempty"`
	BillEmail             *EmailAddress `json:"BillEmail,omitempty"`
	AllowOnlineACHPayment bool          `json:"AllowOnlineACHPayment"`
}

// Invoice is the subset of the remote invoice entity the backend reads
type Invoice struct {
	ID        string  `json:"Id"`
	DocNumber string  `json:"DocNumber"`
	TotalAmt  float64 `json:"TotalAmt"`
	Balance   float64 `json:"Balance"`
}

type invoiceEnvelope struct {
	Invoice Invoice `json:"Invoice"`
}
