package pdf

import (
	"bytes"
	"time"

	"copier-backend/internal/billing"

	"github.com/jung-kurt/gofpdf/v2"
)

// InvoiceDocument is everything the renderer needs to lay out one invoice
type InvoiceDocument struct {
	InvoiceNo      string
	CustomerName   string
	BillingAddress string
	CompanyName    string
	Status         string
	IssuedAt       time.Time
	DueDate        time.Time
	Bills          []*billing.AssetBill
	Totals         *billing.InvoiceTotals
}

// RenderInvoice produces the printable PDF for an invoice
func RenderInvoice(doc *InvoiceDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(120, 10, "SERVICE INVOICE")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 10, doc.InvoiceNo, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, doc.CompanyName)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(30, 6, "Bill To:")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(90, 6, doc.CustomerName)
	pdf.CellFormat(0, 6, "Issued: "+doc.IssuedAt.Format("Jan 2, 2006"), "", 1, "R", false, 0, "")
	if doc.BillingAddress != "" {
		pdf.Cell(30, 6, "")
		pdf.Cell(90, 6, doc.BillingAddress)
		pdf.CellFormat(0, 6, "Due: "+doc.DueDate.Format("Jan 2, 2006"), "", 1, "R", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "Due: "+doc.DueDate.Format("Jan 2, 2006"), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	for _, bill := range doc.Bills {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, bill.AssetNumber+"  "+bill.Model)
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(40, 6, "Meter", "1", 0, "L", true, 0, "")
		pdf.CellFormat(28, 6, "Begin", "1", 0, "R", true, 0, "")
		pdf.CellFormat(28, 6, "End", "1", 0, "R", true, 0, "")
		pdf.CellFormat(24, 6, "Covered", "1", 0, "R", true, 0, "")
		pdf.CellFormat(24, 6, "Billable", "1", 0, "R", true, 0, "")
		pdf.CellFormat(20, 6, "Rate", "1", 0, "R", true, 0, "")
		pdf.CellFormat(26, 6, "Amount", "1", 1, "R", true, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		for _, block := range bill.Blocks {
			pdf.CellFormat(40, 6, block.Label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(28, 6, block.BeginFmt, "1", 0, "R", false, 0, "")
			pdf.CellFormat(28, 6, block.EndFmt, "1", 0, "R", false, 0, "")
			pdf.CellFormat(24, 6, billing.FormatCount(block.Covered), "1", 0, "R", false, 0, "")
			pdf.CellFormat(24, 6, billing.FormatCount(block.Billable), "1", 0, "R", false, 0, "")
			pdf.CellFormat(20, 6, billing.AddTrailingZeros(block.Rate), "1", 0, "R", false, 0, "")
			pdf.CellFormat(26, 6, block.AmountFmt, "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Helvetica", "", 9)
		if bill.ContractAmount > 0 {
			pdf.CellFormat(164, 6, "Contract Amount", "", 0, "R", false, 0, "")
			pdf.CellFormat(26, 6, billing.FormatAmount(bill.ContractAmount), "", 1, "R", false, 0, "")
		}
		if bill.RentalCharge > 0 {
			pdf.CellFormat(164, 6, "Rental Charge", "", 0, "R", false, 0, "")
			pdf.CellFormat(26, 6, billing.FormatAmount(bill.RentalCharge), "", 1, "R", false, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(164, 6, "Asset Subtotal", "", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, bill.SubTotalFmt, "", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(164, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(26, 6, doc.Totals.SubTotalFmt, "", 1, "R", false, 0, "")
	if doc.Totals.BaseAdj != 0 {
		pdf.CellFormat(164, 6, "Base Adjustment", "", 0, "R", false, 0, "")
		pdf.CellFormat(26, 6, "-"+billing.FormatAmount(doc.Totals.BaseAdj), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(164, 6, "HST", "", 0, "R", false, 0, "")
	pdf.CellFormat(26, 6, doc.Totals.HstFmt, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(164, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(26, 8, doc.Totals.FinalAmountFmt, "", 1, "R", false, 0, "")
	pdf.CellFormat(164, 8, "Balance Due", "", 0, "R", false, 0, "")
	pdf.CellFormat(26, 8, doc.Totals.BalanceDue, "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
