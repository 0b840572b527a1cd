package billing

import (
	"strconv"
	"strings"

	"copier-backend/internal/models"
	"copier-backend/internal/timeutil"
)

// Meter block labels as they appear on rendered invoices
const (
	BlockMono  = "Meter - Mono"
	BlockColor = "Meter - Color"
	BlockTotal = "Total Count"
)

// MeterBlock is one usage line of an asset bill
type MeterBlock struct {
	Label    string  `json:"label"`
	Begin    int     `json:"begin"`
	End      int     `json:"end"`
	Covered  int     `json:"covered"`
	Billable int     `json:"billable"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`

	BeginFmt  string `json:"begin_fmt"`
	EndFmt    string `json:"end_fmt"`
	AmountFmt string `json:"amount_fmt"`
}

// AssetBill is the computed bill of a single asset on an invoice
type AssetBill struct {
	AssetID        int          `json:"asset_id"`
	AssetNumber    string       `json:"asset_number"`
	Model          string       `json:"model"`
	ContractType   string       `json:"contract_type"`
	Blocks         []MeterBlock `json:"blocks"`
	ContractAmount float64      `json:"contract_amount"`
	RentalMonths   int          `json:"rental_months"`
	RentalCharge   float64      `json:"rental_charge"`
	BaseAdj        float64      `json:"base_adj"`
	TotalOverage   float64      `json:"total_overage"`
	SubTotal       float64      `json:"sub_total"`

	SubTotalFmt string `json:"sub_total_fmt"`
}

// InvoiceTotals are the overall figures of an invoice across its assets
type InvoiceTotals struct {
	SubTotal    float64 `json:"sub_total"`
	BaseAdj     float64 `json:"base_adj"`
	Hst         float64 `json:"hst"`
	FinalAmount float64 `json:"final_amount"`

	SubTotalFmt    string `json:"sub_total_fmt"`
	HstFmt         string `json:"hst_fmt"`
	FinalAmountFmt string `json:"final_amount_fmt"`
	BalanceDue     string `json:"balance_due"`
}

// AddTrailingZeros renders an amount with exactly two decimals. Extra
// digits are cut, never rounded, so the rendered figure can only err in
// the customer's favor.
func AddTrailingZeros(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', -1, 64)
	whole, frac, found := strings.Cut(s, ".")
	if !found {
		return whole + ".00"
	}
	if len(frac) >= 2 {
		return whole + "." + frac[:2]
	}
	return whole + "." + frac + strings.Repeat("0", 2-len(frac))
}

// AddCommas inserts thousands separators into the integer part of a
// number already rendered as a string.
func AddCommas(s string) string {
	whole, frac, found := strings.Cut(s, ".")
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	if found {
		out += "." + frac
	}
	return out
}

// FormatAmount renders a money figure with two truncated decimals and
// thousands separators.
func FormatAmount(amount float64) string {
	return AddCommas(AddTrailingZeros(amount))
}

// FormatCount renders a meter counter with thousands separators
func FormatCount(n int) string {
	return AddCommas(strconv.Itoa(n))
}

// ComputeAssetBill builds the bill of one asset from its billing window.
// prev is the last invoiced reading, nil when the asset has never been
// billed, in which case the contract baselines are the window start.
func ComputeAssetBill(asset *models.BillingAsset, prev, cur *models.MeterReading) *AssetBill {
	monoBegin := asset.MonoBegin
	colorBegin := asset.ColorBegin
	if prev != nil {
		monoBegin = prev.Mono
		colorBegin = prev.Color
	}

	bill := &AssetBill{
		AssetID:        asset.ID,
		AssetNumber:    asset.AssetNumber,
		Model:          asset.Model,
		ContractType:   asset.ContractTypeName,
		ContractAmount: asset.ContractAmount,
		RentalMonths:   timeutil.MonthsFor(asset.BillingSchedule),
		BaseAdj:        asset.BaseAdj,
	}

	if asset.BillingMode == models.BillingModeFlat {
		rate := asset.MonoPrice
		if asset.ColorPrice > rate {
			rate = asset.ColorPrice
		}
		covered := asset.CoveredMono + asset.CoveredColor
		begin := monoBegin + colorBegin
		end := cur.Mono + cur.Color
		diff := end - begin

		billable := 0
		if asset.CoveredMono <= diff {
			billable = diff - covered
		}
		if billable < 0 {
			billable = 0
		}
		bill.Blocks = append(bill.Blocks, newBlock(BlockTotal, begin, end, covered, billable, rate))
	} else {
		monoDiff := cur.Mono - monoBegin
		colorDiff := cur.Color - colorBegin

		billableMono := 0
		if asset.CoveredMono <= monoDiff {
			billableMono = monoDiff - asset.CoveredMono
		}
		billableColor := 0
		if asset.CoveredColor <= colorDiff {
			billableColor = colorDiff - asset.CoveredColor
		}

		bill.Blocks = append(bill.Blocks,
			newBlock(BlockMono, monoBegin, cur.Mono, asset.CoveredMono, billableMono, asset.MonoPrice),
			newBlock(BlockColor, colorBegin, cur.Color, asset.CoveredColor, billableColor, asset.ColorPrice))
	}

	for _, b := range bill.Blocks {
		bill.TotalOverage += b.Amount
	}
	bill.RentalCharge = asset.RentalCharge * float64(bill.RentalMonths)
	bill.SubTotal = bill.ContractAmount + bill.RentalCharge + bill.TotalOverage
	bill.SubTotalFmt = FormatAmount(bill.SubTotal)
	return bill
}

func newBlock(label string, begin, end, covered, billable int, rate float64) MeterBlock {
	return MeterBlock{
		Label:     label,
		Begin:     begin,
		End:       end,
		Covered:   covered,
		Billable:  billable,
		Rate:      rate,
		Amount:    float64(billable) * rate,
		BeginFmt:  FormatCount(begin),
		EndFmt:    FormatCount(end),
		AmountFmt: FormatAmount(float64(billable) * rate),
	}
}

// ComputeOverallTotal folds the asset bills of an invoice into its overall
// figures. The base adjustment is applied after tax is computed on the
// subtotal, matching how the bills have always been issued.
func ComputeOverallTotal(bills []*AssetBill, taxRate float64, paid bool) *InvoiceTotals {
	t := &InvoiceTotals{}
	for _, b := range bills {
		t.SubTotal += b.SubTotal
		t.BaseAdj += b.BaseAdj
	}
	t.Hst = t.SubTotal * taxRate / 100
	t.FinalAmount = t.SubTotal - t.BaseAdj + t.Hst

	t.SubTotalFmt = FormatAmount(t.SubTotal)
	t.HstFmt = FormatAmount(t.Hst)
	t.FinalAmountFmt = FormatAmount(t.FinalAmount)

	due := t.FinalAmount
	if paid {
		due = 0
	}
	t.BalanceDue = FormatAmount(due)
	return t
}
