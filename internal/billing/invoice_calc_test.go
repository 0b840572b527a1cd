package billing

import (
	"testing"

	"copier-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTrailingZeros(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"whole number", 100, "100.00"},
		{"one decimal", 99.9, "99.90"},
		{"two decimals", 12.34, "12.34"},
		{"extra digits cut not rounded", 113.00565, "113.00"},
		{"would round up", 5.999, "5.99"},
		{"zero", 0, "0.00"},
		{"negative", -42.5, "-42.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddTrailingZeros(tt.amount))
		})
	}
}

func TestAddCommas(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123", "123"},
		{"1234", "1,234"},
		{"1234567", "1,234,567"},
		{"1234567.89", "1,234,567.89"},
		{"-98765", "-98,765"},
		{"0", "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddCommas(tt.in))
	}
}

func itemizedAsset() *models.BillingAsset {
	return &models.BillingAsset{
		Asset: models.Asset{
			ID:             7,
			AssetNumber:    "CP-1001",
			Model:          "WorkCentre 7845",
			MonoBegin:      1000,
			ColorBegin:     500,
			CoveredMono:    200,
			CoveredColor:   100,
			MonoPrice:      0.02,
			ColorPrice:     0.1,
			ContractAmount: 50,
			BaseAdj:        5,
			RentalCharge:   10,
		},
		BillingSchedule:  models.ScheduleQuarterly,
		ContractTypeName: "Cost Per Copy",
		BillingMode:      models.BillingModeItemized,
		ContractBillable: true,
	}
}

func TestComputeAssetBillItemized(t *testing.T) {
	asset := itemizedAsset()
	cur := &models.MeterReading{Mono: 2000, Color: 800}

	bill := ComputeAssetBill(asset, nil, cur)

	require.Len(t, bill.Blocks, 2)
	mono, color := bill.Blocks[0], bill.Blocks[1]

	assert.Equal(t, BlockMono, mono.Label)
	assert.Equal(t, 1000, mono.Begin)
	assert.Equal(t, 2000, mono.End)
	assert.Equal(t, 800, mono.Billable)
	assert.InDelta(t, 16.0, mono.Amount, 1e-9)

	assert.Equal(t, BlockColor, color.Label)
	assert.Equal(t, 200, color.Billable)
	assert.InDelta(t, 20.0, color.Amount, 1e-9)

	assert.InDelta(t, 36.0, bill.TotalOverage, 1e-9)
	assert.Equal(t, 3, bill.RentalMonths)
	assert.InDelta(t, 30.0, bill.RentalCharge, 1e-9)
	assert.InDelta(t, 116.0, bill.SubTotal, 1e-9)
	assert.Equal(t, "116.00", bill.SubTotalFmt)
}

func TestComputeAssetBillUsesPriorReadingAsBaseline(t *testing.T) {
	asset := itemizedAsset()
	prev := &models.MeterReading{Mono: 1500, Color: 600}
	cur := &models.MeterReading{Mono: 2000, Color: 800}

	bill := ComputeAssetBill(asset, prev, cur)

	assert.Equal(t, 1500, bill.Blocks[0].Begin)
	assert.Equal(t, 300, bill.Blocks[0].Billable)
	assert.Equal(t, 600, bill.Blocks[1].Begin)
	assert.Equal(t, 100, bill.Blocks[1].Billable)
}

func TestComputeAssetBillUnderCoveredVolume(t *testing.T) {
	asset := itemizedAsset()
	cur := &models.MeterReading{Mono: 1150, Color: 550}

	bill := ComputeAssetBill(asset, nil, cur)

	assert.Equal(t, 0, bill.Blocks[0].Billable)
	assert.Equal(t, 0, bill.Blocks[1].Billable)
	assert.InDelta(t, 0.0, bill.TotalOverage, 1e-9)
}

func TestComputeAssetBillFlat(t *testing.T) {
	asset := itemizedAsset()
	asset.ContractTypeName = "Flat Monthly"
	asset.BillingMode = models.BillingModeFlat
	asset.CoveredMono = 100
	asset.CoveredColor = 50
	asset.MonoPrice = 0.01
	asset.ColorPrice = 0.05
	cur := &models.MeterReading{Mono: 1600, Color: 700}

	bill := ComputeAssetBill(asset, nil, cur)

	require.Len(t, bill.Blocks, 1)
	block := bill.Blocks[0]
	assert.Equal(t, BlockTotal, block.Label)
	assert.Equal(t, 1500, block.Begin)
	assert.Equal(t, 2300, block.End)
	assert.Equal(t, 150, block.Covered)
	assert.Equal(t, 650, block.Billable)
	assert.InDelta(t, 0.05, block.Rate, 1e-9)
	assert.InDelta(t, 32.5, block.Amount, 1e-9)
}

func TestComputeAssetBillFlatClampsNegative(t *testing.T) {
	asset := itemizedAsset()
	asset.BillingMode = models.BillingModeFlat
	asset.CoveredMono = 100
	asset.CoveredColor = 50
	// combined delta 120 clears the gate but is below the covered volume
	cur := &models.MeterReading{Mono: 1100, Color: 520}

	bill := ComputeAssetBill(asset, nil, cur)

	assert.Equal(t, 0, bill.Blocks[0].Billable)
}

func TestComputeOverallTotal(t *testing.T) {
	bills := []*AssetBill{
		{SubTotal: 116, BaseAdj: 5},
		{SubTotal: 84, BaseAdj: 0},
	}

	totals := ComputeOverallTotal(bills, 13, false)

	assert.InDelta(t, 200.0, totals.SubTotal, 1e-9)
	assert.InDelta(t, 26.0, totals.Hst, 1e-9)
	// adjustment comes off after tax is computed on the subtotal
	assert.InDelta(t, 221.0, totals.FinalAmount, 1e-9)
	assert.Equal(t, "221.00", totals.BalanceDue)
}

func TestComputeOverallTotalTruncatesNotRounds(t *testing.T) {
	bills := []*AssetBill{{SubTotal: 100.005}}

	totals := ComputeOverallTotal(bills, 13, false)

	// 113.00565 renders as 113.00, never 113.01
	assert.Equal(t, "113.00", totals.FinalAmountFmt)
	assert.Equal(t, "113.00", totals.BalanceDue)
}

func TestComputeOverallTotalPaidBalance(t *testing.T) {
	totals := ComputeOverallTotal([]*AssetBill{{SubTotal: 100}}, 13, true)

	assert.InDelta(t, 113.0, totals.FinalAmount, 1e-9)
	assert.Equal(t, "0.00", totals.BalanceDue)
}

func TestFormatAmountLargeFigure(t *testing.T) {
	assert.Equal(t, "1,234,567.89", FormatAmount(1234567.899))
}
