package billing

import (
	"testing"
	"time"

	"copier-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minCharge = 3.0

func eligibleAsset() *models.BillingAsset {
	return &models.BillingAsset{
		Asset: models.Asset{
			ID:           11,
			AssetNumber:  "CP-2002",
			MonoBegin:    0,
			ColorBegin:   0,
			CoveredMono:  100,
			CoveredColor: 50,
			MonoPrice:    0.01,
			ColorPrice:   0.05,
			CreatedAt:    time.Now().AddDate(-1, 0, 0),
		},
		BillingSchedule:  models.ScheduleMonthly,
		BillingMode:      models.BillingModeItemized,
		ContractBillable: true,
	}
}

func reading(mono, color int, age time.Duration, now time.Time) *models.MeterReading {
	return &models.MeterReading{Mono: mono, Color: color, CreatedAt: now.Add(-age)}
}

func TestEvaluateAssetNonBillableContract(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	asset.ContractBillable = false

	outcome, draft := EvaluateAsset(asset, nil, reading(5000, 0, 0, now), minCharge, now)

	assert.Equal(t, OutcomeNonBillable, outcome)
	assert.Nil(t, draft)
}

func TestEvaluateAssetNoReading(t *testing.T) {
	now := time.Now()

	outcome, draft := EvaluateAsset(eligibleAsset(), nil, nil, minCharge, now)

	assert.Equal(t, OutcomeNoReading, outcome)
	assert.Nil(t, draft)
}

func TestEvaluateAssetNotDueYet(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	prev := reading(1000, 0, 10*24*time.Hour, now)
	prev.Invoiced = true
	cur := reading(5000, 0, time.Hour, now)

	outcome, _ := EvaluateAsset(asset, prev, cur, minCharge, now)

	assert.Equal(t, OutcomeNotDue, outcome)
}

func TestEvaluateAssetDueAfterSchedule(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	prev := reading(1000, 0, 45*24*time.Hour, now)
	cur := reading(5000, 0, time.Hour, now)

	outcome, draft := EvaluateAsset(asset, prev, cur, minCharge, now)

	assert.Equal(t, OutcomeBillable, outcome)
	require.NotNil(t, draft)
	assert.Same(t, cur, draft.Reading)
}

func TestEvaluateAssetQuarterlyScheduleGate(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	asset.BillingSchedule = models.ScheduleQuarterly
	// due under a monthly schedule but inside the quarterly window
	prev := reading(1000, 0, 45*24*time.Hour, now)
	cur := reading(5000, 0, time.Hour, now)

	outcome, _ := EvaluateAsset(asset, prev, cur, minCharge, now)

	assert.Equal(t, OutcomeNotDue, outcome)
}

func TestEvaluateAssetBelowMinimumCharge(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	// 300 mono pages over the covered 100 at $0.01 is a $2 charge
	cur := reading(300, 0, time.Hour, now)

	outcome, draft := EvaluateAsset(asset, nil, cur, minCharge, now)

	assert.Equal(t, OutcomeBelowMinimum, outcome)
	assert.Nil(t, draft)
}

func TestEvaluateAssetMeetsMinimumCharge(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	// 400 mono pages over the covered 100 at $0.01 is exactly $3
	cur := reading(400, 0, time.Hour, now)

	outcome, draft := EvaluateAsset(asset, nil, cur, minCharge, now)

	assert.Equal(t, OutcomeBillable, outcome)
	require.NotNil(t, draft)
	assert.InDelta(t, 3.0, draft.Charge, 1e-9)
}

func TestEvaluateAssetBaselineComesFromPriorReading(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	asset.CoveredMono = 0
	asset.CoveredColor = 0
	prev := reading(10000, 0, 45*24*time.Hour, now)
	cur := reading(10400, 0, time.Hour, now)

	outcome, draft := EvaluateAsset(asset, prev, cur, minCharge, now)

	// delta is 400 from the prior reading, not 10400 from the contract baseline
	assert.Equal(t, OutcomeBillable, outcome)
	require.NotNil(t, draft)
	assert.InDelta(t, 400*asset.MonoPrice, draft.Charge, 1e-9)
}

func TestEvaluateAssetColorGateUsesCoveredMono(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	asset.CoveredMono = 500
	asset.CoveredColor = 0
	// color delta of 400 is above its own covered volume but below the
	// mono threshold the gate compares against
	cur := reading(0, 400, time.Hour, now)

	outcome, _ := EvaluateAsset(asset, nil, cur, minCharge, now)

	assert.Equal(t, OutcomeBelowMinimum, outcome)

	asset.CoveredMono = 300
	outcome, draft := EvaluateAsset(asset, nil, cur, minCharge, now)

	assert.Equal(t, OutcomeBillable, outcome)
	require.NotNil(t, draft)
	assert.InDelta(t, 400*asset.ColorPrice, draft.Charge, 1e-9)
}

func TestEvaluateAssetFlatContractUsesItemizedGate(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	asset.BillingMode = models.BillingModeFlat
	// the gate applies the per-meter formula even to flat contracts; only
	// the calculator collapses them into one total-count block
	cur := reading(150, 100, time.Hour, now)

	outcome, draft := EvaluateAsset(asset, nil, cur, minCharge, now)

	assert.Equal(t, OutcomeBillable, outcome)
	require.NotNil(t, draft)
	// mono: (150-100)*0.01, color: (100-50)*0.05
	assert.InDelta(t, 0.5+2.5, draft.Charge, 1e-9)
}

func TestEvaluateAssetMinimumIncludesContractAmount(t *testing.T) {
	now := time.Now()
	// no overage at all: 50 mono pages stay under the covered volume
	cur := reading(50, 0, time.Hour, now)

	asset := eligibleAsset()
	asset.ContractAmount = 2
	outcome, _ := EvaluateAsset(asset, nil, cur, minCharge, now)
	assert.Equal(t, OutcomeBelowMinimum, outcome)

	asset = eligibleAsset()
	asset.ContractAmount = 3
	outcome, draft := EvaluateAsset(asset, nil, cur, minCharge, now)
	assert.Equal(t, OutcomeBillable, outcome)
	require.NotNil(t, draft)
	assert.Zero(t, draft.Charge)
}

func TestEvaluateAssetMinimumIncludesScaledRental(t *testing.T) {
	now := time.Now()
	cur := reading(50, 0, time.Hour, now)

	// $1/month rental clears the $3 minimum only once the quarterly
	// schedule scales it to three months
	asset := eligibleAsset()
	asset.RentalCharge = 1
	outcome, _ := EvaluateAsset(asset, nil, cur, minCharge, now)
	assert.Equal(t, OutcomeBelowMinimum, outcome)

	asset = eligibleAsset()
	asset.RentalCharge = 1
	asset.BillingSchedule = models.ScheduleQuarterly
	outcome, _ = EvaluateAsset(asset, nil, cur, minCharge, now)
	assert.Equal(t, OutcomeBillable, outcome)
}

func TestEvaluateAssetNewAssetWaitsForFirstWindow(t *testing.T) {
	now := time.Now()
	asset := eligibleAsset()
	// brand-new machine, never invoiced, plenty of usage already
	asset.CreatedAt = now.Add(-24 * time.Hour)
	cur := reading(5000, 0, time.Hour, now)

	outcome, _ := EvaluateAsset(asset, nil, cur, minCharge, now)

	assert.Equal(t, OutcomeNotDue, outcome)

	asset.CreatedAt = now.AddDate(0, -2, 0)
	outcome, _ = EvaluateAsset(asset, nil, cur, minCharge, now)

	assert.Equal(t, OutcomeBillable, outcome)
}
