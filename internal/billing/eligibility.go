package billing

import (
	"time"

	"copier-backend/internal/models"
	"copier-backend/internal/timeutil"
)

// Outcome classifies why an asset was or was not billed in a cycle
type Outcome string

const (
	OutcomeBillable     Outcome = "billable"
	OutcomeNonBillable  Outcome = "non_billable"
	OutcomeNoReading    Outcome = "no_reading"
	OutcomeNotDue       Outcome = "not_due"
	OutcomeBelowMinimum Outcome = "below_minimum"
)

// DraftLine is an asset cleared for billing together with the reading it
// will consume and the estimated overage charge that cleared it.
type DraftLine struct {
	Asset   *models.BillingAsset
	Prev    *models.MeterReading
	Reading *models.MeterReading
	Charge  float64
}

// EvaluateAsset decides whether an asset should be billed this cycle.
// prev is the latest invoiced reading (nil when never billed), cur the
// latest unbilled one (nil when there is nothing to consume).
//
// The gate applies the mono/color overage formula to every contract type,
// flat included; only the calculator collapses flat contracts into a single
// total-count block. The color overage also intentionally differs from the
// calculator: the gate compares the color delta against the covered mono
// volume. Invoices issued for years priced this way, so the gate keeps the
// behavior to avoid silently billing assets that were never billed before.
func EvaluateAsset(asset *models.BillingAsset, prev, cur *models.MeterReading, minCharge float64, now time.Time) (Outcome, *DraftLine) {
	if !asset.ContractBillable {
		return OutcomeNonBillable, nil
	}
	if cur == nil {
		return OutcomeNoReading, nil
	}

	// New assets without a billed baseline age from their creation date.
	months := timeutil.MonthsFor(asset.BillingSchedule)
	baselineAt := asset.CreatedAt
	if prev != nil {
		baselineAt = prev.CreatedAt
	}
	if !timeutil.OlderThanMonths(baselineAt, months, now) {
		return OutcomeNotDue, nil
	}

	monoBegin := asset.MonoBegin
	colorBegin := asset.ColorBegin
	if prev != nil {
		monoBegin = prev.Mono
		colorBegin = prev.Color
	}

	var charge float64
	monoDiff := cur.Mono - monoBegin
	colorDiff := cur.Color - colorBegin

	if monoDiff >= asset.CoveredMono {
		charge += float64(monoDiff-asset.CoveredMono) * asset.MonoPrice
	}
	if colorDiff >= asset.CoveredMono {
		charge += float64(colorDiff-asset.CoveredColor) * asset.ColorPrice
	}

	// The minimum applies to the whole candidate charge, not just overage:
	// an asset can clear it on rental and contract amount alone.
	total := charge + asset.RentalCharge*float64(months) + asset.ContractAmount
	if total < minCharge {
		return OutcomeBelowMinimum, nil
	}
	return OutcomeBillable, &DraftLine{Asset: asset, Prev: prev, Reading: cur, Charge: charge}
}
