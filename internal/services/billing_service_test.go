package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"copier-backend/internal/config"
	"copier-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	mu         sync.Mutex
	locked     bool
	lastRun    *time.Time
	releasedAt *time.Time
	releasedBy *int
	releases   int
}

func (f *fakeSettings) Get(ctx context.Context) (*models.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.Setting{ID: 1, ActiveBilling: f.locked, BillsGeneratedAt: f.lastRun, HstTax: 13}, nil
}

func (f *fakeSettings) AcquireBillingGate(ctx context.Context, cooldown time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked {
		return false, nil
	}
	if f.lastRun != nil && time.Since(*f.lastRun) < cooldown {
		return false, nil
	}
	f.locked = true
	return true, nil
}

func (f *fakeSettings) ReleaseBillingGate(ctx context.Context, generatedAt *time.Time, userID *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = false
	f.releasedAt = generatedAt
	f.releasedBy = userID
	f.releases++
	if generatedAt != nil {
		f.lastRun = generatedAt
	}
	return nil
}

type fakeCustomers struct {
	ids []int
}

func (f *fakeCustomers) ListActiveIDs(ctx context.Context, page, limit int) ([]int, error) {
	start := page * limit
	if start >= len(f.ids) {
		return nil, nil
	}
	end := start + limit
	if end > len(f.ids) {
		end = len(f.ids)
	}
	return f.ids[start:end], nil
}

type fakeAssets struct {
	byCustomer map[int][]*models.BillingAsset
}

func (f *fakeAssets) ListBillableByCustomer(ctx context.Context, customerID int) ([]*models.BillingAsset, error) {
	return f.byCustomer[customerID], nil
}

type fakeMeters struct {
	unbilled map[int]*models.MeterReading
	invoiced map[int]*models.MeterReading
}

func (f *fakeMeters) LatestUnbilled(ctx context.Context, assetID int) (*models.MeterReading, error) {
	return f.unbilled[assetID], nil
}

func (f *fakeMeters) LatestInvoiced(ctx context.Context, assetID int) (*models.MeterReading, error) {
	return f.invoiced[assetID], nil
}

type createdInvoice struct {
	invoice models.ServiceInvoice
	lines   []models.InvoiceLine
}

type fakeInvoices struct {
	mu      sync.Mutex
	created []createdInvoice
	failFor map[string]bool
	seq     int
}

func (f *fakeInvoices) CreateWithLines(ctx context.Context, inv *models.ServiceInvoice, lines []models.InvoiceLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[inv.CustomerName] {
		return errors.New("insert failed")
	}
	f.seq++
	inv.ID = f.seq
	inv.InvoiceNo = fmt.Sprintf("INV%d-1234", f.seq)
	f.created = append(f.created, createdInvoice{invoice: *inv, lines: lines})
	return nil
}

type fakeReports struct {
	mu     sync.Mutex
	audits []models.AuditReport
	runs   []*models.BillingRunReport
}

func (f *fakeReports) InsertAuditReports(ctx context.Context, reports []models.AuditReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, reports...)
	return nil
}

func (f *fakeReports) CreateRunReport(ctx context.Context, rep *models.BillingRunReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rep.ID = len(f.runs) + 1
	f.runs = append(f.runs, rep)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (f *fakeNotifier) Notify(ctx context.Context, title, message, linkPath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
}

func billingConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Billing.MinCharge = 3
	cfg.Billing.CooldownHours = 24
	cfg.Billing.PageSize = 50
	cfg.Billing.Workers = 4
	return cfg
}

func billableAssetFor(customerID, assetID int, username string) *models.BillingAsset {
	return &models.BillingAsset{
		Asset: models.Asset{
			ID:          assetID,
			AssetNumber: fmt.Sprintf("CP-%d", assetID),
			CustomerID:  customerID,
			CoveredMono: 100,
			MonoPrice:   0.01,
			CreatedAt:   time.Now().AddDate(-1, 0, 0),
		},
		CustomerUsername: username,
		BillingSchedule:  models.ScheduleMonthly,
		BillingMode:      models.BillingModeItemized,
		ContractBillable: true,
	}
}

func newBillingFixture(customers *fakeCustomers, assets *fakeAssets, meters *fakeMeters,
	invoices *fakeInvoices, settings *fakeSettings) (*BillingService, *fakeReports, *fakeNotifier) {
	reports := &fakeReports{}
	notifier := &fakeNotifier{}
	svc := NewBillingService(billingConfig(), settings, customers, assets, meters, invoices, reports, notifier)
	return svc, reports, notifier
}

func TestRunBillingCycleLockedWhileActive(t *testing.T) {
	settings := &fakeSettings{locked: true}
	svc, _, _ := newBillingFixture(&fakeCustomers{}, &fakeAssets{}, &fakeMeters{}, &fakeInvoices{}, settings)

	_, err := svc.RunBillingCycle(context.Background(), nil, 1)

	require.ErrorIs(t, err, ErrBillingLocked)
	assert.Contains(t, err.Error(), "in progress")
}

func TestRunBillingCycleLockedWithinCooldown(t *testing.T) {
	lastRun := time.Now().Add(-2 * time.Hour)
	settings := &fakeSettings{lastRun: &lastRun}
	svc, _, _ := newBillingFixture(&fakeCustomers{}, &fakeAssets{}, &fakeMeters{}, &fakeInvoices{}, settings)

	_, err := svc.RunBillingCycle(context.Background(), nil, 1)

	require.ErrorIs(t, err, ErrBillingLocked)
	assert.Contains(t, err.Error(), "next run allowed at")
}

func TestRunBillingCycleBillsEligibleAssets(t *testing.T) {
	settings := &fakeSettings{}
	customers := &fakeCustomers{ids: []int{1, 2}}
	assets := &fakeAssets{byCustomer: map[int][]*models.BillingAsset{
		1: {billableAssetFor(1, 10, "acme")},
		2: {billableAssetFor(2, 20, "globex")},
	}}
	meters := &fakeMeters{unbilled: map[int]*models.MeterReading{
		// asset 10: 500 over covered 100 at $0.01 is $4, billable
		10: {ID: 100, AssetID: 10, Mono: 500},
		// asset 20: $2, below the minimum charge
		20: {ID: 200, AssetID: 20, Mono: 300},
	}}
	invoices := &fakeInvoices{}
	svc, reports, notifier := newBillingFixture(customers, assets, meters, invoices, settings)

	report, err := svc.RunBillingCycle(context.Background(), nil, 42)

	require.NoError(t, err)
	assert.Equal(t, []int{10}, report.Success)
	assert.Equal(t, []int{20}, report.Failed)
	assert.Equal(t, 2, report.Total)

	require.Len(t, invoices.created, 1)
	created := invoices.created[0]
	assert.Equal(t, "acme", created.invoice.CustomerName)
	require.Len(t, created.lines, 1)
	assert.Equal(t, 10, created.lines[0].AssetID)
	assert.Equal(t, 100, created.lines[0].MeterID)

	require.Len(t, reports.audits, 1)
	assert.Equal(t, 10, reports.audits[0].AssetID)
	assert.Equal(t, 0, reports.audits[0].MonoBegin)
	assert.Equal(t, 500, reports.audits[0].MonoEnd)

	// completed run stamps the cooldown and frees the gate
	require.NotNil(t, settings.releasedAt)
	require.NotNil(t, settings.releasedBy)
	assert.Equal(t, 42, *settings.releasedBy)
	assert.False(t, settings.locked)

	require.Len(t, notifier.titles, 1)
	assert.Equal(t, "Billing run complete", notifier.titles[0])
}

func TestRunBillingCycleRecordsFailedAndMissingBuckets(t *testing.T) {
	settings := &fakeSettings{}
	customers := &fakeCustomers{ids: []int{1, 2, 3}}
	assets := &fakeAssets{byCustomer: map[int][]*models.BillingAsset{
		1: {billableAssetFor(1, 10, "acme")},
		2: {billableAssetFor(2, 20, "globex")},
		3: {billableAssetFor(3, 30, "initech")},
	}}
	meters := &fakeMeters{unbilled: map[int]*models.MeterReading{
		10: {ID: 100, AssetID: 10, Mono: 500},
		// asset 20 is $2, under the minimum; asset 30 has no reading at all
		20: {ID: 200, AssetID: 20, Mono: 300},
	}}
	svc, reports, _ := newBillingFixture(customers, assets, meters, &fakeInvoices{}, settings)

	report, err := svc.RunBillingCycle(context.Background(), nil, 1)

	require.NoError(t, err)
	assert.Equal(t, []int{10}, report.Success)
	assert.Equal(t, []int{20}, report.Failed)
	assert.Equal(t, []int{30}, report.MissingInMps)
	assert.Equal(t, 3, report.Total)

	require.Len(t, reports.runs, 1)
	assert.Equal(t, []int{30}, reports.runs[0].MissingInMps)
}

func TestRunBillingCycleConcurrentInvocations(t *testing.T) {
	settings := &fakeSettings{}
	customers := &fakeCustomers{ids: []int{1}}
	assets := &fakeAssets{byCustomer: map[int][]*models.BillingAsset{
		1: {billableAssetFor(1, 10, "acme")},
	}}
	meters := &fakeMeters{unbilled: map[int]*models.MeterReading{
		10: {ID: 100, AssetID: 10, Mono: 500},
	}}
	invoices := &fakeInvoices{}
	svc, _, _ := newBillingFixture(customers, assets, meters, invoices, settings)

	const racers = 8
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RunBillingCycle(context.Background(), nil, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// exactly one invocation passes the gate, the rest are locked out
	var passed, locked int
	for err := range errs {
		if err == nil {
			passed++
		} else {
			require.ErrorIs(t, err, ErrBillingLocked)
			locked++
		}
	}
	assert.Equal(t, 1, passed)
	assert.Equal(t, racers-1, locked)
	assert.Len(t, invoices.created, 1)
}

func TestRunBillingCycleExplicitCustomerScope(t *testing.T) {
	settings := &fakeSettings{}
	// the active-customer scan would pick up both; the explicit scope
	// restricts the run to customer 2
	customers := &fakeCustomers{ids: []int{1, 2}}
	assets := &fakeAssets{byCustomer: map[int][]*models.BillingAsset{
		1: {billableAssetFor(1, 10, "acme")},
		2: {billableAssetFor(2, 20, "globex")},
	}}
	meters := &fakeMeters{unbilled: map[int]*models.MeterReading{
		10: {ID: 100, AssetID: 10, Mono: 500},
		20: {ID: 200, AssetID: 20, Mono: 600},
	}}
	invoices := &fakeInvoices{}
	svc, _, _ := newBillingFixture(customers, assets, meters, invoices, settings)

	report, err := svc.RunBillingCycle(context.Background(), []int{2}, 1)

	require.NoError(t, err)
	assert.Equal(t, []int{20}, report.Success)
	require.Len(t, invoices.created, 1)
	assert.Equal(t, "globex", invoices.created[0].invoice.CustomerName)
}

func TestRunBillingCycleIsolatesCustomerFailures(t *testing.T) {
	settings := &fakeSettings{}
	customers := &fakeCustomers{ids: []int{1, 2}}
	assets := &fakeAssets{byCustomer: map[int][]*models.BillingAsset{
		1: {billableAssetFor(1, 10, "acme")},
		2: {billableAssetFor(2, 20, "globex")},
	}}
	meters := &fakeMeters{unbilled: map[int]*models.MeterReading{
		10: {ID: 100, AssetID: 10, Mono: 500},
		20: {ID: 200, AssetID: 20, Mono: 600},
	}}
	invoices := &fakeInvoices{failFor: map[string]bool{"acme": true}}
	svc, _, _ := newBillingFixture(customers, assets, meters, invoices, settings)

	report, err := svc.RunBillingCycle(context.Background(), nil, 1)

	require.NoError(t, err)
	assert.Equal(t, []int{10}, report.Failed)
	assert.Equal(t, []int{20}, report.Success)

	require.Len(t, invoices.created, 1)
	assert.Equal(t, "globex", invoices.created[0].invoice.CustomerName)
}

func TestRunBillingCycleCooldownAfterCompletedRun(t *testing.T) {
	settings := &fakeSettings{}
	// a second run right after a completed one must be locked out
	customers := &fakeCustomers{ids: []int{1}}
	assets := &fakeAssets{byCustomer: map[int][]*models.BillingAsset{
		1: {billableAssetFor(1, 10, "acme")},
	}}
	meters := &fakeMeters{unbilled: map[int]*models.MeterReading{
		10: {ID: 100, AssetID: 10, Mono: 500},
	}}
	svc, _, _ := newBillingFixture(customers, assets, meters, &fakeInvoices{}, settings)

	_, err := svc.RunBillingCycle(context.Background(), nil, 1)
	require.NoError(t, err)

	_, err = svc.RunBillingCycle(context.Background(), nil, 1)
	require.ErrorIs(t, err, ErrBillingLocked)
}

func TestGenerateInvoiceForCustomer(t *testing.T) {
	settings := &fakeSettings{}
	assets := &fakeAssets{byCustomer: map[int][]*models.BillingAsset{
		7: {billableAssetFor(7, 70, "initech"), billableAssetFor(7, 71, "initech")},
	}}
	meters := &fakeMeters{unbilled: map[int]*models.MeterReading{
		// only one asset has an unconsumed reading; the minimum-charge gate
		// does not apply to manual generation
		70: {ID: 700, AssetID: 70, Mono: 120},
	}}
	invoices := &fakeInvoices{}
	svc, _, _ := newBillingFixture(&fakeCustomers{}, assets, meters, invoices, settings)

	inv, err := svc.GenerateInvoiceForCustomer(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "initech", inv.CustomerName)
	require.Len(t, invoices.created, 1)
	require.Len(t, invoices.created[0].lines, 1)
	assert.Equal(t, 70, invoices.created[0].lines[0].AssetID)
}

func TestGenerateInvoiceForCustomerNothingToBill(t *testing.T) {
	assets := &fakeAssets{byCustomer: map[int][]*models.BillingAsset{
		7: {billableAssetFor(7, 70, "initech")},
	}}
	svc, _, _ := newBillingFixture(&fakeCustomers{}, assets, &fakeMeters{}, &fakeInvoices{}, &fakeSettings{})

	_, err := svc.GenerateInvoiceForCustomer(context.Background(), 7)

	require.ErrorIs(t, err, ErrNothingToBill)
}
