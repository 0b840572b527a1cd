package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"copier-backend/internal/billing"
	"copier-backend/internal/cache"
	"copier-backend/internal/config"
	"copier-backend/internal/metrics"
	"copier-backend/internal/models"

	"golang.org/x/sync/errgroup"
)

// ErrBillingLocked is returned when a billing run is already active or the
// cooldown since the last completed run has not elapsed.
var ErrBillingLocked = errors.New("billing run locked")

// ErrNothingToBill is returned by manual generation when no asset of the
// customer has an unconsumed meter reading.
var ErrNothingToBill = errors.New("no unbilled meter readings")

// SettingStore is the slice of the settings repository the billing engine
// uses to serialize runs.
type SettingStore interface {
	Get(ctx context.Context) (*models.Setting, error)
	AcquireBillingGate(ctx context.Context, cooldown time.Duration) (bool, error)
	ReleaseBillingGate(ctx context.Context, generatedAt *time.Time, userID *int) error
}

type CustomerStore interface {
	ListActiveIDs(ctx context.Context, page, limit int) ([]int, error)
}

type AssetStore interface {
	ListBillableByCustomer(ctx context.Context, customerID int) ([]*models.BillingAsset, error)
}

type MeterStore interface {
	LatestUnbilled(ctx context.Context, assetID int) (*models.MeterReading, error)
	LatestInvoiced(ctx context.Context, assetID int) (*models.MeterReading, error)
}

type InvoiceStore interface {
	CreateWithLines(ctx context.Context, inv *models.ServiceInvoice, lines []models.InvoiceLine) error
}

type ReportStore interface {
	InsertAuditReports(ctx context.Context, reports []models.AuditReport) error
	CreateRunReport(ctx context.Context, rep *models.BillingRunReport) error
}

// Notifier pushes an operator notification; implementations must not fail
// the billing run.
type Notifier interface {
	Notify(ctx context.Context, title, message, linkPath string)
}

// BillingService runs the periodic billing cycle: it walks every active
// customer, evaluates each asset against its billing window and turns the
// eligible ones into invoices.
type BillingService struct {
	cfg       *config.Config
	settings  SettingStore
	customers CustomerStore
	assets    AssetStore
	meters    MeterStore
	invoices  InvoiceStore
	reports   ReportStore
	notifier  Notifier
}

func NewBillingService(cfg *config.Config, settings SettingStore, customers CustomerStore,
	assets AssetStore, meters MeterStore, invoices InvoiceStore, reports ReportStore,
	notifier Notifier) *BillingService {
	return &BillingService{
		cfg:       cfg,
		settings:  settings,
		customers: customers,
		assets:    assets,
		meters:    meters,
		invoices:  invoices,
		reports:   reports,
		notifier:  notifier,
	}
}

// runResult accumulates asset ids per outcome across worker goroutines
type runResult struct {
	mu      sync.Mutex
	success []int
	failed  []int
	missing []int
}

func (r *runResult) addSuccess(ids ...int) {
	r.mu.Lock()
	r.success = append(r.success, ids...)
	r.mu.Unlock()
}

func (r *runResult) addFailed(ids ...int) {
	r.mu.Lock()
	r.failed = append(r.failed, ids...)
	r.mu.Unlock()
}

func (r *runResult) addMissing(ids ...int) {
	r.mu.Lock()
	r.missing = append(r.missing, ids...)
	r.mu.Unlock()
}

// RunBillingCycle executes one full billing run. Only one run may be active
// at a time; a completed run locks further runs out for the configured
// cooldown. An explicit customerIDs list restricts the run to those
// customers; an empty list scans every active customer. Customer failures
// are isolated: one bad customer never aborts the cycle.
func (s *BillingService) RunBillingCycle(ctx context.Context, customerIDs []int, userID int) (*models.BillingRunReport, error) {
	cooldown := time.Duration(s.cfg.Billing.CooldownHours) * time.Hour
	acquired, err := s.settings.AcquireBillingGate(ctx, cooldown)
	if err != nil {
		return nil, fmt.Errorf("acquire billing gate: %w", err)
	}
	if !acquired {
		return nil, s.lockedError(ctx, cooldown)
	}

	now := time.Now()
	completed := false
	defer func() {
		var generatedAt *time.Time
		var by *int
		if completed {
			generatedAt = &now
			by = &userID
		}
		if err := s.settings.ReleaseBillingGate(context.WithoutCancel(ctx), generatedAt, by); err != nil {
			log.Printf("[Billing] Failed to release billing gate: %v", err)
		}
	}()

	log.Printf("[Billing] Run started by user %d", userID)
	res := &runResult{}

	if len(customerIDs) > 0 {
		s.billCustomerBatch(ctx, customerIDs, now, res)
	} else {
		for page := 0; ; page++ {
			ids, err := s.customers.ListActiveIDs(ctx, page, s.cfg.Billing.PageSize)
			if err != nil {
				metrics.BillingRunsTotal.WithLabelValues("error").Inc()
				return nil, fmt.Errorf("list customers page %d: %w", page, err)
			}
			if len(ids) == 0 {
				break
			}
			s.billCustomerBatch(ctx, ids, now, res)
		}
	}

	report := &models.BillingRunReport{
		Type:         models.ReportTypeBill,
		Success:      res.success,
		Failed:       res.failed,
		MissingInMps: res.missing,
	}
	if report.Success == nil {
		report.Success = []int{}
	}
	if report.Failed == nil {
		report.Failed = []int{}
	}
	if report.MissingInMps == nil {
		report.MissingInMps = []int{}
	}
	report.Total = len(report.Success) + len(report.Failed) + len(report.MissingInMps)
	if err := s.reports.CreateRunReport(ctx, report); err != nil {
		metrics.BillingRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create run report: %w", err)
	}

	completed = true
	cache.InvalidateInvoiceLists(ctx)
	metrics.BillingRunsTotal.WithLabelValues("success").Inc()

	s.notifier.Notify(ctx, "Billing run complete",
		fmt.Sprintf("Success: %d, Failed: %d, Manual: %d",
			len(report.Success), len(report.Failed), len(report.MissingInMps)),
		fmt.Sprintf("/reports/%d", report.ID))
	log.Printf("[Billing] Run complete: %d billed, %d failed, %d manual",
		len(report.Success), len(report.Failed), len(report.MissingInMps))

	return report, nil
}

func (s *BillingService) lockedError(ctx context.Context, cooldown time.Duration) error {
	setting, err := s.settings.Get(ctx)
	if err != nil || setting == nil {
		return ErrBillingLocked
	}
	if setting.ActiveBilling {
		return fmt.Errorf("%w: a run is currently in progress", ErrBillingLocked)
	}
	if setting.BillsGeneratedAt != nil {
		next := setting.BillsGeneratedAt.Add(cooldown)
		return fmt.Errorf("%w: next run allowed at %s", ErrBillingLocked, next.Format(time.RFC3339))
	}
	return ErrBillingLocked
}

// billCustomerBatch fans one batch of customers out over the worker pool.
func (s *BillingService) billCustomerBatch(ctx context.Context, ids []int, now time.Time, res *runResult) {
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Billing.Workers)
	for _, customerID := range ids {
		customerID := customerID
		g.Go(func() error {
			s.billCustomer(ctx, customerID, now, res)
			return nil
		})
	}
	g.Wait()
}

// billCustomer evaluates all assets of one customer and creates at most one
// invoice covering the eligible ones. Errors are recorded, never returned.
func (s *BillingService) billCustomer(ctx context.Context, customerID int, now time.Time, res *runResult) {
	assets, err := s.assets.ListBillableByCustomer(ctx, customerID)
	if err != nil {
		log.Printf("[Billing] Customer %d: list assets: %v", customerID, err)
		return
	}

	var drafts []*billing.DraftLine
	var evaluated []int
	for _, asset := range assets {
		cur, err := s.meters.LatestUnbilled(ctx, asset.ID)
		if err != nil {
			log.Printf("[Billing] Asset %d: latest unbilled: %v", asset.ID, err)
			res.addFailed(asset.ID)
			continue
		}
		prev, err := s.meters.LatestInvoiced(ctx, asset.ID)
		if err != nil {
			log.Printf("[Billing] Asset %d: latest invoiced: %v", asset.ID, err)
			res.addFailed(asset.ID)
			continue
		}

		outcome, draft := billing.EvaluateAsset(asset, prev, cur, s.cfg.Billing.MinCharge, now)
		metrics.BillingAssetsTotal.WithLabelValues(string(outcome)).Inc()
		switch outcome {
		case billing.OutcomeBillable:
			drafts = append(drafts, draft)
			evaluated = append(evaluated, asset.ID)
		case billing.OutcomeBelowMinimum:
			// too small to invoice, operators see it in the failed bucket
			res.addFailed(asset.ID)
		case billing.OutcomeNoReading:
			// no counter snapshot to consume, needs manual review
			res.addMissing(asset.ID)
		}
	}

	if len(drafts) == 0 {
		return
	}

	if err := s.createInvoice(ctx, drafts, now); err != nil {
		log.Printf("[Billing] Customer %d: create invoice: %v", customerID, err)
		res.addFailed(evaluated...)
		return
	}
	res.addSuccess(evaluated...)
}

// createInvoice persists the invoice for a set of draft lines and writes
// the audit rows capturing the billed counter window.
func (s *BillingService) createInvoice(ctx context.Context, drafts []*billing.DraftLine, now time.Time) error {
	inv := &models.ServiceInvoice{
		CustomerName: drafts[0].Asset.CustomerUsername,
		DueDate:      now.AddDate(0, 1, 0),
	}
	lines := make([]models.InvoiceLine, 0, len(drafts))
	for _, d := range drafts {
		lines = append(lines, models.InvoiceLine{AssetID: d.Asset.ID, MeterID: d.Reading.ID})
	}
	if err := s.invoices.CreateWithLines(ctx, inv, lines); err != nil {
		return err
	}

	audits := make([]models.AuditReport, 0, len(drafts))
	for _, d := range drafts {
		monoBegin := d.Asset.MonoBegin
		colorBegin := d.Asset.ColorBegin
		if d.Prev != nil {
			monoBegin = d.Prev.Mono
			colorBegin = d.Prev.Color
		}
		audits = append(audits, models.AuditReport{
			AssetID:    d.Asset.ID,
			CompanyID:  d.Asset.CompanyID,
			MonoBegin:  monoBegin,
			MonoEnd:    d.Reading.Mono,
			ColorBegin: colorBegin,
			ColorEnd:   d.Reading.Color,
			DueDate:    &inv.DueDate,
		})
	}
	if err := s.reports.InsertAuditReports(ctx, audits); err != nil {
		// Invoice already committed; audit rows are best effort here
		log.Printf("[Billing] Invoice %s: audit rows: %v", inv.InvoiceNo, err)
	}
	return nil
}

// GenerateInvoiceForCustomer bills one customer on demand, outside the
// periodic cycle. The schedule and minimum-charge gates are skipped: every
// asset with an unconsumed reading goes on the invoice.
func (s *BillingService) GenerateInvoiceForCustomer(ctx context.Context, customerID int) (*models.ServiceInvoice, error) {
	assets, err := s.assets.ListBillableByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	now := time.Now()
	var drafts []*billing.DraftLine
	for _, asset := range assets {
		if !asset.ContractBillable {
			continue
		}
		cur, err := s.meters.LatestUnbilled(ctx, asset.ID)
		if err != nil {
			return nil, fmt.Errorf("asset %d: latest unbilled: %w", asset.ID, err)
		}
		if cur == nil {
			continue
		}
		prev, err := s.meters.LatestInvoiced(ctx, asset.ID)
		if err != nil {
			return nil, fmt.Errorf("asset %d: latest invoiced: %w", asset.ID, err)
		}
		drafts = append(drafts, &billing.DraftLine{Asset: asset, Prev: prev, Reading: cur})
	}

	if len(drafts) == 0 {
		return nil, ErrNothingToBill
	}

	inv := &models.ServiceInvoice{
		CustomerName: drafts[0].Asset.CustomerUsername,
		DueDate:      now.AddDate(0, 1, 0),
	}
	lines := make([]models.InvoiceLine, 0, len(drafts))
	for _, d := range drafts {
		lines = append(lines, models.InvoiceLine{AssetID: d.Asset.ID, MeterID: d.Reading.ID})
	}
	if err := s.invoices.CreateWithLines(ctx, inv, lines); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	cache.InvalidateInvoiceLists(ctx)
	return inv, nil
}
