package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"copier-backend/internal/billing"
	"copier-backend/internal/cache"
	"copier-backend/internal/config"
	"copier-backend/internal/metrics"
	"copier-backend/internal/models"
	"copier-backend/internal/quickbooks"
	"copier-backend/internal/repositories"

	"github.com/cenkalti/backoff/v4"
)

// ErrAlreadySynced is returned when an invoice already carries a remote id
var ErrAlreadySynced = errors.New("invoice already posted to quickbooks")

// SyncSummary reports the outcome of a bulk posting or reconciliation pass
type SyncSummary struct {
	Processed int   `json:"processed"`
	Synced    []int `json:"synced"`
	Failed    []int `json:"failed"`
}

// QuickBooksService posts local invoices to the accounting realm of the
// tracked company and reconciles payment status back.
type QuickBooksService struct {
	cfg        *config.Config
	client     *quickbooks.Client
	tokens     *repositories.QuickBooksRepository
	invoices   *repositories.InvoiceRepository
	customers  *repositories.CustomerRepository
	companies  *repositories.CompanyRepository
	invoiceSvc *InvoiceService
}

func NewQuickBooksService(cfg *config.Config, client *quickbooks.Client,
	tokens *repositories.QuickBooksRepository, invoices *repositories.InvoiceRepository,
	customers *repositories.CustomerRepository, companies *repositories.CompanyRepository,
	invoiceSvc *InvoiceService) *QuickBooksService {
	return &QuickBooksService{
		cfg:        cfg,
		client:     client,
		tokens:     tokens,
		invoices:   invoices,
		customers:  customers,
		companies:  companies,
		invoiceSvc: invoiceSvc,
	}
}

// SyncInvoice posts one local invoice to the accounting system. Transient
// failures are retried a few times; an expired refresh token aborts
// immediately since only reauthorization can fix it.
func (s *QuickBooksService) SyncInvoice(ctx context.Context, invoiceID int) (int64, error) {
	detail, err := s.invoiceSvc.GetWithTotals(ctx, invoiceID)
	if err != nil {
		return 0, err
	}
	inv := detail.Invoice
	if inv.QuickBooksInvoiceID != nil {
		return *inv.QuickBooksInvoiceID, ErrAlreadySynced
	}

	customer, err := s.customers.GetByUsername(ctx, inv.CustomerName)
	if err != nil {
		return 0, fmt.Errorf("load customer %q: %w", inv.CustomerName, err)
	}
	if customer.QuickBooksID == nil {
		return 0, fmt.Errorf("customer %q has no quickbooks id", inv.CustomerName)
	}
	tracked, err := s.customers.IsQuickBooksTracked(ctx, customer.ID)
	if err != nil {
		return 0, fmt.Errorf("check tracked company: %w", err)
	}
	if !tracked {
		return 0, fmt.Errorf("customer %q does not belong to the quickbooks-tracked company", inv.CustomerName)
	}

	token, err := s.tokens.GetTracked(ctx)
	if err != nil {
		return 0, fmt.Errorf("load quickbooks credentials: %w", err)
	}

	var companyCity, companyPostCode string
	if customer.CompanyID != nil {
		if company, err := s.companies.Get(ctx, *customer.CompanyID); err == nil {
			companyCity = company.City
			companyPostCode = company.PostCode
		} else {
			log.Printf("[QuickBooks] Customer %q: load company: %v", customer.Username, err)
		}
	}

	payload := quickbooks.BuildInvoicePayload(inv.InvoiceNo, customer,
		companyCity, companyPostCode, inv.DueDate, buildLines(detail.Bills))

	var created *quickbooks.Invoice
	operation := func() error {
		var opErr error
		created, opErr = s.client.CreateInvoice(ctx, token, payload)
		if errors.Is(opErr, quickbooks.ErrReauthRequired) {
			return backoff.Permanent(opErr)
		}
		return opErr
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		metrics.QuickBooksSyncTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("post invoice %s: %w", inv.InvoiceNo, err)
	}

	remoteID, err := strconv.ParseInt(created.ID, 10, 64)
	if err != nil {
		metrics.QuickBooksSyncTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("parse remote invoice id %q: %w", created.ID, err)
	}
	if err := s.invoices.SetQuickBooksInvoiceID(ctx, inv.ID, remoteID); err != nil {
		return 0, fmt.Errorf("store remote invoice id: %w", err)
	}

	cache.InvalidateInvoiceLists(ctx)
	metrics.QuickBooksSyncTotal.WithLabelValues("success").Inc()
	log.Printf("[QuickBooks] Posted invoice %s as %d", inv.InvoiceNo, remoteID)
	return remoteID, nil
}

// buildLines flattens computed asset bills into remote invoice lines. Meter
// blocks carry the billed page count as quantity; rental and contract
// charges go on as single-quantity lines.
func buildLines(bills []*billing.AssetBill) []quickbooks.LineInput {
	var lines []quickbooks.LineInput
	for _, bill := range bills {
		for _, block := range bill.Blocks {
			lines = append(lines, quickbooks.LineInput{
				Description: fmt.Sprintf("%s %s %s (%s - %s)",
					bill.AssetNumber, bill.Model, block.Label, block.BeginFmt, block.EndFmt),
				Qty:    float64(block.End - block.Begin),
				Rate:   block.Rate,
				Amount: block.Amount,
			})
		}
		if bill.RentalCharge > 0 {
			lines = append(lines, quickbooks.LineInput{
				Description: fmt.Sprintf("%s Rental Charge (%d month(s))", bill.AssetNumber, bill.RentalMonths),
				Qty:         1,
				Rate:        bill.RentalCharge,
				Amount:      bill.RentalCharge,
			})
		}
		if bill.ContractAmount > 0 {
			lines = append(lines, quickbooks.LineInput{
				Description: fmt.Sprintf("%s Contract Amount", bill.AssetNumber),
				Qty:         1,
				Rate:        bill.ContractAmount,
				Amount:      bill.ContractAmount,
			})
		}
	}
	return lines
}

// PostUnsynced pages through unposted invoices of the tracked company and
// posts each one. Per-invoice failures are recorded, not fatal, except an
// expired refresh token which stops the pass.
func (s *QuickBooksService) PostUnsynced(ctx context.Context) (*SyncSummary, error) {
	summary := &SyncSummary{Synced: []int{}, Failed: []int{}}
	for {
		// Page zero every time: each successful post removes the invoice
		// from the unsynced set.
		ids, err := s.invoices.ListUnsyncedTrackedIDs(ctx, 0, s.cfg.Billing.PageSize)
		if err != nil {
			return summary, fmt.Errorf("list unsynced invoices: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		progressed := false
		for _, id := range ids {
			summary.Processed++
			if _, err := s.SyncInvoice(ctx, id); err != nil {
				if errors.Is(err, quickbooks.ErrReauthRequired) {
					return summary, err
				}
				log.Printf("[QuickBooks] Invoice %d: %v", id, err)
				summary.Failed = append(summary.Failed, id)
				continue
			}
			summary.Synced = append(summary.Synced, id)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return summary, nil
}

// ReconcileStatuses walks posted invoices still pending locally and marks
// the ones whose remote balance reached zero as paid.
func (s *QuickBooksService) ReconcileStatuses(ctx context.Context) (*SyncSummary, error) {
	token, err := s.tokens.GetTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quickbooks credentials: %w", err)
	}

	summary := &SyncSummary{Synced: []int{}, Failed: []int{}}
	seen := make(map[int]struct{})
	for {
		// Marking an invoice paid removes it from the pending set, so
		// always refetch page zero and skip what was already handled.
		invoices, err := s.invoices.ListSyncedPending(ctx, 0, s.cfg.Billing.PageSize)
		if err != nil {
			return summary, fmt.Errorf("list posted invoices: %w", err)
		}

		progressed := false
		for _, inv := range invoices {
			if _, ok := seen[inv.ID]; ok {
				continue
			}
			seen[inv.ID] = struct{}{}
			progressed = true
			summary.Processed++
			remote, err := s.client.GetInvoice(ctx, token, *inv.QuickBooksInvoiceID)
			if err != nil {
				if errors.Is(err, quickbooks.ErrReauthRequired) {
					return summary, err
				}
				log.Printf("[QuickBooks] Invoice %s: fetch remote: %v", inv.InvoiceNo, err)
				summary.Failed = append(summary.Failed, inv.ID)
				continue
			}
			if remote.Balance != 0 {
				continue
			}
			if err := s.invoices.UpdateStatus(ctx, inv.ID, models.InvoiceStatusPaid); err != nil {
				log.Printf("[QuickBooks] Invoice %s: mark paid: %v", inv.InvoiceNo, err)
				summary.Failed = append(summary.Failed, inv.ID)
				continue
			}
			summary.Synced = append(summary.Synced, inv.ID)
		}
		if !progressed {
			break
		}
	}

	if len(summary.Synced) > 0 {
		cache.InvalidateInvoiceLists(ctx)
	}
	return summary, nil
}
