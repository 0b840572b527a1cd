package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"copier-backend/internal/billing"
	"copier-backend/internal/cache"
	"copier-backend/internal/config"
	"copier-backend/internal/mailer"
	"copier-backend/internal/models"
	"copier-backend/internal/pdf"
	"copier-backend/internal/repositories"
	"copier-backend/internal/storage"
)

// InvoiceDetail is an invoice with its computed asset bills and totals
type InvoiceDetail struct {
	Invoice *models.ServiceInvoice `json:"invoice"`
	Bills   []*billing.AssetBill   `json:"bills"`
	Totals  *billing.InvoiceTotals `json:"totals"`
}

// InvoiceService serves the invoice read path: amounts are always computed
// from the stored meter windows at read time, never persisted.
type InvoiceService struct {
	cfg       *config.Config
	invoices  *repositories.InvoiceRepository
	assets    *repositories.AssetRepository
	meters    *repositories.MeterReadingRepository
	customers *repositories.CustomerRepository
	settings  *repositories.SettingRepository
	archiver  *storage.Archiver
	mail      *mailer.Mailer
}

func NewInvoiceService(cfg *config.Config, invoices *repositories.InvoiceRepository,
	assets *repositories.AssetRepository, meters *repositories.MeterReadingRepository,
	customers *repositories.CustomerRepository, settings *repositories.SettingRepository,
	archiver *storage.Archiver, mail *mailer.Mailer) *InvoiceService {
	return &InvoiceService{
		cfg:       cfg,
		invoices:  invoices,
		assets:    assets,
		meters:    meters,
		customers: customers,
		settings:  settings,
		archiver:  archiver,
		mail:      mail,
	}
}

// taxRate returns the configured HST rate, cached alongside the settings row
func (s *InvoiceService) taxRate(ctx context.Context) (float64, error) {
	var setting models.Setting
	if cache.GetJSON(ctx, cache.SettingsKey, &setting) {
		return setting.HstTax, nil
	}
	loaded, err := s.settings.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	cache.SetJSON(ctx, cache.SettingsKey, loaded, 10*time.Minute)
	return loaded.HstTax, nil
}

// GetWithTotals loads an invoice and recomputes every asset bill from the
// meter windows its lines reference.
func (s *InvoiceService) GetWithTotals(ctx context.Context, id int) (*InvoiceDetail, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}

	tax, err := s.taxRate(ctx)
	if err != nil {
		return nil, err
	}

	bills := make([]*billing.AssetBill, 0, len(inv.Assets))
	for _, line := range inv.Assets {
		asset, err := s.assets.GetBilling(ctx, line.AssetID)
		if err != nil {
			return nil, fmt.Errorf("load asset %d: %w", line.AssetID, err)
		}
		reading, err := s.meters.Get(ctx, line.MeterID)
		if err != nil {
			return nil, fmt.Errorf("load reading %d: %w", line.MeterID, err)
		}
		prev, err := s.meters.InvoicedBefore(ctx, line.AssetID, line.MeterID)
		if err != nil {
			return nil, fmt.Errorf("load prior reading for asset %d: %w", line.AssetID, err)
		}
		bills = append(bills, billing.ComputeAssetBill(asset, prev, reading))
	}

	totals := billing.ComputeOverallTotal(bills, tax, inv.Status == models.InvoiceStatusPaid)
	return &InvoiceDetail{Invoice: inv, Bills: bills, Totals: totals}, nil
}

// List returns a filtered invoice page, served from cache when possible
func (s *InvoiceService) List(ctx context.Context, by, value string, page, limit int) ([]*models.InvoiceListItem, error) {
	if limit <= 0 || limit > s.cfg.Billing.PageSize {
		limit = s.cfg.Billing.PageSize
	}

	key := cache.InvoiceListKey(by, value, page, limit)
	var cached []*models.InvoiceListItem
	if cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	items, err := s.invoices.List(ctx, by, value, page, limit)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, key, items, 5*time.Minute)
	return items, nil
}

// UpdateStatus moves an invoice between pending and paid
func (s *InvoiceService) UpdateStatus(ctx context.Context, id int, status string) error {
	if status != models.InvoiceStatusPending && status != models.InvoiceStatusPaid {
		return fmt.Errorf("invalid status %q", status)
	}
	if err := s.invoices.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	cache.InvalidateInvoiceLists(ctx)
	return nil
}

// Delete removes an invoice and its lines
func (s *InvoiceService) Delete(ctx context.Context, id int) error {
	if err := s.invoices.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateInvoiceLists(ctx)
	return nil
}

// SendInvoice renders the invoice PDF and emails it to the customer's
// billing addresses. The PDF is archived best effort; a failed archive
// never fails the send.
func (s *InvoiceService) SendInvoice(ctx context.Context, id int) error {
	detail, err := s.GetWithTotals(ctx, id)
	if err != nil {
		return err
	}
	inv := detail.Invoice

	customer, err := s.customers.GetByUsername(ctx, inv.CustomerName)
	if err != nil {
		return fmt.Errorf("load customer %q: %w", inv.CustomerName, err)
	}

	var recipients []string
	if customer.Email != "" {
		recipients = append(recipients, customer.Email)
	}
	if customer.SecondaryEmail != "" {
		recipients = append(recipients, customer.SecondaryEmail)
	}
	if len(recipients) == 0 {
		return fmt.Errorf("customer %q has no billing email", inv.CustomerName)
	}

	companyName := ""
	if len(detail.Bills) > 0 {
		if asset, err := s.assets.GetBilling(ctx, detail.Bills[0].AssetID); err == nil {
			companyName = asset.CompanyName
		}
	}

	rendered, err := pdf.RenderInvoice(&pdf.InvoiceDocument{
		InvoiceNo:      inv.InvoiceNo,
		CustomerName:   customer.Name,
		BillingAddress: customer.BillingAddress,
		CompanyName:    companyName,
		Status:         inv.Status,
		IssuedAt:       inv.CreatedAt,
		DueDate:        inv.DueDate,
		Bills:          detail.Bills,
		Totals:         detail.Totals,
	})
	if err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.InvoiceNo, err)
	}

	body := fmt.Sprintf("Please find attached invoice %s.\r\nBalance due: $%s by %s.\r\n",
		inv.InvoiceNo, detail.Totals.BalanceDue, inv.DueDate.Format("January 2, 2006"))
	if err := s.mail.SendInvoice(recipients, inv.InvoiceNo, body, rendered); err != nil {
		return fmt.Errorf("email invoice %s: %w", inv.InvoiceNo, err)
	}

	for _, line := range inv.Assets {
		if err := s.meters.MarkSent(ctx, line.MeterID); err != nil {
			log.Printf("[Invoice] Mark reading %d sent: %v", line.MeterID, err)
		}
	}

	if err := s.archiver.StoreInvoicePDF(ctx, inv.InvoiceNo, rendered); err != nil {
		log.Printf("[Invoice] Archive %s: %v", inv.InvoiceNo, err)
	}

	log.Printf("[Invoice] Sent %s to %d recipient(s)", inv.InvoiceNo, len(recipients))
	return nil
}

// RetentionSweep deletes unpaid invoices older than the retention window.
// Paid invoices are kept indefinitely.
func (s *InvoiceService) RetentionSweep(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.Billing.RetentionDays)
	purged, err := s.invoices.PurgeUnpaidBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[Invoice] Retention sweep: %v", err)
		return
	}
	if purged > 0 {
		cache.InvalidateInvoiceLists(ctx)
		log.Printf("[Invoice] Retention sweep purged %d unpaid invoice(s) older than %s",
			purged, cutoff.Format("2006-01-02"))
	}
}
