package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"copier-backend/internal/cache"
	"copier-backend/internal/config"
	"copier-backend/internal/models"
	"copier-backend/internal/mps"
	"copier-backend/internal/repositories"
)

// MpsService pulls fleet counter readings from the managed print services
// platform and stores them as unbilled meter readings.
type MpsService struct {
	cfg      *config.Config
	client   *mps.Client
	assets   *repositories.AssetRepository
	meters   *repositories.MeterReadingRepository
	reports  *repositories.ReportRepository
	notifier Notifier
}

func NewMpsService(cfg *config.Config, client *mps.Client, assets *repositories.AssetRepository,
	meters *repositories.MeterReadingRepository, reports *repositories.ReportRepository,
	notifier Notifier) *MpsService {
	return &MpsService{
		cfg:      cfg,
		client:   client,
		assets:   assets,
		meters:   meters,
		reports:  reports,
		notifier: notifier,
	}
}

// accessToken returns a cached platform token, registering a fresh one
// when the cache is cold.
func (s *MpsService) accessToken(ctx context.Context) (string, error) {
	if token := cache.GetString(ctx, cache.MpsTokenKey); token != "" {
		return token, nil
	}
	token, err := s.client.Register(ctx)
	if err != nil {
		return "", err
	}
	ttl := time.Duration(token.ExpiresIn-60) * time.Second
	if ttl > 0 {
		cache.SetString(ctx, cache.MpsTokenKey, token.AccessToken, ttl)
	}
	return token.AccessToken, nil
}

// SyncReadings fetches the current fleet counters and records one unbilled
// meter reading per matched asset. Assets the platform does not report are
// collected into the run report so an operator can chase them manually.
func (s *MpsService) SyncReadings(ctx context.Context) (*models.BillingRunReport, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("mps token: %w", err)
	}

	fleet, err := s.client.ListReadings(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("mps readings: %w", err)
	}

	// The platform reports counters newest first
	latest := make(map[string]mps.Counter, len(fleet))
	for _, device := range fleet {
		if len(device.Counters) == 0 {
			continue
		}
		latest[device.AssetNumber] = device.Counters[0]
	}

	report := &models.BillingRunReport{
		Type:         models.ReportTypeMpsSync,
		Success:      []int{},
		Failed:       []int{},
		MissingInMps: []int{},
	}

	for page := 0; ; page++ {
		assets, err := s.assets.ListActivePage(ctx, page, s.cfg.Billing.PageSize)
		if err != nil {
			return nil, fmt.Errorf("list assets page %d: %w", page, err)
		}
		if len(assets) == 0 {
			break
		}

		for _, asset := range assets {
			report.Total++
			counter, ok := latest[asset.AssetNumber]
			if !ok {
				report.MissingInMps = append(report.MissingInMps, asset.ID)
				continue
			}

			reading := &models.MeterReading{
				AssetID: asset.ID,
				Mono:    counter.Mono,
				Color:   counter.Color,
			}
			if err := s.meters.Create(ctx, reading); err != nil {
				log.Printf("[MPS] Asset %s: store reading: %v", asset.AssetNumber, err)
				report.Failed = append(report.Failed, asset.ID)
				continue
			}
			report.Success = append(report.Success, asset.ID)
		}
	}

	if err := s.reports.CreateRunReport(ctx, report); err != nil {
		return nil, fmt.Errorf("create run report: %w", err)
	}

	s.notifier.Notify(ctx, "Meter sync complete",
		fmt.Sprintf("Recorded %d reading(s), %d asset(s) missing in MPS",
			len(report.Success), len(report.MissingInMps)),
		fmt.Sprintf("/reports/%d", report.ID))
	log.Printf("[MPS] Sync complete: %d recorded, %d missing, %d failed",
		len(report.Success), len(report.MissingInMps), len(report.Failed))

	return report, nil
}
