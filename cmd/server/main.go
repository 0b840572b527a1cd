package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"copier-backend/internal/auth"
	"copier-backend/internal/cache"
	"copier-backend/internal/config"
	"copier-backend/internal/database"
	"copier-backend/internal/db"
	"copier-backend/internal/handlers"
	"copier-backend/internal/http"
	"copier-backend/internal/mailer"
	"copier-backend/internal/middleware"
	"copier-backend/internal/mps"
	"copier-backend/internal/notifications"
	"copier-backend/internal/quickbooks"
	"copier-backend/internal/repositories"
	"copier-backend/internal/services"
	"copier-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	ctx := context.Background()
	if err := database.NewMigrator(pool).RunMigrations(ctx); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	if err := cache.Init(); err != nil {
		log.Printf("[Cache] Redis unavailable, running without cache: %v", err)
	}

	// Repositories
	users := repositories.NewUserRepository(pool)
	customers := repositories.NewCustomerRepository(pool)
	assets := repositories.NewAssetRepository(pool)
	contractTypes := repositories.NewContractTypeRepository(pool)
	companies := repositories.NewCompanyRepository(pool)
	meters := repositories.NewMeterReadingRepository(pool)
	invoices := repositories.NewInvoiceRepository(pool)
	settings := repositories.NewSettingRepository(pool)
	reports := repositories.NewReportRepository(pool)
	qbTokens := repositories.NewQuickBooksRepository(pool)
	notes := repositories.NewNotificationRepository(pool)

	// External clients and infrastructure
	archiver, err := storage.NewArchiver(ctx, cfg)
	if err != nil {
		log.Fatalf("archive init failed: %v", err)
	}
	mail := mailer.New(cfg)
	qbClient := quickbooks.NewClient(cfg.QuickBooks.APIBaseURL, cfg.QuickBooks.TokenURL, qbTokens)
	mpsClient := mps.NewClient(cfg)
	hub := notifications.NewHub()

	// Services
	notifySvc := services.NewNotificationService(notes, hub)
	invoiceSvc := services.NewInvoiceService(cfg, invoices, assets, meters, customers, settings, archiver, mail)
	billingSvc := services.NewBillingService(cfg, settings, customers, assets, meters, invoices, reports, notifySvc)
	qbSvc := services.NewQuickBooksService(cfg, qbClient, qbTokens, invoices, customers, companies, invoiceSvc)
	mpsSvc := services.NewMpsService(cfg, mpsClient, assets, meters, reports, notifySvc)
	reportSvc := services.NewReportService(reports)

	jwtManager := auth.NewJWTManager(cfg)
	authMW := middleware.NewAuthMiddleware(jwtManager)

	router := http.NewRouter(cfg, authMW, &http.Handlers{
		Auth:          handlers.NewAuthHandler(users, jwtManager),
		Customers:     handlers.NewCustomerHandler(customers),
		Assets:        handlers.NewAssetHandler(assets),
		ContractTypes: handlers.NewContractTypeHandler(contractTypes),
		Companies:     handlers.NewCompanyHandler(companies),
		Meters:        handlers.NewMeterReadingHandler(meters, assets),
		Invoices:      handlers.NewInvoiceHandler(invoiceSvc, billingSvc, qbSvc),
		Settings:      handlers.NewSettingHandler(settings),
		Reports:       handlers.NewReportHandler(reportSvc),
		Notifications: handlers.NewNotificationHandler(notifySvc, hub),
		QuickBooks:    handlers.NewQuickBooksHandler(qbTokens),
		Mps:           handlers.NewMpsHandler(mpsSvc),
		Health:        handlers.NewHealthHandler(pool),
	})

	// Background retention sweep for stale unpaid invoices
	sweepCtx, stopSweep := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(cfg.Billing.SweepInterval)
		defer ticker.Stop()
		invoiceSvc.RetentionSweep(sweepCtx)
		for {
			select {
			case <-ticker.C:
				invoiceSvc.RetentionSweep(sweepCtx)
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	server := &nethttp.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		log.Printf("[Server] Listening on :%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Server] Shutting down...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Forced shutdown: %v", err)
	}
	log.Println("[Server] Stopped")
}
