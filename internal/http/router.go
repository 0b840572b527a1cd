package http

import (
	"net/http"

	"copier-backend/internal/config"
	"copier-backend/internal/handlers"
	"copier-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Auth          *handlers.AuthHandler
	Customers     *handlers.CustomerHandler
	Assets        *handlers.AssetHandler
	ContractTypes *handlers.ContractTypeHandler
	Companies     *handlers.CompanyHandler
	Meters        *handlers.MeterReadingHandler
	Invoices      *handlers.InvoiceHandler
	Settings      *handlers.SettingHandler
	Reports       *handlers.ReportHandler
	Notifications *handlers.NotificationHandler
	QuickBooks    *handlers.QuickBooksHandler
	Mps           *handlers.MpsHandler
	Health        *handlers.HealthHandler
}

// NewRouter wires all routes behind the shared middleware stack
func NewRouter(cfg *config.Config, authMW *middleware.AuthMiddleware, h *Handlers) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.PanicRecovery)
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.APILogging)

	// Public
	r.HandleFunc("/health", h.Health.Check).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/register", h.Auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.Auth.Login).Methods(http.MethodPost)

	// Authenticated API
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMW.Authenticate)

	api.HandleFunc("/customers", h.Customers.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers", h.Customers.List).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customers.Get).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customers.Update).Methods(http.MethodPut)
	api.HandleFunc("/customers/{customerId:[0-9]+}/assets", h.Assets.ListByCustomer).Methods(http.MethodGet)
	api.HandleFunc("/customers/{customerId:[0-9]+}/invoices", h.Invoices.GenerateForCustomer).Methods(http.MethodPost)

	api.HandleFunc("/assets", h.Assets.Create).Methods(http.MethodPost)
	api.HandleFunc("/assets/{id:[0-9]+}", h.Assets.Get).Methods(http.MethodGet)
	api.HandleFunc("/assets/{id:[0-9]+}", h.Assets.Update).Methods(http.MethodPut)
	api.HandleFunc("/assets/{id:[0-9]+}", h.Assets.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/assets/{assetId:[0-9]+}/readings", h.Meters.ListByAsset).Methods(http.MethodGet)
	api.HandleFunc("/assets/{assetId:[0-9]+}/audits", h.Reports.ListAudits).Methods(http.MethodGet)
	api.HandleFunc("/assets/{assetId:[0-9]+}/audits/export", h.Reports.ExportAudits).Methods(http.MethodGet)

	api.HandleFunc("/contract-types", h.ContractTypes.Create).Methods(http.MethodPost)
	api.HandleFunc("/contract-types", h.ContractTypes.List).Methods(http.MethodGet)
	api.HandleFunc("/contract-types/{id:[0-9]+}", h.ContractTypes.Update).Methods(http.MethodPut)

	api.HandleFunc("/companies", h.Companies.Create).Methods(http.MethodPost)
	api.HandleFunc("/companies", h.Companies.List).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id:[0-9]+}", h.Companies.Update).Methods(http.MethodPut)

	api.HandleFunc("/readings", h.Meters.Create).Methods(http.MethodPost)
	api.HandleFunc("/readings/sync", h.Mps.Sync).Methods(http.MethodPost)

	api.HandleFunc("/invoices", h.Invoices.List).Methods(http.MethodGet)
	api.HandleFunc("/invoices/generate", h.Invoices.GenerateBills).Methods(http.MethodPost)
	api.HandleFunc("/invoices/quickbooks/post", h.Invoices.PostUnsynced).Methods(http.MethodPost)
	api.HandleFunc("/invoices/quickbooks/reconcile", h.Invoices.Reconcile).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id:[0-9]+}", h.Invoices.Get).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id:[0-9]+}", h.Invoices.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/invoices/{id:[0-9]+}/status", h.Invoices.UpdateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/invoices/{id:[0-9]+}/send", h.Invoices.Send).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id:[0-9]+}/quickbooks", h.Invoices.SyncToQuickBooks).Methods(http.MethodPost)

	api.HandleFunc("/settings", h.Settings.Get).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.Settings.Update).Methods(http.MethodPut)

	api.HandleFunc("/reports", h.Reports.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id:[0-9]+}", h.Reports.GetRun).Methods(http.MethodGet)

	api.HandleFunc("/notifications", h.Notifications.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read-all", h.Notifications.MarkAllRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", h.Notifications.MarkRead).Methods(http.MethodPost)

	api.HandleFunc("/quickbooks/config", h.QuickBooks.Configure).Methods(http.MethodPut)
	api.HandleFunc("/quickbooks/config/{companyId:[0-9]+}", h.QuickBooks.GetConfig).Methods(http.MethodGet)

	// Websocket carries its token in the query string, not the header
	r.HandleFunc("/ws/notifications", h.Notifications.Stream)

	return middleware.NewCORS(cfg)(r)
}
