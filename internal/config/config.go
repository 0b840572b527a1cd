package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Billing struct {
		MinCharge     float64       `mapstructure:"min_charge"`
		CooldownHours int           `mapstructure:"cooldown_hours"`
		PageSize      int           `mapstructure:"page_size"`
		Workers       int           `mapstructure:"workers"`
		RetentionDays int           `mapstructure:"retention_days"`
		SweepInterval time.Duration `mapstructure:"sweep_interval"`
	} `mapstructure:"billing"`

	QuickBooks struct {
		APIBaseURL string `mapstructure:"api_base_url"`
		TokenURL   string `mapstructure:"token_url"`
	} `mapstructure:"quickbooks"`

	MPS struct {
		BaseURL      string `mapstructure:"base_url"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		GrantType    string `mapstructure:"grant_type"`
		Username     string `mapstructure:"username"`
		Password     string `mapstructure:"password"`
		Scope        string `mapstructure:"scope"`
		DealerCode   string `mapstructure:"dealer_code"`
	} `mapstructure:"mps"`

	SMTP struct {
		Host      string `mapstructure:"host"`
		Port      int    `mapstructure:"port"`
		Username  string `mapstructure:"username"`
		Password  string `mapstructure:"password"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"smtp"`

	Archive struct {
		Enabled   bool   `mapstructure:"enabled"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"archive"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "copier-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "copier_db")
	v.SetDefault("billing.min_charge", 3)
	v.SetDefault("billing.cooldown_hours", 24)
	v.SetDefault("billing.page_size", 50)
	v.SetDefault("billing.workers", 8)
	v.SetDefault("billing.retention_days", 183)
	v.SetDefault("billing.sweep_interval", 24*time.Hour)
	v.SetDefault("quickbooks.api_base_url", "https://quickbooks.api.intuit.com/v3/company")
	v.SetDefault("quickbooks.token_url", "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer")
	v.SetDefault("mps.grant_type", "password")
	v.SetDefault("smtp.port", 587)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	// Override JWT secret from environment if not set
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			log.Fatal("JWT_SECRET not found in environment or config file")
		}
	}

	// MPS credentials from environment
	if id := os.Getenv("MPS_CLIENT_ID"); id != "" {
		cfg.MPS.ClientID = id
	}
	if secret := os.Getenv("MPS_CLIENT_SECRET"); secret != "" {
		cfg.MPS.ClientSecret = secret
	}
	if user := os.Getenv("MPS_USERNAME"); user != "" {
		cfg.MPS.Username = user
	}
	if pass := os.Getenv("MPS_PASSWORD"); pass != "" {
		cfg.MPS.Password = pass
	}
	if dealer := os.Getenv("MPS_DEALER_CODE"); dealer != "" {
		cfg.MPS.DealerCode = dealer
	}

	// SMTP credentials from environment
	if user := os.Getenv("SMTP_USERNAME"); user != "" {
		cfg.SMTP.Username = user
	}
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		cfg.SMTP.Password = pass
	}

	// Archive credentials from environment
	if key := os.Getenv("ARCHIVE_ACCESS_KEY"); key != "" {
		cfg.Archive.AccessKey = key
	}
	if key := os.Getenv("ARCHIVE_SECRET_KEY"); key != "" {
		cfg.Archive.SecretKey = key
	}

	return &cfg
}
