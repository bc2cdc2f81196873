package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Browser     BrowserConfig
	ShopVox     ShopVoxConfig
	Vendors     VendorsConfig
	Orders      OrdersConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	Storage     StorageConfig
	Swagger     SwaggerConfig
	Telemetry   TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration // add-to-cart runs are long; keep this generous
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// BrowserConfig holds the shared Chrome session settings
type BrowserConfig struct {
	UserDataDir   string        // persistent profile, keeps vendor and ShopVox cookies
	Headless      bool          // run without a window
	RemoteURL     string        // attach to a running Chrome over CDP instead of launching one
	NavTimeout    time.Duration // page navigation timeout
	ActionTimeout time.Duration // single wait/click timeout
	DownloadDir   string        // scratch directory for exported reports
}

// ShopVoxConfig holds ShopVox site settings
type ShopVoxConfig struct {
	BaseURL       string
	Email         string
	Password      string
	TimeoutMS     int // MFA wait, milliseconds
	ToOrderView   string
	OverdueView   string
	PendingView   string
	SalesRepViews map[string]string
}

// VendorSiteConfig holds one vendor site's settings
type VendorSiteConfig struct {
	BaseURL  string
	Username string
	Password string
}

// VendorsConfig holds vendor site settings
type VendorsConfig struct {
	SanMar       VendorSiteConfig
	SSActivewear VendorSiteConfig
	// Pace is the minimum gap between vendor page actions
	Pace time.Duration
}

// OrdersConfig bounds the browser fan-out
type OrdersConfig struct {
	CartConcurrency     int
	DetailConcurrency   int
	TagConcurrency      int
	DetailStartInterval time.Duration
	DetailAttempts      int
	StablePolls         int
	PollInterval        time.Duration
	MaxPolls            int
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// IdempotencyConfig holds request de-duplication settings
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // addresses or CIDRs; empty allows everyone
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	LogsLevel         string
	ProfilingEnabled  bool
	PyroscopeAddress  string
}

// defaultSalesRepViews are the per-rep pending job views
var defaultSalesRepViews = map[string]string{
	"colby":    "jobs?view=b36878a1-bdda-4eed-94ab-e42b60ac7e15",
	"courtney": "jobs?view=d2f04e58-5605-43ef-997c-4bc2b78db50f",
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ORDERBRIDGE_ prefix (e.g., ORDERBRIDGE_SHOPVOX_PASSWORD)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	// A missing .env is fine; real env vars always win over it
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ORDERBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans that default to true must be known to viper before GetBool
	v.SetDefault("browser.headless", true)
	v.SetDefault("idempotency.enabled", true)
	v.SetDefault("swagger.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Browser: BrowserConfig{
			UserDataDir:   v.GetString("browser.user_data_dir"),
			Headless:      v.GetBool("browser.headless"),
			RemoteURL:     v.GetString("browser.remote_url"),
			NavTimeout:    v.GetDuration("browser.nav_timeout"),
			ActionTimeout: v.GetDuration("browser.action_timeout"),
			DownloadDir:   v.GetString("browser.download_dir"),
		},
		ShopVox: ShopVoxConfig{
			BaseURL:       v.GetString("shopvox.base_url"),
			Email:         v.GetString("shopvox.email"),
			Password:      v.GetString("shopvox.password"),
			TimeoutMS:     v.GetInt("shopvox.timeout_ms"),
			ToOrderView:   v.GetString("shopvox.to_order_view"),
			OverdueView:   v.GetString("shopvox.overdue_view"),
			PendingView:   v.GetString("shopvox.pending_view"),
			SalesRepViews: v.GetStringMapString("shopvox.sales_rep_views"),
		},
		Vendors: VendorsConfig{
			SanMar: VendorSiteConfig{
				BaseURL:  v.GetString("vendors.sanmar.base_url"),
				Username: v.GetString("vendors.sanmar.username"),
				Password: v.GetString("vendors.sanmar.password"),
			},
			SSActivewear: VendorSiteConfig{
				BaseURL:  v.GetString("vendors.ssactivewear.base_url"),
				Username: v.GetString("vendors.ssactivewear.username"),
				Password: v.GetString("vendors.ssactivewear.password"),
			},
			Pace: v.GetDuration("vendors.pace"),
		},
		Orders: OrdersConfig{
			CartConcurrency:     v.GetInt("orders.cart_concurrency"),
			DetailConcurrency:   v.GetInt("orders.detail_concurrency"),
			TagConcurrency:      v.GetInt("orders.tag_concurrency"),
			DetailStartInterval: v.GetDuration("orders.detail_start_interval"),
			DetailAttempts:      v.GetInt("orders.detail_attempts"),
			StablePolls:         v.GetInt("orders.stable_polls"),
			PollInterval:        v.GetDuration("orders.poll_interval"),
			MaxPolls:            v.GetInt("orders.max_polls"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Idempotency: IdempotencyConfig{
			Enabled: v.GetBool("idempotency.enabled"),
			TTL:     v.GetDuration("idempotency.ttl"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			LogsLevel:         v.GetString("telemetry.logs_level"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "orderbridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 60
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "Idempotency-Key"}
	}

	if cfg.Browser.UserDataDir == "" {
		cfg.Browser.UserDataDir = "./pw-data"
	}
	if cfg.Browser.NavTimeout == 0 {
		cfg.Browser.NavTimeout = 45 * time.Second
	}
	if cfg.Browser.ActionTimeout == 0 {
		cfg.Browser.ActionTimeout = 15 * time.Second
	}

	if cfg.ShopVox.BaseURL == "" {
		cfg.ShopVox.BaseURL = "https://express.shopvox.com"
	}
	if cfg.ShopVox.TimeoutMS == 0 {
		cfg.ShopVox.TimeoutMS = 15000
	}
	if cfg.ShopVox.ToOrderView == "" {
		cfg.ShopVox.ToOrderView = "/transactions/sales-orders?view=2225c6de-1500-414d-b393-1d0a5b098fef"
	}
	if cfg.ShopVox.OverdueView == "" {
		cfg.ShopVox.OverdueView = "/jobs?view=f60b58c5-eb32-461b-9fed-05d6ac6d9ce3"
	}
	if cfg.ShopVox.PendingView == "" {
		cfg.ShopVox.PendingView = "/jobs"
	}
	if len(cfg.ShopVox.SalesRepViews) == 0 {
		cfg.ShopVox.SalesRepViews = make(map[string]string, len(defaultSalesRepViews))
		for rep, view := range defaultSalesRepViews {
			cfg.ShopVox.SalesRepViews[rep] = view
		}
	}

	if cfg.Vendors.SanMar.BaseURL == "" {
		cfg.Vendors.SanMar.BaseURL = "https://sanmar.com"
	}
	if cfg.Vendors.SSActivewear.BaseURL == "" {
		cfg.Vendors.SSActivewear.BaseURL = "https://www.ssactivewear.com"
	}
	if cfg.Vendors.Pace == 0 {
		cfg.Vendors.Pace = 50 * time.Millisecond
	}

	if cfg.Orders.CartConcurrency == 0 {
		cfg.Orders.CartConcurrency = 3
	}
	if cfg.Orders.DetailConcurrency == 0 {
		cfg.Orders.DetailConcurrency = 8
	}
	if cfg.Orders.TagConcurrency == 0 {
		cfg.Orders.TagConcurrency = 4
	}
	if cfg.Orders.DetailStartInterval == 0 {
		cfg.Orders.DetailStartInterval = 100 * time.Millisecond
	}
	if cfg.Orders.DetailAttempts == 0 {
		cfg.Orders.DetailAttempts = 4
	}
	if cfg.Orders.StablePolls == 0 {
		cfg.Orders.StablePolls = 2
	}
	if cfg.Orders.PollInterval == 0 {
		cfg.Orders.PollInterval = 200 * time.Millisecond
	}
	if cfg.Orders.MaxPolls == 0 {
		cfg.Orders.MaxPolls = 60
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "orderbridge"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.LogsLevel == "" {
		cfg.Telemetry.LogsLevel = "info"
	}
	if cfg.Telemetry.PyroscopeAddress == "" {
		cfg.Telemetry.PyroscopeAddress = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Orders.CartConcurrency <= 0 {
		return fmt.Errorf("orders.cart_concurrency must be positive")
	}
	if c.Orders.DetailConcurrency <= 0 {
		return fmt.Errorf("orders.detail_concurrency must be positive")
	}
	if c.Orders.TagConcurrency <= 0 {
		return fmt.Errorf("orders.tag_concurrency must be positive")
	}
	if c.Orders.StablePolls > c.Orders.MaxPolls {
		return fmt.Errorf("orders.stable_polls (%d) cannot exceed orders.max_polls (%d)",
			c.Orders.StablePolls, c.Orders.MaxPolls)
	}

	if c.Storage.Enabled {
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage is enabled")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage.access_key and storage.secret_key are required when storage is enabled")
		}
	}

	if c.App.Env == "production" {
		if c.ShopVox.Email == "" || c.ShopVox.Password == "" {
			return fmt.Errorf("shopvox.email and shopvox.password are required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// MFATimeout returns the ShopVox MFA wait as a duration
func (s ShopVoxConfig) MFATimeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}
