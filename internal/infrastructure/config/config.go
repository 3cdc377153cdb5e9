package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Airtime       AirtimeConfig       `mapstructure:"airtime"`
	Bluecode      BluecodeConfig      `mapstructure:"bluecode"`
	DSTV          DSTVConfig          `mapstructure:"dstv"`
	Quickteller   QuicktellerConfig   `mapstructure:"quickteller"`
	Billers       BillersConfig       `mapstructure:"billers"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr              string        `mapstructure:"addr"`
	DB                int           `mapstructure:"db"`
	Password          string        `mapstructure:"password"`
	Enabled           bool          `mapstructure:"enabled"`
	ConnectRetries    uint          `mapstructure:"connect_retries"`
	ConnectRetryDelay time.Duration `mapstructure:"connect_retry_delay"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

// AirtimeConfig covers the airtime vendor gateway.
type AirtimeConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	AccessID string `mapstructure:"access_id"`
}

// BluecodeConfig covers the Bluecode merchant API plus the static fields the
// register payload carries.
type BluecodeConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	MerchantAccess string `mapstructure:"merchant_access"`
	MerchantSecret string `mapstructure:"merchant_secret"`
	BranchExtID    string `mapstructure:"branch_ext_id"`
	Scheme         string `mapstructure:"scheme"`
	Currency       string `mapstructure:"currency"`
	Terminal       string `mapstructure:"terminal"`
	Source         string `mapstructure:"source"`
	CallbackURL    string `mapstructure:"callback_url"`
	RedirectURL    string `mapstructure:"redirect_url"`
	SuccessURL     string `mapstructure:"success_url"`
	CancelURL      string `mapstructure:"cancel_url"`
	CallbackSecret string `mapstructure:"callback_secret"`
}

// DSTVConfig covers the Multichoice vendor API. StatusURL is the read-only
// requery endpoint used when confirmation is ambiguous.
type DSTVConfig struct {
	LookupURL   string `mapstructure:"lookup_url"`
	PaymentURL  string `mapstructure:"payment_url"`
	StatusURL   string `mapstructure:"status_url"`
	MerchantID  string `mapstructure:"merchant_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	VasID       string `mapstructure:"vas_id"`
	CountryCode string `mapstructure:"country_code"`
}

// QuicktellerConfig covers the Interswitch biller catalog API.
type QuicktellerConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ClientID   string `mapstructure:"client_id"`
	SecretKey  string `mapstructure:"secret_key"`
	TerminalID string `mapstructure:"terminal_id"`
}

type BillersConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("BILLSPAY")
	v.AutomaticEnv()
	bindProcessorEnv(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billspay")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// bindProcessorEnv maps the externally mandated environment variable names
// onto config keys. Processor credentials are deliberately not validated at
// load time; a missing value surfaces as a config-missing error when the
// corresponding adapter is first invoked.
func bindProcessorEnv(v *viper.Viper) {
	bindings := map[string]string{
		"database.url":             "DATABASE_URL",
		"airtime.base_url":         "AIRTIME_API_BASE_URL",
		"airtime.api_key":          "AIRTIME_API_KEY",
		"airtime.access_id":        "ACCESS_ID",
		"bluecode.base_url":        "BLUECODE_API_BASE_URL",
		"bluecode.merchant_access": "BLUECODE_MERCHANT_ACCESS",
		"bluecode.merchant_secret": "BLUECODE_MERCHANT_SECRET",
		"bluecode.branch_ext_id":   "BLUECODE_BRANCH_EXT_ID",
		"bluecode.scheme":          "BLUECODE_SCHEME",
		"bluecode.currency":        "BLUECODE_CURRENCY",
		"bluecode.terminal":        "BLUECODE_TERMINAL",
		"bluecode.source":          "BLUECODE_SOURCE",
		"bluecode.callback_url":    "BLUECODE_CALLBACK_URL",
		"bluecode.redirect_url":    "BLUECODE_REDIRECT_URL",
		"bluecode.success_url":     "BLUECODE_SUCESS_URL",
		"bluecode.cancel_url":      "BLUECODE_CANCEL_URL",
		"bluecode.callback_secret": "BLUECODE_CALLBACK_SECRET",
		"dstv.lookup_url":          "DSTV_LOOKUP_URL",
		"dstv.payment_url":         "DSTV_PAYMENT_URL",
		"dstv.status_url":          "DSTV_STATUS_URL",
		"dstv.username":            "DSTV_USERNAME",
		"dstv.password":            "DSTV_PASSWORD",
		"quickteller.base_url":     "QUICKTELLER_BASE_URL",
		"quickteller.client_id":    "QUICKTELLER_CLIENT_ID",
		"quickteller.secret_key":   "QUICKTELLER_SECRET_KEY",
		"quickteller.terminal_id":  "INTERSWITCH_TERMINAL_ID",
	}
	for key, env := range bindings {
		// BindEnv only fails on an empty key, which cannot happen here.
		_ = v.BindEnv(key, env)
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if c.Database.URL == "" {
		errs = append(errs, fmt.Errorf("database.url is required (DATABASE_URL)"))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("redis.addr is required when redis is enabled"))
	}
	if c.Billers.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("billers.cache_ttl must not be negative"))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	// Database defaults
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.connect_retries", 5)
	v.SetDefault("redis.connect_retry_delay", "1s")

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_tracing", false)

	// Vendor defaults mirror the demo endpoints the processors ship with.
	v.SetDefault("bluecode.base_url", "https://merchant-api.acq.int.bluecode.ng")
	v.SetDefault("bluecode.scheme", "blue_code")
	v.SetDefault("bluecode.currency", "NGN")
	v.SetDefault("bluecode.terminal", "POS001")
	v.SetDefault("bluecode.source", "web")

	v.SetDefault("dstv.lookup_url", "https://mcapi-demo.herokuapp.com/vendor/lookup")
	v.SetDefault("dstv.payment_url", "https://mcapi-demo.herokuapp.com/vendor/singlepayment")
	v.SetDefault("dstv.status_url", "https://mcapi-demo.herokuapp.com/transactions/single")
	v.SetDefault("dstv.merchant_id", "test")
	v.SetDefault("dstv.vas_id", "MCA_ACCOUNT_SQ_NG")
	v.SetDefault("dstv.country_code", "NG")

	v.SetDefault("billers.cache_ttl", "10m")
}
