package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Storage    StorageConfig
	Mail       MailConfig
	Push       PushConfig
	LLM        LLMConfig
	Stripe     StripeConfig
	Scheduler  SchedulerConfig
	Telemetry  TelemetryConfig
	Authz      AuthzConfig
	Leave      LeaveConfig
	Payroll    PayrollConfig
	Document   DocumentConfig
	Invitation InvitationConfig
	Chat       ChatConfig
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
	// PublicURL is the client base used in emailed links
	PublicURL        string
	SupportedLocales []string
	DefaultLocale    string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	MigrationsPath  string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	MaxRefreshCount        int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	ShutdownTimeout       time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitEnabled  bool          // Stricter limit on login and invitation accept
	AuthRateLimitRequests int           // Max auth attempts per window (default: 5)
	AuthRateLimitWindow   time.Duration // Auth window (default: 1 minute)
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignExpiry   time.Duration
}

// MailConfig holds SMTP settings for outbound mail
type MailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// PushConfig holds FCM HTTP v1 settings
type PushConfig struct {
	Enabled     bool
	ProjectID   string
	Endpoint    string // override for tests, defaults to the public FCM endpoint
	AccessToken string // static bearer token, used when no credentials file is set
	// CredentialsFile is a Google service account JSON used to mint tokens
	CredentialsFile string
	Timeout         time.Duration
}

// LLMConfig holds the OpenAI-compatible gateway used for translation
type LLMConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// StripeConfig holds the Stripe subscription settings
type StripeConfig struct {
	Enabled        bool
	SecretKey      string
	StandardPrice  string // price id mapped to the standard plan
	PremiumPrice   string // price id mapped to the premium plan
	GracePeriod    time.Duration
	CheckCacheTTL  time.Duration
	WebhookSecret  string
	EnforceWrites  bool
	RequestTimeout time.Duration
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	Enabled              bool
	PayrollReminderCron  string
	DocumentReminderCron string
	InvitationExpiryCron string
	LeaveYearCron        string
	ProfileExpiryCron    string
	JobTimeout           time.Duration
}

// TelemetryConfig holds OpenTelemetry and metrics configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry tracing
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool    // Expose /metrics
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
	// LogsEnabled also ships zap entries to the collector
	LogsEnabled bool
	// Continuous profiling (Pyroscope)
	ProfilingEnabled bool
	ProfilerAddress  string // e.g. http://pyroscope:4040
	ProfilerAuthUser string // optional basic auth for hosted Pyroscope
	ProfilerAuthPass string
	ProfileTypes     []string // cpu, alloc_objects, alloc_space, inuse_objects, inuse_space, goroutines, mutex, block
}

// AuthzConfig points at the role policy file
type AuthzConfig struct {
	PolicyFile string // empty uses the embedded default policy
	Mode       string // enforce, shadow or disabled
}

// LeaveConfig holds leave policy knobs
type LeaveConfig struct {
	EnforceBalance bool
}

// PayrollConfig holds payroll policy knobs
type PayrollConfig struct {
	DefaultCurrency      string
	ReminderAfter        time.Duration // remind employees who have not confirmed after this long
	ReminderRepeat       time.Duration // minimum gap between two reminders for one record
	PayslipRenderTimeout time.Duration
	ChromeExecPath       string
}

// DocumentConfig holds document policy knobs
type DocumentConfig struct {
	DiscussionReminderAfter time.Duration
	ExpiryNoticeDays        int
	ExportMaxDocuments      int
}

// InvitationConfig holds invitation settings
type InvitationConfig struct {
	TTL time.Duration
}

// ChatConfig holds realtime chat settings
type ChatConfig struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	SendBufferSize int
	PubSubChannel  string
	PollInterval   time.Duration // cadence advertised to polling clients
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with HR_ prefix (e.g., HR_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/hrportal")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("HR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:             v.GetString("app.name"),
			Env:              v.GetString("app.env"),
			Port:             v.GetString("app.port"),
			PublicURL:        v.GetString("app.public_url"),
			SupportedLocales: v.GetStringSlice("app.supported_locales"),
			DefaultLocale:    v.GetString("app.default_locale"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			MigrationsPath:  v.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:           v.GetDuration("http.read_timeout"),
			WriteTimeout:          v.GetDuration("http.write_timeout"),
			IdleTimeout:           v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:       v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
			MaxBodySize:           v.GetInt64("http.max_body_size"),
			RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
			AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PresignExpiry:   v.GetDuration("storage.presign_expiry"),
		},
		Mail: MailConfig{
			Enabled:  v.GetBool("mail.enabled"),
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
		Push: PushConfig{
			Enabled:         v.GetBool("push.enabled"),
			ProjectID:       v.GetString("push.project_id"),
			Endpoint:        v.GetString("push.endpoint"),
			AccessToken:     v.GetString("push.access_token"),
			CredentialsFile: v.GetString("push.credentials_file"),
			Timeout:         v.GetDuration("push.timeout"),
		},
		LLM: LLMConfig{
			Enabled: v.GetBool("llm.enabled"),
			BaseURL: v.GetString("llm.base_url"),
			APIKey:  v.GetString("llm.api_key"),
			Model:   v.GetString("llm.model"),
			Timeout: v.GetDuration("llm.timeout"),
		},
		Stripe: StripeConfig{
			Enabled:        v.GetBool("stripe.enabled"),
			SecretKey:      v.GetString("stripe.secret_key"),
			StandardPrice:  v.GetString("stripe.standard_price"),
			PremiumPrice:   v.GetString("stripe.premium_price"),
			GracePeriod:    v.GetDuration("stripe.grace_period"),
			CheckCacheTTL:  v.GetDuration("stripe.check_cache_ttl"),
			WebhookSecret:  v.GetString("stripe.webhook_secret"),
			EnforceWrites:  v.GetBool("stripe.enforce_writes"),
			RequestTimeout: v.GetDuration("stripe.request_timeout"),
		},
		Scheduler: SchedulerConfig{
			Enabled:              v.GetBool("scheduler.enabled"),
			PayrollReminderCron:  v.GetString("scheduler.payroll_reminder_cron"),
			DocumentReminderCron: v.GetString("scheduler.document_reminder_cron"),
			InvitationExpiryCron: v.GetString("scheduler.invitation_expiry_cron"),
			LeaveYearCron:        v.GetString("scheduler.leave_year_cron"),
			ProfileExpiryCron:    v.GetString("scheduler.profile_expiry_cron"),
			JobTimeout:           v.GetDuration("scheduler.job_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilerAddress:   v.GetString("telemetry.profiler_address"),
			ProfilerAuthUser:  v.GetString("telemetry.profiler_auth_user"),
			ProfilerAuthPass:  v.GetString("telemetry.profiler_auth_password"),
			ProfileTypes:      v.GetStringSlice("telemetry.profile_types"),
		},
		Authz: AuthzConfig{
			PolicyFile: v.GetString("authz.policy_file"),
			Mode:       v.GetString("authz.mode"),
		},
		Leave: LeaveConfig{
			EnforceBalance: !v.IsSet("leave.enforce_balance") || v.GetBool("leave.enforce_balance"),
		},
		Payroll: PayrollConfig{
			DefaultCurrency:      v.GetString("payroll.default_currency"),
			ReminderAfter:        v.GetDuration("payroll.reminder_after"),
			ReminderRepeat:       v.GetDuration("payroll.reminder_repeat"),
			PayslipRenderTimeout: v.GetDuration("payroll.payslip_render_timeout"),
			ChromeExecPath:       v.GetString("payroll.chrome_exec_path"),
		},
		Document: DocumentConfig{
			DiscussionReminderAfter: v.GetDuration("document.discussion_reminder_after"),
			ExpiryNoticeDays:        v.GetInt("document.expiry_notice_days"),
			ExportMaxDocuments:      v.GetInt("document.export_max_documents"),
		},
		Invitation: InvitationConfig{
			TTL: v.GetDuration("invitation.ttl"),
		},
		Chat: ChatConfig{
			PingInterval:   v.GetDuration("chat.ping_interval"),
			WriteTimeout:   v.GetDuration("chat.write_timeout"),
			SendBufferSize: v.GetInt("chat.send_buffer_size"),
			PubSubChannel:  v.GetString("chat.pubsub_channel"),
			PollInterval:   v.GetDuration("chat.poll_interval"),
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
		cfg.App.Name = "hrportal"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.PublicURL == "" {
		cfg.App.PublicURL = "http://localhost:3000"
	}
	if len(cfg.App.SupportedLocales) == 0 {
		cfg.App.SupportedLocales = []string{"en", "zh-Hant", "zh-Hans", "id", "fil"}
	}
	if cfg.App.DefaultLocale == "" {
		cfg.App.DefaultLocale = "en"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "hrportal"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 168 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "hrportal"
	}
	if cfg.JWT.MaxRefreshCount == 0 {
		cfg.JWT.MaxRefreshCount = 10
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
		cfg.HTTP.WriteTimeout = 60 * time.Second // ZIP export streams for a while
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 15 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 5
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	// CORS origins have no wildcard fallback. An empty list allows no
	// cross-origin requests until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Accept-Language"}
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "hrportal-documents"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = 15 * time.Minute
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = "no-reply@hrportal.local"
	}
	if cfg.Push.Timeout == 0 {
		cfg.Push.Timeout = 10 * time.Second
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	if cfg.Stripe.GracePeriod == 0 {
		cfg.Stripe.GracePeriod = 7 * 24 * time.Hour
	}
	if cfg.Stripe.CheckCacheTTL == 0 {
		cfg.Stripe.CheckCacheTTL = time.Hour
	}
	if cfg.Stripe.RequestTimeout == 0 {
		cfg.Stripe.RequestTimeout = 30 * time.Second
	}
	if cfg.Scheduler.PayrollReminderCron == "" {
		cfg.Scheduler.PayrollReminderCron = "0 9 * * *"
	}
	if cfg.Scheduler.DocumentReminderCron == "" {
		cfg.Scheduler.DocumentReminderCron = "30 9 * * *"
	}
	if cfg.Scheduler.InvitationExpiryCron == "" {
		cfg.Scheduler.InvitationExpiryCron = "0 * * * *"
	}
	if cfg.Scheduler.LeaveYearCron == "" {
		cfg.Scheduler.LeaveYearCron = "5 0 1 1 *"
	}
	if cfg.Scheduler.ProfileExpiryCron == "" {
		cfg.Scheduler.ProfileExpiryCron = "0 8 * * *"
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 10 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "hrportal"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if len(cfg.Telemetry.ProfileTypes) == 0 {
		cfg.Telemetry.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}
	if cfg.Authz.Mode == "" {
		cfg.Authz.Mode = "enforce"
	}
	if cfg.Payroll.DefaultCurrency == "" {
		cfg.Payroll.DefaultCurrency = "USD"
	}
	if cfg.Payroll.ReminderAfter == 0 {
		cfg.Payroll.ReminderAfter = 72 * time.Hour
	}
	if cfg.Payroll.ReminderRepeat == 0 {
		cfg.Payroll.ReminderRepeat = 24 * time.Hour
	}
	if cfg.Payroll.PayslipRenderTimeout == 0 {
		cfg.Payroll.PayslipRenderTimeout = 30 * time.Second
	}
	if cfg.Document.DiscussionReminderAfter == 0 {
		cfg.Document.DiscussionReminderAfter = 48 * time.Hour
	}
	if cfg.Document.ExpiryNoticeDays == 0 {
		cfg.Document.ExpiryNoticeDays = 30
	}
	if cfg.Document.ExportMaxDocuments == 0 {
		cfg.Document.ExportMaxDocuments = 500
	}
	if cfg.Invitation.TTL == 0 {
		cfg.Invitation.TTL = 7 * 24 * time.Hour
	}
	if cfg.Chat.PingInterval == 0 {
		cfg.Chat.PingInterval = 30 * time.Second
	}
	if cfg.Chat.WriteTimeout == 0 {
		cfg.Chat.WriteTimeout = 10 * time.Second
	}
	if cfg.Chat.SendBufferSize == 0 {
		cfg.Chat.SendBufferSize = 32
	}
	if cfg.Chat.PubSubChannel == "" {
		cfg.Chat.PubSubChannel = "hrportal:chat"
	}
	if cfg.Chat.PollInterval == 0 {
		cfg.Chat.PollInterval = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Authz.Mode == "disabled" {
			return fmt.Errorf("authz.mode cannot be 'disabled' in production")
		}
		if c.Stripe.Enabled && c.Stripe.SecretKey == "" {
			return fmt.Errorf("stripe.secret_key is required when stripe is enabled in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilerAddress == "" {
		return fmt.Errorf("telemetry.profiler_address is required when profiling is enabled")
	}
	if c.Push.Enabled && c.Push.ProjectID == "" {
		return fmt.Errorf("push.project_id is required when push is enabled")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if c.Document.ExpiryNoticeDays < 0 {
		return fmt.Errorf("document.expiry_notice_days cannot be negative")
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
