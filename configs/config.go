package configs

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Email     EmailConfig
	Redis     RedisConfig
	Reset     ResetConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Debug     DebugConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
	// PublicURL is the production URL of the web app (APP_BASE_URL).
	PublicURL string
	// PlatformURL is the URL injected by the hosting platform (RENDER_EXTERNAL_URL).
	PlatformURL string
	// TrustedProxies lists the proxy ranges whose X-Forwarded-For is believed.
	// Empty means the client IP is the TCP peer address.
	TrustedProxies []*net.IPNet
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

type EmailConfig struct {
	// Provider selects the outbound sender: sendgrid, smtp, ses or log.
	Provider       string
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	CompanyName    string
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	SMTPUseTLS     bool
	SESRegion      string
	SESAccessKey   string
	SESSecretKey   string
	SendTimeout    time.Duration
	QueueSize      int
	Workers        int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
	UserCacheTTL time.Duration
}

type ResetConfig struct {
	// Store selects the token backend: memory, redis or postgres.
	Store           string
	CleanupInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	Window            time.Duration
	KeyPrefix         string
}

type DebugConfig struct {
	EndpointsEnabled bool
	// JWTSecret guards the diagnostic endpoints when non-empty.
	JWTSecret string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:    getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:     getEnv("TLS_KEY_FILE", ""),
			AllowedOrigins: getListEnv("ALLOWED_ORIGINS", []string{"*"}),
			Environment:    getEnv("APP_ENV", "development"),
			PublicURL:      getEnv("APP_BASE_URL", ""),
			PlatformURL:    getEnv("RENDER_EXTERNAL_URL", ""),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "career_assistant"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			MigrationsPath:  getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		},
		Email: EmailConfig{
			Provider:       strings.ToLower(getEnv("EMAIL_PROVIDER", "log")),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("FROM_EMAIL", "noreply@example.com"),
			FromName:       getEnv("FROM_NAME", "AI Career Assistant"),
			CompanyName:    getEnv("COMPANY_NAME", "AI Career Assistant"),
			SMTPHost:       getEnv("SMTP_HOST", ""),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			SMTPUser:       getEnv("SMTP_USER", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
			SMTPUseTLS:     getBoolEnv("SMTP_USE_TLS", false),
			SESRegion:      getEnv("AWS_REGION", "us-east-1"),
			SESAccessKey:   getEnv("AWS_ACCESS_KEY_ID", ""),
			SESSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
			SendTimeout:    getDurationEnv("MAIL_SEND_TIMEOUT", 10*time.Second),
			QueueSize:      getIntEnv("MAIL_QUEUE_SIZE", 100),
			Workers:        getIntEnv("MAIL_WORKERS", 2),
		},
		Redis: RedisConfig{
			Enabled:      getBoolEnv("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
			UserCacheTTL: getDurationEnv("REDIS_USER_CACHE_TTL", 3*time.Minute),
		},
		Reset: ResetConfig{
			Store:           strings.ToLower(getEnv("RESET_TOKEN_STORE", "memory")),
			CleanupInterval: getDurationEnv("RESET_TOKEN_CLEANUP_INTERVAL", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolEnv("RATE_LIMIT_ENABLED", true),
			RequestsPerWindow: getIntEnv("RATE_LIMIT_FORGOT_PASSWORD", 5),
			Window:            getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
			KeyPrefix:         getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit:forgot_password"),
		},
		Debug: DebugConfig{
			EndpointsEnabled: getBoolEnv("DEBUG_ENDPOINTS_ENABLED", false),
			JWTSecret:        getEnv("DEBUG_JWT_SECRET", ""),
		},
	}

	// Build database DSN
	cfg.Database.DSN = getEnv("DATABASE_URL", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	))

	proxies, err := parseCIDRs(getListEnv("TRUSTED_PROXIES", nil))
	if err != nil {
		return nil, err
	}
	cfg.Server.TrustedProxies = proxies

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Reset.Store {
	case "memory", "postgres":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("RESET_TOKEN_STORE=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("unknown RESET_TOKEN_STORE %q", c.Reset.Store)
	}

	switch c.Email.Provider {
	case "log", "ses":
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("EMAIL_PROVIDER=sendgrid requires SENDGRID_API_KEY")
		}
	case "smtp":
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("EMAIL_PROVIDER=smtp requires SMTP_HOST")
		}
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Email.Provider)
	}

	if c.Debug.EndpointsEnabled && c.Debug.JWTSecret == "" && c.Server.IsProduction() {
		return fmt.Errorf("DEBUG_ENDPOINTS_ENABLED in production requires DEBUG_JWT_SECRET")
	}

	return nil
}

// BaseURL resolves the public address used in links sent by email.
// Precedence: configured production URL, platform-provided URL, local host/port.
func (s ServerConfig) BaseURL() string {
	if s.PublicURL != "" {
		return strings.TrimRight(s.PublicURL, "/")
	}
	if s.PlatformURL != "" {
		return strings.TrimRight(s.PlatformURL, "/")
	}
	host := s.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", host, s.Port)
}

func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// parseCIDRs accepts CIDR ranges and bare addresses (treated as a single host).
func parseCIDRs(values []string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, v := range values {
		if !strings.Contains(v, "/") {
			ip := net.ParseIP(v)
			if ip == nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", v)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", v, err)
		}
		out = append(out, ipNet)
	}
	return out, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
