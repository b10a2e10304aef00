package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"

	AIProviderOpenAI   = "openai"
	AIProviderOllama   = "ollama"
	AIProviderDisabled = "disabled"

	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultOllamaBaseURL = "http://localhost:11434"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Security SecurityConfig `toml:"security"`
	AI       AIConfig       `toml:"ai"`
}

type ServerConfig struct {
	Port             string        `toml:"port"`
	Host             string        `toml:"host"`
	Environment      string        `toml:"environment"`
	LogLevel         string        `toml:"log_level"`
	ReadTimeout      time.Duration `toml:"read_timeout"`
	WriteTimeout     time.Duration `toml:"write_timeout"`
	CORSAllowOrigins []string      `toml:"cors_allow_origins"`
	StaticDir        string        `toml:"static_dir"`
}

type DatabaseConfig struct {
	Driver          string        `toml:"driver"`
	Host            string        `toml:"host"`
	Port            string        `toml:"port"`
	User            string        `toml:"user"`
	Password        string        `toml:"password"`
	Name            string        `toml:"name"`
	SSLMode         string        `toml:"ssl_mode"`
	SQLitePath      string        `toml:"sqlite_path"`
	MaxConnections  int           `toml:"max_connections"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	AutoMigrate     bool          `toml:"auto_migrate"`
	MigrationsPath  string        `toml:"migrations_path"`
}

// SessionConfig controls the session cookie and the signed token it carries.
type SessionConfig struct {
	CookieName   string          `toml:"cookie_name"`
	MaxAge       time.Duration   `toml:"max_age"`
	SecureCookie bool            `toml:"secure_cookie"`
	Issuer       string          `toml:"issuer"`
	PrivateKey   *rsa.PrivateKey `toml:"-"`
	PublicKey    *rsa.PublicKey  `toml:"-"`
}

type SecurityConfig struct {
	BCryptCost                  int  `toml:"bcrypt_cost"`
	PasswordMinLength           int  `toml:"password_min_length"`
	RateLimitPerSecond          int  `toml:"rate_limit_per_second"`
	RateLimitBurst              int  `toml:"rate_limit_burst"`
	EnforceTransactionOwnership bool `toml:"enforce_transaction_ownership"`
}

// AIConfig selects and configures the text generation backend used for advice.
type AIConfig struct {
	Provider                string        `toml:"provider"`
	APIKey                  string        `toml:"api_key"`
	BaseURL                 string        `toml:"base_url"`
	Model                   string        `toml:"model"`
	Timeout                 time.Duration `toml:"timeout"`
	CircuitBreakerFailures  int           `toml:"circuit_breaker_failures"`
	CircuitBreakerResetTime time.Duration `toml:"circuit_breaker_reset_time"`
}

// Default returns the configuration used when neither a file nor the
// environment provides a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "4000",
			Host:         "0.0.0.0",
			Environment:  EnvDevelopment,
			LogLevel:     "info",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
			StaticDir:    "frontend/dist",
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            "5432",
			User:            "finance_user",
			Password:        "finance_password",
			Name:            "finance_db",
			SSLMode:         "disable",
			SQLitePath:      "finance.db",
			MaxConnections:  25,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			MigrationsPath:  "db/migrations",
		},
		Session: SessionConfig{
			CookieName: "finance_session",
			MaxAge:     7 * 24 * time.Hour,
			Issuer:     "finance-tracker",
		},
		Security: SecurityConfig{
			BCryptCost:         10,
			PasswordMinLength:  6,
			RateLimitPerSecond: 20,
			RateLimitBurst:     40,
		},
		AI: AIConfig{
			Provider:                AIProviderOpenAI,
			BaseURL:                 DefaultGeminiBaseURL,
			Model:                   "gemini-2.0-flash",
			Timeout:                 60 * time.Second,
			CircuitBreakerFailures:  5,
			CircuitBreakerResetTime: 30 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file and the
// environment, in that order of precedence (environment wins).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.AI.APIKey == "" && cfg.AI.Provider == AIProviderOpenAI {
		slog.Warn("GEMINI_API_KEY not set, AI advice will return the fallback message")
		cfg.AI.Provider = AIProviderDisabled
	}
	if cfg.AI.Provider == AIProviderOllama && cfg.AI.BaseURL == DefaultGeminiBaseURL {
		cfg.AI.BaseURL = DefaultOllamaBaseURL
	}

	var err error
	cfg.Session.PrivateKey, cfg.Session.PublicKey, err = cfg.loadSessionKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to load RSA keys: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	s := &c.Server
	s.Port = getEnv("PORT", s.Port)
	s.Host = getEnv("SERVER_HOST", s.Host)
	s.Environment = getEnv("APP_ENV", s.Environment)
	s.LogLevel = getEnv("LOG_LEVEL", s.LogLevel)
	s.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", s.WriteTimeout)
	s.StaticDir = getEnv("STATIC_DIR", s.StaticDir)
	s.CORSAllowOrigins = c.loadCORSAllowOrigins()

	d := &c.Database
	d.Driver = getEnv("DB_DRIVER", d.Driver)
	d.Host = getEnv("DB_HOST", d.Host)
	d.Port = getEnv("DB_PORT", d.Port)
	d.User = getEnv("DB_USER", d.User)
	d.Password = getEnv("DB_PASSWORD", d.Password)
	d.Name = getEnv("DB_NAME", d.Name)
	d.SSLMode = getEnv("DB_SSL_MODE", d.SSLMode)
	d.SQLitePath = getEnv("SQLITE_PATH", d.SQLitePath)
	d.MaxConnections = getIntEnv("DB_MAX_CONNECTIONS", d.MaxConnections)
	d.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", d.MaxIdleConns)
	d.ConnMaxLifetime = getDurationEnv("DB_CONN_MAX_LIFETIME", d.ConnMaxLifetime)
	d.AutoMigrate = getBoolEnv("AUTO_MIGRATE", d.AutoMigrate)
	d.MigrationsPath = getEnv("MIGRATIONS_PATH", d.MigrationsPath)

	se := &c.Session
	se.CookieName = getEnv("SESSION_COOKIE_NAME", se.CookieName)
	se.MaxAge = getDurationEnv("SESSION_MAX_AGE", se.MaxAge)
	se.SecureCookie = getBoolEnv("SESSION_SECURE_COOKIE", se.SecureCookie || c.IsProduction())
	se.Issuer = getEnv("SESSION_ISSUER", se.Issuer)

	sec := &c.Security
	sec.BCryptCost = getIntEnv("BCRYPT_COST", sec.BCryptCost)
	sec.PasswordMinLength = getIntEnv("PASSWORD_MIN_LENGTH", sec.PasswordMinLength)
	sec.RateLimitPerSecond = getIntEnv("RATE_LIMIT_PER_SECOND", sec.RateLimitPerSecond)
	sec.RateLimitBurst = getIntEnv("RATE_LIMIT_BURST", sec.RateLimitBurst)
	sec.EnforceTransactionOwnership = getBoolEnv("ENFORCE_TRANSACTION_OWNERSHIP", sec.EnforceTransactionOwnership)

	ai := &c.AI
	ai.Provider = strings.ToLower(getEnv("AI_PROVIDER", ai.Provider))
	ai.APIKey = getEnv("GEMINI_API_KEY", ai.APIKey)
	ai.BaseURL = getEnv("AI_BASE_URL", ai.BaseURL)
	ai.Model = getEnv("AI_MODEL", ai.Model)
	ai.Timeout = getDurationEnv("AI_TIMEOUT", ai.Timeout)
	ai.CircuitBreakerFailures = getIntEnv("AI_CIRCUIT_BREAKER_FAILURES", ai.CircuitBreakerFailures)
	ai.CircuitBreakerResetTime = getDurationEnv("AI_CIRCUIT_BREAKER_RESET", ai.CircuitBreakerResetTime)
}

func (c *DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == EnvTesting
}

// Address returns the host:port pair the HTTP server binds to.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// SlogLevel maps the configured log level name onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// loadSessionKeys loads the RSA keys used to sign session tokens.
// Priority order:
// 1. SESSION_PRIVATE_KEY and SESSION_PUBLIC_KEY env vars (base64 PEM)
// 2. production without keys is an error
// 3. otherwise a fresh keypair is generated, which logs everyone out on restart
func (c *Config) loadSessionKeys() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKeyB64 := os.Getenv("SESSION_PRIVATE_KEY")
	publicKeyB64 := os.Getenv("SESSION_PUBLIC_KEY")

	if privateKeyB64 != "" && publicKeyB64 != "" {
		slog.Info("loading session RSA keypair from environment variables")
		return loadKeysFromEnvVars(privateKeyB64, publicKeyB64)
	}

	if c.IsProduction() {
		return nil, nil, errors.New("SESSION_PRIVATE_KEY and SESSION_PUBLIC_KEY environment variables must be set in production environments")
	}

	slog.Info("generating ephemeral session RSA keypair; set SESSION_PRIVATE_KEY and SESSION_PUBLIC_KEY to keep sessions across restarts")
	return GenerateRSAKeyPair()
}

func loadKeysFromEnvVars(privateKeyB64, publicKeyB64 string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKeyBytes, err := base64.StdEncoding.DecodeString(privateKeyB64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode SESSION_PRIVATE_KEY: %w", err)
	}

	publicKeyBytes, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode SESSION_PUBLIC_KEY: %w", err)
	}

	privateKey, err := loadRSAPrivateKey(privateKeyBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, err := loadRSAPublicKey(publicKeyBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return privateKey, publicKey, nil
}

// loadCORSAllowOrigins reads FRONTEND_URL / CORS_ALLOW_ORIGINS. Credentials are
// sent with every request, so a wildcard is only used outside production.
func (c *Config) loadCORSAllowOrigins() []string {
	raw := getEnv("CORS_ALLOW_ORIGINS", os.Getenv("FRONTEND_URL"))
	if raw == "" {
		if len(c.Server.CORSAllowOrigins) > 0 {
			return c.Server.CORSAllowOrigins
		}
		if c.IsProduction() {
			slog.Warn("FRONTEND_URL not set in production, cross-origin requests will be rejected")
			return []string{}
		}
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}

	origins := strings.Split(raw, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	return origins
}

// GenerateRSAKeyPair generates a new RSA key pair
func GenerateRSAKeyPair() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}

	return privateKey, &privateKey.PublicKey, nil
}

func loadRSAPrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the key")
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		return privateKey, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("not an RSA private key")
	}
	return rsaKey, nil
}

func loadRSAPublicKey(pemData []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}

	return rsaPublicKey, nil
}
