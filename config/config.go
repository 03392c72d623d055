package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Ledger    LedgerConfig
	Captcha   CaptchaConfig
	Security  SecurityConfig
	Cooldowns CooldownConfig
	Games     GamesConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RedisConfig holds Redis configuration. Redis backs the session,
// rate-limit and run stores; when disabled the service falls back to
// in-process stores suitable for a single instance.
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// DatabaseConfig holds PostgreSQL configuration for the action audit log.
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LedgerConfig holds the chain connection and the game master account.
type LedgerConfig struct {
	RPCURL          string
	ContractAddress string
	GameMasterKey   string // hex-encoded private key, no 0x prefix
	ChainID         int64
	ReceiptTimeout  time.Duration
	GasLimit        uint64
}

// CaptchaConfig holds the human-verification service configuration.
type CaptchaConfig struct {
	VerifyURL      string
	Secret         string
	ScoreThreshold float64
	Timeout        time.Duration
}

// SecurityConfig holds session and request-validation configuration.
type SecurityConfig struct {
	AllowedOrigin    string
	CSRFTokenLength  int
	SessionTTL       time.Duration
	SignedMessage    string // the message wallets sign to bind an address
	SecureCookies    bool
	CookieDomain     string
	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int
}

// CooldownConfig holds per-action fixed-window cooldowns.
type CooldownConfig struct {
	CreateGame  time.Duration
	EndRun      time.Duration
	MintTickets time.Duration
}

// GamesConfig holds anti-cheat tuning shared by all game kinds.
type GamesConfig struct {
	// TimingJitter is the allowance applied when comparing a claimed
	// score against the server-observed elapsed time.
	TimingJitter time.Duration

	// TelemetryScoreThreshold gates the telemetry cross-check; runs
	// below it skip the expensive filter.
	TelemetryScoreThreshold int64

	// RunTTL bounds how long a started run may wait for its end action.
	RunTTL time.Duration
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level           string
	Environment     string
	StoreEnabled    bool
	StorePath       string
	AsyncBufferSize int
	RetentionDays   int
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Redis: RedisConfig{
			Enabled:      getEnvBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "arcade"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "arcade_gate"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Ledger: LedgerConfig{
			RPCURL:          getEnv("LEDGER_RPC_URL", "http://localhost:8545"),
			ContractAddress: getEnv("LEDGER_CONTRACT_ADDRESS", ""),
			GameMasterKey:   getEnv("GAME_MASTER_PRIVATE_KEY", ""),
			ChainID:         getEnvInt64("LEDGER_CHAIN_ID", 84532), // Base Sepolia
			ReceiptTimeout:  getEnvDuration("LEDGER_RECEIPT_TIMEOUT", 60*time.Second),
			GasLimit:        uint64(getEnvInt64("LEDGER_GAS_LIMIT", 300000)),
		},
		Captcha: CaptchaConfig{
			VerifyURL:      getEnv("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
			Secret:         getEnv("RECAPTCHA_SECRET", ""),
			ScoreThreshold: getEnvFloat("RECAPTCHA_SCORE_THRESHOLD", 0.4),
			Timeout:        getEnvDuration("RECAPTCHA_TIMEOUT", 10*time.Second),
		},
		Security: SecurityConfig{
			AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
			CSRFTokenLength:  getEnvInt("CSRF_TOKEN_LENGTH", 32),
			SessionTTL:       getEnvDuration("SESSION_TTL", 24*time.Hour),
			SignedMessage:    getEnv("GAME_SIGNED_MESSAGE", "Sign this message to play arcade games with your wallet."),
			SecureCookies:    getEnvBool("SECURE_COOKIES", true),
			CookieDomain:     getEnv("COOKIE_DOMAIN", ""),
			RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			RateLimitRPS:     getEnvInt("RATE_LIMIT_RPS", 20),
			RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 40),
		},
		Cooldowns: CooldownConfig{
			CreateGame:  getEnvDuration("COOLDOWN_CREATE_GAME", 25*time.Minute),
			EndRun:      getEnvDuration("COOLDOWN_END_RUN", 30*time.Second),
			MintTickets: getEnvDuration("COOLDOWN_MINT_TICKETS", 25*time.Minute),
		},
		Games: GamesConfig{
			TimingJitter:            getEnvDuration("GAME_TIMING_JITTER", 3*time.Second),
			TelemetryScoreThreshold: getEnvInt64("GAME_TELEMETRY_SCORE_THRESHOLD", 300),
			RunTTL:                  getEnvDuration("GAME_RUN_TTL", 30*time.Minute),
		},
		Logging: LoggingConfig{
			Level:           getEnv("LOG_LEVEL", "info"),
			Environment:     getEnv("LOG_ENVIRONMENT", "development"),
			StoreEnabled:    getEnvBool("LOG_STORE_ENABLED", false),
			StorePath:       getEnv("LOG_STORE_PATH", "./data/logs.db"),
			AsyncBufferSize: getEnvInt("LOG_ASYNC_BUFFER_SIZE", 1000),
			RetentionDays:   getEnvInt("LOG_RETENTION_DAYS", 7),
		},
	}
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

// Addr returns the Redis address.
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
