package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory    = "memory"
	StorageSQLite    = "sqlite"
	StorageFirestore = "firestore"

	defaultSessionSecret = "repair_secret"
)

type Config struct {
	ServerPort  string
	Environment string

	StorageDriver string
	SQLitePath    string

	FirebaseProject            string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string

	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookieName string
	CookieSecure      bool

	FrontendOrigin string
	NATSURL        string

	// CIDRs of reverse proxies whose X-Forwarded-For is trusted. Empty means
	// the client IP is always the connection's remote address.
	TrustedProxies []string

	// Requests per minute per client IP on sign-in and sign-up routes.
	AuthRateLimit int
	// Chat messages per minute per principal.
	MessageRateLimit int
}

// Load reads envFile (if present) into the process environment and builds a
// Config from it. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFile)

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "3001"),
		Environment: getEnv("ENVIRONMENT", "development"),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		SQLitePath:    getEnv("SQLITE_PATH", "repair.db"),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		SessionSecret:     getEnv("SESSION_SECRET", defaultSessionSecret),
		SessionTTL:        time.Duration(getEnvAsInt64("SESSION_TTL", 24*60*60)) * time.Second,
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "repair.sid"),
		CookieSecure:      getEnvAsBool("COOKIE_SECURE", false),

		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		NATSURL:        getEnv("NATS_URL", ""),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		AuthRateLimit:    int(getEnvAsInt64("AUTH_RATE_LIMIT", 10)),
		MessageRateLimit: int(getEnvAsInt64("MESSAGE_RATE_LIMIT", 30)),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsTest() bool {
	return c.Environment == "test"
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite:
	case StorageFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.IsProduction() && c.SessionSecret == defaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	if _, err := c.TrustedProxyNets(); err != nil {
		return err
	}
	return nil
}

func (c *Config) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))
	for _, cidr := range c.TrustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", cidr, err)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
