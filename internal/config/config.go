package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.  The struct is built once in main and passed by value into the
// components that need it; nothing mutates it after startup.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	BaseURL        string // public base URL used in verification email links
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	JWTAlg         string // HMAC signing algorithm, HS256 or HS512
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	EmailTTLHours  int    // email-verification token time-to-live in hours
	BcryptCost     int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The JWT algorithm is
// validated against the HS256/HS512 allow-list so a typo cannot silently
// select an unintended signing method.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		BaseURL:        getenv("APP_BASE_URL", "http://localhost:8000"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		JWTAlg:         getenv("JWT_ALG", "HS256"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		EmailTTLHours:  envInt("EMAIL_TOKEN_TTL_HOURS", 24),
		BcryptCost:     envInt("BCRYPT_COST", 10),
	}
	if cfg.JWTAlg != "HS256" && cfg.JWTAlg != "HS512" {
		log.Fatalf("JWT_ALG must be HS256 or HS512, got %q", cfg.JWTAlg)
	}
	if len(cfg.JWTSecret) < 32 {
		log.Printf("warning: JWT_SECRET is shorter than the recommended 32 bytes")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envInt reads an optional integer variable, falling back to def when the
// variable is unset.  A present but malformed value is a configuration
// mistake and aborts startup.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
