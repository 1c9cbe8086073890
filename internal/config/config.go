package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs. Token and hashing knobs fall back to sane defaults so only
// the deployment-specific values are mandatory.
type Config struct {
	Env               string // application environment (e.g. "dev", "prod")
	Port              string // HTTP port to listen on
	DBUser            string // database username
	DBPass            string // database password (optional)
	DBHost            string // database host address
	DBPort            string // database port number
	DBName            string // database name
	JWTSecret         string // secret used to sign access tokens
	JWTIssuer         string // issuer claim stamped into and required from access tokens
	AccessTTLSec      int    // access token time-to-live in seconds
	RefreshTTLDays    int    // refresh token time-to-live in days
	BcryptCost        int    // bcrypt cost for password hashing
	TokenRetentionDay int    // days a revoked/expired refresh token is kept before purge
	PurgeIntervalMin  int    // minutes between refresh-token purge sweeps
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		JWTSecret:         must("JWT_SECRET"),
		JWTIssuer:         envStr("JWT_ISSUER", "flashcards-backend"),
		AccessTTLSec:      getenvInt("ACCESS_TOKEN_TTL_SEC", 900),
		RefreshTTLDays:    getenvInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:        getenvInt("BCRYPT_COST", 12),
		TokenRetentionDay: getenvInt("TOKEN_RETENTION_DAYS", 7),
		PurgeIntervalMin:  getenvInt("TOKEN_PURGE_INTERVAL_MIN", 60),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenvInt reads an integer environment variable, falling back to def
// when the variable is unset. An unparsable value is fatal rather than
// silently defaulted.
func getenvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
