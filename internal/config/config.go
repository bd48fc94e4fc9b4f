package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. The credit and AI settings
// are injected into the ledger and generator at construction time so
// neither consults the environment at request time.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	AIBaseURL string // OpenAI-compatible endpoint (empty = provider default)
	AIAPIKey  string // provider API key (optional for local servers)
	AIModel   string // model name for document generation

	CreditSystemEnabled bool          // master switch for charging
	LocalDevBypass      bool          // skip charging in local development
	OpenSourceMode      bool          // self-hosted deployments run uncharged
	CreditCacheTTL      time.Duration // balance cache lifetime
	SignupCredits       int           // credits granted to new accounts
	GenerationCost      int           // default cost per generated document
	GenerationCosts     map[string]int // per-type overrides, e.g. GENERATION_COST_PRD
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		AIBaseURL: os.Getenv("AI_BASE_URL"),
		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIModel:   envStr("AI_MODEL", "gpt-4o-mini"),

		CreditSystemEnabled: envBool("CREDIT_SYSTEM_ENABLED", true),
		LocalDevBypass:      envBool("LOCAL_DEV_BYPASS", false),
		OpenSourceMode:      envBool("OPEN_SOURCE_MODE", false),
		CreditCacheTTL:      envDur("CREDIT_CACHE_TTL", 60*time.Second),
		SignupCredits:       envInt("SIGNUP_CREDITS", 5),
		GenerationCost:      envInt("GENERATION_COST", 1),
		GenerationCosts:     generationCosts(),
	}
}

// generationCosts collects GENERATION_COST_<TYPE> overrides for the
// generatable document types.
func generationCosts() map[string]int {
	types := []string{"PRD", "TECHNICAL_DESIGN", "ARCHITECTURE", "ROADMAP",
		"STARTUP_ANALYSIS", "HACKATHON_ANALYSIS"}
	out := map[string]int{}
	for _, t := range types {
		if n := envInt("GENERATION_COST_"+t, 0); n > 0 {
			out[t] = n
		}
	}
	return out
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer. If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// Optional-variable helpers shared with ratelimit.go.

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
