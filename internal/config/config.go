package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the
// station and purchase settings fall back to defaults that match a single
// pump at station SPBU1.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	LogLevel       string // slog level: debug, info, warn, error
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMaxOpen      int    // connection pool size
	JWTSecret      string // secret used to sign JWTs
	SessionSecret  string // secret used to sign and encrypt the page session cookie
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	StationID    string        // station identifier used in sale IDs and relay keys
	PumpID       string        // pump identifier; sequence counters are scoped per pump
	QuotaEnforce bool          // reject purchases larger than the remaining quota instead of clamping
	MaxNominal   int64         // keypad upper bound in rupiah
	RelayTTL     time.Duration // lifetime of a detected plate in the relay
	TerminalTTL  time.Duration // lifetime of an idle terminal session
	RabbitURL    string        // AMQP broker URL; empty disables events
	SalesLogDir  string        // directory of the sale.recorded consumer's log file

	AdminName     string // bootstrap admin account, created approved when missing
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxOpen:      envInt("DB_MAX_OPEN_CONNS", 25),
		JWTSecret:      must("JWT_SECRET"),
		SessionSecret:  must("SESSION_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", 10),

		StationID:    strings.ToUpper(envStr("STATION_ID", "SPBU1")),
		PumpID:       envStr("PUMP_ID", "SubsidiPump1"),
		QuotaEnforce: envBool("QUOTA_ENFORCE", false),
		MaxNominal:   int64(envInt("MAX_NOMINAL", 10_000_000)),
		RelayTTL:     envDur("RELAY_TTL", 10*time.Minute),
		TerminalTTL:  envDur("TERMINAL_TTL", 30*time.Minute),
		RabbitURL:    rabbitURL(),
		SalesLogDir:  envStr("SALES_LOG_DIR", "logs"),

		AdminName:     envStr("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// rabbitURL looks up RABBITMQ_URL, then AMQP_URL.  No default is applied:
// a missing broker disables events instead of dialing localhost on every
// purchase.
func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
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
