package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the dashboard service.
type Config struct {
	Port           string `envconfig:"PORT" default:"5200"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// DatabaseURL selects PostgreSQL. When empty the service runs on SQLite.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"dashboard.sqlite"`

	// Remote dashboard API used by the user-data client
	DashboardAPIURL string `envconfig:"DASHBOARD_API_URL" default:"https://api-dashboard.a-pl.xyz"`
	SagaAPIURL      string `envconfig:"SAGA_API_URL" default:"http://15.164.143.220"`

	// Upstreams used by the local proxy routes
	SepoliaExternalAPIURL string `envconfig:"SEPOLIA_EXTERNAL_API_URL" default:"https://api-dashboard.a-pl.xyz:8080"`
	SagaExternalAPIURL    string `envconfig:"SAGA_EXTERNAL_API_URL" default:"http://15.164.143.220"`
	UseExternalAPI        bool   `envconfig:"USE_EXTERNAL_API" default:"true"`
	BackendURL            string `envconfig:"BACKEND_URL" default:"http://localhost:8080"`

	// LocalAPIURL is where the client reaches this service's own routes.
	LocalAPIURL string `envconfig:"LOCAL_API_URL" default:"http://localhost:5200"`

	RequestTimeout           time.Duration `envconfig:"REQUEST_TIMEOUT" default:"20s"`
	DelegationConfirmTimeout time.Duration `envconfig:"DELEGATION_CONFIRM_TIMEOUT" default:"2m"`

	// Chain
	EthRPCURL              string `envconfig:"ETH_RPC_URL"`
	TokenContractAddress   string `envconfig:"TOKEN_CONTRACT_ADDRESS"`
	TokenSymbol            string `envconfig:"TOKEN_SYMBOL" default:"APL"`
	SepoliaContractAddress string `envconfig:"SEPOLIA_CONTRACT_ADDRESS" default:"0x123456789abcdef123456789abcdef123456789a"`
	SagaContractAddress    string `envconfig:"SAGA_CONTRACT_ADDRESS"`

	WalletPollInterval time.Duration `envconfig:"WALLET_POLL_INTERVAL" default:"10s"`

	// AI
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// APIToken gates admin routes (export, wallet delete). Empty disables the check.
	APIToken string `envconfig:"API_TOKEN"`

	// Snapshots (Cloudflare R2)
	CloudflareAccountID string        `envconfig:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string        `envconfig:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string        `envconfig:"R2_ACCESS_KEY_SECRET"`
	R2Bucket            string        `envconfig:"R2_BUCKET_NAME"`
	SnapshotInterval    time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"1h"`
	SnapshotDir         string        `envconfig:"SNAPSHOT_DIR" default:"snapshots"`

	SeedDemoData   bool   `envconfig:"SEED_DEMO_DATA" default:"true"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return cfg, nil
}

// OriginsList returns ALLOWED_ORIGINS split and trimmed.
func (c *Config) OriginsList() []string {
	var out []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// R2Enabled reports whether snapshot uploads have credentials and a bucket.
func (c *Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}
