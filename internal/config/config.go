package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port    string
	DataDir string

	// External source URLs
	OpenRouterURL    string
	AzurePricesURL   string
	AzureCatalogURL  string
	OpenAIPricingURL string
	GeminiPricingURL string
	LiteLLMURL       string

	// HTTP / scraper timeouts
	HTTPTimeout     time.Duration
	ScraperTimeout  time.Duration
	ScraperWait     time.Duration
	MetadataTimeout time.Duration

	// Sync behavior
	FetchRetries       int
	ScraperConcurrency int
	RefreshInterval    time.Duration // 0 disables the periodic refresh job

	// Headless Chrome
	ChromePath string

	// Metadata enrichment
	MetadataEnabled bool
	MetadataTTL     time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8000"),
		DataDir: getEnv("DATA_DIR", "./data"),

		OpenRouterURL:    getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1/models"),
		AzurePricesURL:   getEnv("AZURE_PRICES_URL", "https://prices.azure.com/api/retail/prices"),
		AzureCatalogURL:  getEnv("AZURE_CATALOG_URL", "https://prices.azure.com/api/retail/prices/skus"),
		OpenAIPricingURL: getEnv("OPENAI_PRICING_URL", "https://platform.openai.com/docs/pricing"),
		GeminiPricingURL: getEnv("GEMINI_PRICING_URL", "https://ai.google.dev/pricing"),
		LiteLLMURL:       getEnv("LITELLM_URL", "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"),

		HTTPTimeout:     getDurationEnv("HTTP_TIMEOUT", 60*time.Second),
		ScraperTimeout:  getDurationEnv("SCRAPER_TIMEOUT", 90*time.Second),
		ScraperWait:     getDurationEnv("SCRAPER_WAIT", 2*time.Second),
		MetadataTimeout: getDurationEnv("METADATA_TIMEOUT", 30*time.Second),

		FetchRetries:       getIntEnv("FETCH_RETRIES", 2),
		ScraperConcurrency: getIntEnv("SCRAPER_CONCURRENCY", 1),
		RefreshInterval:    getDurationEnv("REFRESH_INTERVAL", 0),

		ChromePath: getEnv("CHROME_PATH", "/usr/bin/chromium-browser"),

		MetadataEnabled: getBoolEnv("METADATA_ENABLED", true),
		MetadataTTL:     getDurationEnv("METADATA_TTL", 1*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
