// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	// Gemini AI Configuration
	GEMINI_API_KEY string

	// Ordered model fallback list. Candidates are tried strictly in order,
	// each with its own full attempt budget.
	MODELS_FALLBACK []string

	// Gemini Pricing Configuration (per 1M tokens in USD)
	GEMINI_INPUT_PRICE_PER_MILLION  float64
	GEMINI_OUTPUT_PRICE_PER_MILLION float64

	// Server Configuration
	PORT            string
	ALLOWED_ORIGINS string

	// Verbose status visibility (mirrors the review UI's SHOW_STATUS toggle)
	SHOW_STATUS bool

	// Page rendering settings
	MAX_PAGES  int
	RENDER_DPI int

	// Image preprocessing settings
	ENABLE_IMAGE_PREPROCESSING bool
	MAX_IMAGE_DIMENSION        int

	// Per-attempt timeout for model calls in seconds (0 disables the timeout)
	ATTEMPT_TIMEOUT int

	// Rate limiting for outbound model calls
	RATE_LIMIT_MAX_CONCURRENT int
	RATE_LIMIT_REFILL_MS      int

	// Letter template settings
	TEMPLATE_DIR string

	// Session state retention (minutes)
	SESSION_TTL int
)

// DefaultModelsFallback is the priority order used when MODELS_FALLBACK is unset.
var DefaultModelsFallback = []string{
	"gemini-2.5-flash-lite",
	"gemini-2.0-flash-lite",
	"gemini-2.5-flash",
	"gemini-3-flash-preview",
}

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Required: Gemini API Key
	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	if GEMINI_API_KEY == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	MODELS_FALLBACK = getEnvList("MODELS_FALLBACK", DefaultModelsFallback)

	// Gemini Pricing (default to Flash-Lite pricing)
	GEMINI_INPUT_PRICE_PER_MILLION = getEnvFloat("GEMINI_INPUT_PRICE_PER_MILLION", 0.10)
	GEMINI_OUTPUT_PRICE_PER_MILLION = getEnvFloat("GEMINI_OUTPUT_PRICE_PER_MILLION", 0.40)

	PORT = getEnv("PORT", "8080")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")
	SHOW_STATUS = getEnvBool("SHOW_STATUS", false)

	// Page Rendering
	MAX_PAGES = getEnvInt("MAX_PAGES", 5)
	RENDER_DPI = getEnvInt("RENDER_DPI", 200)

	// Image Processing
	ENABLE_IMAGE_PREPROCESSING = getEnvBool("ENABLE_IMAGE_PREPROCESSING", true)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2000)

	// Model call behavior
	ATTEMPT_TIMEOUT = getEnvInt("ATTEMPT_TIMEOUT", 90)
	RATE_LIMIT_MAX_CONCURRENT = getEnvInt("RATE_LIMIT_MAX_CONCURRENT", 4)
	RATE_LIMIT_REFILL_MS = getEnvInt("RATE_LIMIT_REFILL_MS", 500)

	TEMPLATE_DIR = getEnv("TEMPLATE_DIR", "Data")
	SESSION_TTL = getEnvInt("SESSION_TTL", 60)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
