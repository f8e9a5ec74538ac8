package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	DataDir         string
	Env             string

	OTPBaseURL     string
	OTPInsecureTLS bool

	OpenAIAPIKey   string
	LLMModel       string
	LLMTemperature float32
	LLMTimeoutSecs int

	PdftoppmPath string
	RasterDPI    int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	apiKey := os.Getenv("OPENAI_API_KEY")

	if env == "production" && apiKey == "" {
		log.Printf("OPENAI_API_KEY is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DataDir:         getEnv("DATA_DIR", "./data"),
		Env:             env,
		OTPBaseURL:      getEnv("OTP_BASE_URL", ""),
		OTPInsecureTLS:  getBool("OTP_INSECURE_TLS", false),
		OpenAIAPIKey:    apiKey,
		LLMModel:        getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTemperature:  getFloat("LLM_TEMPERATURE", 0.8),
		LLMTimeoutSecs:  getInt("LLM_TIMEOUT_SECONDS", 120),
		PdftoppmPath:    getEnv("PDFTOPPM_PATH", "pdftoppm"),
		RasterDPI:       getInt("RASTER_DPI", 200),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getFloat(key string, def float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 32)
	if err != nil || parsed < 0 {
		return def
	}
	return float32(parsed)
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
