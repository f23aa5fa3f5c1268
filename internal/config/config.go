package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port   int
	APIKey string // API key for authentication
	// Proxies whose X-Forwarded-For headers are trusted for client IP
	TrustedProxies []string
	LogLevel       string
	LogFormat      string
	ServiceName    string
	Version        string
	Environment    string

	// Data directory for the durable ledgers
	DataDir string
	// Directory for session log files
	LogDir string

	// Dosing constants
	PumpRateMLPerSec   float64
	BaseRateMLPerArea  float64
	DefaultTankLevelML float64
	CooldownHours      int

	// Actuator backend: "simulated" or "gpio"
	ActuatorBackend string
	// SimulateDelay makes the simulated backend sleep for the real pump
	// duration (timing-fidelity testing)
	SimulateDelay bool

	// Vision estimator
	GeminiAPIKey string
	GeminiModel  string

	// Moisture watcher
	MoistureEnabled     bool
	MoistureThreshold   int
	MoistureIntervalMin int
	MoistureDoseML      float64
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:      getEnv("API_KEY", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		ServiceName: getEnv("SERVICE_NAME", "apha-rig"),
		Version:     getEnv("VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "dev"),

		DataDir: getEnv("DATA_DIR", "data"),
		LogDir:  getEnv("LOG_DIR", "logs"),

		ActuatorBackend: getEnv("ACTUATOR_BACKEND", "simulated"),
		SimulateDelay:   getEnv("ACTUATOR_SIMULATE_DELAY", "false") == "true",

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		MoistureEnabled: getEnv("MOISTURE_ENABLED", "false") == "true",
	}

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		for _, p := range strings.Split(proxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, p)
			}
		}
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.PumpRateMLPerSec, err = getEnvFloat("PUMP_RATE_ML_PER_SEC", 1.0); err != nil {
		return nil, err
	}
	if cfg.BaseRateMLPerArea, err = getEnvFloat("BASE_RATE_ML_PER_AREA", 10.0); err != nil {
		return nil, err
	}
	if cfg.DefaultTankLevelML, err = getEnvFloat("DEFAULT_TANK_LEVEL_ML", 1000.0); err != nil {
		return nil, err
	}
	if cfg.CooldownHours, err = getEnvInt("FERTILIZER_COOLDOWN_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.MoistureThreshold, err = getEnvInt("MOISTURE_THRESHOLD", 30); err != nil {
		return nil, err
	}
	if cfg.MoistureIntervalMin, err = getEnvInt("MOISTURE_INTERVAL_MIN", 10); err != nil {
		return nil, err
	}
	if cfg.MoistureDoseML, err = getEnvFloat("MOISTURE_DOSE_ML", 2.0); err != nil {
		return nil, err
	}

	if cfg.PumpRateMLPerSec <= 0 {
		return nil, fmt.Errorf("PUMP_RATE_ML_PER_SEC must be positive, got %v", cfg.PumpRateMLPerSec)
	}
	if cfg.ActuatorBackend != "simulated" && cfg.ActuatorBackend != "gpio" {
		return nil, fmt.Errorf("ACTUATOR_BACKEND must be \"simulated\" or \"gpio\", got %q", cfg.ActuatorBackend)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return f, nil
}
