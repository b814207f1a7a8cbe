package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// HTTP server
	APIPort int

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// Feasibility engine configuration
	Engine EngineConfig
}

// EngineConfig holds feasibility engine parameters and thresholds
type EngineConfig struct {
	// Monte Carlo simulation
	SimulationPaths     int
	MaxSimulationMonths int
	Seed                int64
	SeedMode            string // "fixed" or "per-goal"

	// Behavioral caps
	SurplusCapRatio    float64 // share of surplus people realistically save
	SafetyFactor       float64 // extra haircut on the recommended figure
	MaxVolatilityPenalty float64

	// Liquidity thresholds (months of essential spend)
	LowLiquidityMonths      float64
	CriticalLiquidityMonths float64
	LowLiquidityCapRatio    float64

	// Priority tier base weights
	HighPriorityWeight   float64
	MediumPriorityWeight float64
	LowPriorityWeight    float64

	// Feature aggregation
	LookbackMonths    int
	MinTransactions   int
	MinMonthsObserved int

	// Background refresh
	RefreshHours int

	// Cache
	AssessmentCacheTTLMinutes int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		APIPort: getEnvInt("API_PORT", 8080),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "finsight"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "finsight"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "finsight123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// Engine configuration
		Engine: EngineConfig{
			SimulationPaths:     getEnvInt("ENGINE_SIMULATION_PATHS", 750),
			MaxSimulationMonths: getEnvInt("ENGINE_MAX_SIMULATION_MONTHS", 1200),
			Seed:                int64(getEnvInt("ENGINE_SEED", 42)),
			SeedMode:            getEnvOrDefault("ENGINE_SEED_MODE", "fixed"),

			SurplusCapRatio:      getEnvFloat("ENGINE_SURPLUS_CAP_RATIO", 0.70),
			SafetyFactor:         getEnvFloat("ENGINE_SAFETY_FACTOR", 0.85),
			MaxVolatilityPenalty: getEnvFloat("ENGINE_MAX_VOLATILITY_PENALTY", 0.50),

			LowLiquidityMonths:      getEnvFloat("ENGINE_LOW_LIQUIDITY_MONTHS", 1.5),
			CriticalLiquidityMonths: getEnvFloat("ENGINE_CRITICAL_LIQUIDITY_MONTHS", 0.5),
			LowLiquidityCapRatio:    getEnvFloat("ENGINE_LOW_LIQUIDITY_CAP_RATIO", 0.40),

			HighPriorityWeight:   getEnvFloat("ENGINE_HIGH_PRIORITY_WEIGHT", 0.50),
			MediumPriorityWeight: getEnvFloat("ENGINE_MEDIUM_PRIORITY_WEIGHT", 0.30),
			LowPriorityWeight:    getEnvFloat("ENGINE_LOW_PRIORITY_WEIGHT", 0.20),

			LookbackMonths:    getEnvInt("ENGINE_LOOKBACK_MONTHS", 6),
			MinTransactions:   getEnvInt("ENGINE_MIN_TRANSACTIONS", 15),
			MinMonthsObserved: getEnvInt("ENGINE_MIN_MONTHS_OBSERVED", 2),

			RefreshHours: getEnvInt("ENGINE_REFRESH_HOURS", 24),

			AssessmentCacheTTLMinutes: getEnvInt("ENGINE_CACHE_TTL_MINUTES", 60),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
