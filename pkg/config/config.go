package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	FirebaseApiKey  string
	Environment     string
	StorageBucket   string

	APIBaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LocationPollInterval time.Duration
	LocationTimeout      time.Duration
	RefetchThresholdKm   float64
	NearbyRadiusKm       float64
	IPGeolocationURL     string
	ORSApiKey            string

	RateLimitPerMinute int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:  getEnv("FIREBASE_API_KEY", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080/api"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       int(getEnvAsInt64("REDIS_DB", 0)),

		LocationPollInterval: getEnvAsDuration("LOCATION_POLL_INTERVAL", 5*time.Minute),
		LocationTimeout:      getEnvAsDuration("LOCATION_TIMEOUT", 10*time.Second),
		RefetchThresholdKm:   getEnvAsFloat("REFETCH_THRESHOLD_KM", 0.5),
		NearbyRadiusKm:       getEnvAsFloat("NEARBY_RADIUS_KM", 25),
		IPGeolocationURL:     getEnv("IP_GEOLOCATION_URL", "http://ip-api.com/json"),
		ORSApiKey:            getEnv("ORS_API_KEY", ""),

		RateLimitPerMinute: int(getEnvAsInt64("RATE_LIMIT_PER_MINUTE", 60)),
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
