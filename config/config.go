package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds all pipeline configuration loaded from environment variables.
// It is built once in main and passed by value into every stage constructor.
type Config struct {
	RawDataDir        string
	ProcessedDataPath string
	ModelPath         string
	OutputDir         string

	PriceMin            float64
	PriceMax            float64
	MaxAccommodates     float64
	NullColumnThreshold float64

	TestSize      float64
	Seed          int64
	CVFolds       int
	Workers       int
	TopFeatures   int
	ScaleFeatures bool

	OutlierColumns []string
	OutlierMethod  string
	OutlierFactor  float64

	BooleanColumns     []string
	CategoricalColumns []string
	IdentifierColumns  []string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return Config{
		RawDataDir:        getEnv("RAW_DATA_DIR", "./data/raw"),
		ProcessedDataPath: getEnv("PROCESSED_DATA_PATH", "./data/processed/processed.csv"),
		ModelPath:         getEnv("MODEL_PATH", "./models/model.gob"),
		OutputDir:         getEnv("OUTPUT_DIR", "./output"),

		PriceMin:            getEnvFloat("PRICE_MIN", 10),
		PriceMax:            getEnvFloat("PRICE_MAX", 4000),
		MaxAccommodates:     getEnvFloat("MAX_ACCOMMODATES", 20),
		NullColumnThreshold: getEnvFloat("NULL_COLUMN_THRESHOLD", 0.8),

		TestSize:      getEnvFloat("TEST_SIZE", 0.3),
		Seed:          int64(getEnvInt("RANDOM_SEED", 42)),
		CVFolds:       getEnvInt("CV_FOLDS", 5),
		Workers:       getEnvInt("MAX_WORKERS", 4),
		TopFeatures:   getEnvInt("TOP_FEATURES", 20),
		ScaleFeatures: getEnvBool("SCALE_FEATURES", false),

		OutlierColumns: getEnvList("OUTLIER_COLUMNS",
			"price,accommodates,bedrooms,bathrooms,beds"),
		OutlierMethod: getEnv("OUTLIER_METHOD", "iqr"),
		OutlierFactor: getEnvFloat("OUTLIER_FACTOR", 1.5),

		BooleanColumns: getEnvList("BOOLEAN_COLUMNS",
			"host_is_superhost,host_has_profile_pic,host_identity_verified,is_location_exact,instant_bookable"),
		CategoricalColumns: getEnvList("CATEGORICAL_COLUMNS",
			"property_type,room_type,bed_type,cancellation_policy"),
		IdentifierColumns: getEnvList("IDENTIFIER_COLUMNS",
			"id,host_id,year,month"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "pricer"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "pricer123"),
		PostgresDB:       getEnv("POSTGRES_DB", "pricer_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := cast.ToIntE(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := cast.ToFloat64E(val); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := cast.ToBoolE(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
