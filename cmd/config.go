package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort        string
	GRPCPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxRequestBody  int64
	APIToken        string
	LogLevel        string

	BackendURL     string
	BackendToken   string
	BackendTimeout time.Duration

	TerminalID   string
	OperatorID   string
	OperatorName string

	StoreName    string
	StoreAddress string
	StorePhone   string
	StoreTaxID   string
	Currency     string
	ReceiptWidth int
	PrinterPath  string

	ShiftDBPath         string
	ShiftMigrationsPath string

	RedisAddr       string
	RedisPassword   string
	ProductCacheTTL time.Duration

	MongoURI    string
	MongoDBName string

	PostgresHost         string
	PostgresPort         int
	PostgresUser         string
	PostgresPassword     string
	PostgresDB           string
	OutboxMigrationsPath string

	KafkaBrokers []string
	KafkaTopic   string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		GRPCPort:        getEnv("GRPC_PORT", "50060"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBody:  1 << 20, // 1MB
		APIToken:        getEnv("API_TOKEN", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8000/api"),
		BackendToken:   getEnv("BACKEND_TOKEN", ""),
		BackendTimeout: getDuration("BACKEND_TIMEOUT", 10*time.Second),

		TerminalID:   getEnv("TERMINAL_ID", "till-1"),
		OperatorID:   getEnv("OPERATOR_ID", "operator-1"),
		OperatorName: getEnv("OPERATOR_NAME", ""),

		StoreName:    getEnv("STORE_NAME", "POS Store"),
		StoreAddress: getEnv("STORE_ADDRESS", ""),
		StorePhone:   getEnv("STORE_PHONE", ""),
		StoreTaxID:   getEnv("STORE_TAX_ID", ""),
		Currency:     getEnv("CURRENCY", ""),
		ReceiptWidth: getInt("RECEIPT_WIDTH", 40),
		PrinterPath:  getEnv("RECEIPT_PRINTER_PATH", ""),

		ShiftDBPath:         getEnv("SHIFT_DB_PATH", "./shifts.db"),
		ShiftMigrationsPath: getEnv("SHIFT_MIGRATIONS_DIR", "./internal/shift/migrations"),

		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		ProductCacheTTL: getDuration("PRODUCT_CACHE_TTL", 30*time.Second),

		MongoURI:    getEnv("MONGO_URI", ""),
		MongoDBName: getEnv("MONGO_DB_NAME", "pos"),

		PostgresHost:         getEnv("POSTGRES_HOST", ""),
		PostgresPort:         getInt("POSTGRES_PORT", 5432),
		PostgresUser:         getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:     getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:           getEnv("POSTGRES_DB", "pos"),
		OutboxMigrationsPath: getEnv("OUTBOX_MIGRATIONS_DIR", "./internal/outbox/migrations"),

		KafkaBrokers: getList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "pos-terminal-events"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
