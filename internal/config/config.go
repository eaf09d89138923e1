package config

import (
	"os"
	"strconv"
	"time"
)

// Config is read from the environment with local-development defaults,
// matching how the test suites locate their backends.
type Config struct {
	HTTPAddr   string
	MySQLDSN   string
	RedisAddr  string
	SlotZone   string
	SlotCount  int
	SampleData bool
	StatsTTL   time.Duration
}

func FromEnv() Config {
	return Config{
		HTTPAddr:   getString("HTTP_ADDR", ":8080"),
		MySQLDSN:   getString("MYSQL_DSN", "root:root@tcp(localhost:3306)/wms?parseTime=true"),
		RedisAddr:  getString("REDIS_ADDR", "localhost:6379"),
		SlotZone:   getString("SLOT_ZONE", "A"),
		SlotCount:  getInt("SLOT_COUNT", 20),
		SampleData: getBool("SEED_SAMPLE_DATA", true),
		StatsTTL:   getDuration("STATS_TTL", 30*time.Second),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
