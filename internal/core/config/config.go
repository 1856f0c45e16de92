// Package config reads the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type LogCfg struct {
	Level   string
	Console bool
	SampleN int
}

type CacheCfg struct {
	MemoSize      int
	RedisAddr     string // empty disables the shared tier
	RedisPoolSize int
	DialTimeout   time.Duration
	TTL           time.Duration
	OpTimeout     time.Duration // also the redis read and write timeout
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr            string
	Log             LogCfg
	MapboxToken     string
	DatasetPath     string // empty selects the bundled dataset
	ClusterStrategy string
	IndexRes        int
	Cache           CacheCfg
	Metrics         MetricsCfg
}

func FromEnv() Config {
	res := getint("INDEX_RES", 7)
	if res < 0 || res > 15 {
		res = 7
	}

	return Config{
		Addr: getenv("ADDR", ":8090"),
		Log: LogCfg{
			Level:   getenv("LOG_LEVEL", "info"),
			Console: getbool("LOG_CONSOLE", false),
			SampleN: getint("LOG_SAMPLE_N", 0),
		},
		MapboxToken:     getenv("MAPBOX_TOKEN", getenv("VITE_MAPBOX_TOKEN", "")),
		DatasetPath:     strings.TrimSpace(os.Getenv("DATASET_PATH")),
		ClusterStrategy: strings.ToLower(getenv("CLUSTER_STRATEGY", "greedy")),
		IndexRes:        res,
		Cache: CacheCfg{
			MemoSize:      getint("MEMO_SIZE", 256),
			RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			RedisPoolSize: getint("REDIS_POOL_SIZE", 16),
			DialTimeout:   getduration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			TTL:           getduration("CACHE_TTL", 5*time.Minute),
			OpTimeout:     getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", false),
			Addr:    getenv("METRICS_ADDR", ":9090"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
