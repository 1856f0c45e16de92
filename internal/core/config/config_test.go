package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"ADDR", "LOG_LEVEL", "LOG_CONSOLE", "LOG_SAMPLE_N", "MAPBOX_TOKEN", "VITE_MAPBOX_TOKEN",
		"DATASET_PATH", "CLUSTER_STRATEGY", "INDEX_RES", "MEMO_SIZE", "REDIS_ADDR", "REDIS_POOL_SIZE", "REDIS_DIAL_TIMEOUT",
		"CACHE_TTL", "CACHE_OP_TIMEOUT", "METRICS_ENABLED", "METRICS_ADDR", "METRICS_PATH",
	} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Addr != ":8090" || c.Log.Level != "info" || c.Log.Console || c.Log.SampleN != 0 {
		t.Fatalf("unexpected base defaults: %+v", c)
	}
	if c.MapboxToken != "" || c.DatasetPath != "" || c.ClusterStrategy != "greedy" || c.IndexRes != 7 {
		t.Fatalf("unexpected domain defaults: %+v", c)
	}
	if c.Cache.MemoSize != 256 || c.Cache.RedisAddr != "" || c.Cache.TTL != 5*time.Minute || c.Cache.OpTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected cache defaults: %+v", c.Cache)
	}
	if c.Cache.RedisPoolSize != 16 || c.Cache.DialTimeout != 2*time.Second {
		t.Fatalf("unexpected redis defaults: %+v", c.Cache)
	}
	if c.Metrics.Enabled || c.Metrics.Addr != ":9090" || c.Metrics.Path != "/metrics" {
		t.Fatalf("unexpected metrics defaults: %+v", c.Metrics)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", "")
	t.Setenv("VITE_MAPBOX_TOKEN", "pk.vite")
	t.Setenv("CLUSTER_STRATEGY", "Transitive")
	t.Setenv("INDEX_RES", "9")
	t.Setenv("REDIS_ADDR", " localhost:6379 ")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("REDIS_POOL_SIZE", "64")
	t.Setenv("REDIS_DIAL_TIMEOUT", "500ms")
	t.Setenv("LOG_CONSOLE", "yes")
	t.Setenv("METRICS_ENABLED", "1")

	c := FromEnv()
	if c.MapboxToken != "pk.vite" {
		t.Fatalf("token fallback: %q", c.MapboxToken)
	}
	if c.ClusterStrategy != "transitive" || c.IndexRes != 9 {
		t.Fatalf("strategy=%q res=%d", c.ClusterStrategy, c.IndexRes)
	}
	if c.Cache.RedisAddr != "localhost:6379" || c.Cache.TTL != 30*time.Second ||
		c.Cache.RedisPoolSize != 64 || c.Cache.DialTimeout != 500*time.Millisecond {
		t.Fatalf("cache=%+v", c.Cache)
	}
	if !c.Log.Console || !c.Metrics.Enabled {
		t.Fatalf("bools not parsed: %+v", c)
	}

	t.Setenv("MAPBOX_TOKEN", "pk.main")
	if got := FromEnv().MapboxToken; got != "pk.main" {
		t.Fatalf("MAPBOX_TOKEN should win, got %q", got)
	}
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("INDEX_RES", "99")
	t.Setenv("MEMO_SIZE", "lots")
	t.Setenv("CACHE_OP_TIMEOUT", "soon")
	t.Setenv("METRICS_ENABLED", "maybe")

	c := FromEnv()
	if c.IndexRes != 7 || c.Cache.MemoSize != 256 || c.Cache.OpTimeout != 250*time.Millisecond || c.Metrics.Enabled {
		t.Fatalf("invalid values not defaulted: %+v", c)
	}
}
