package main

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/config"
)

func TestRedisOptions_FollowCacheConfig(t *testing.T) {
	c := config.CacheCfg{RedisPoolSize: 32, DialTimeout: time.Second, OpTimeout: 150 * time.Millisecond}

	var ro redis.Options
	for _, f := range redisOptions(c) {
		f(&ro)
	}
	if ro.PoolSize != 32 || ro.DialTimeout != time.Second {
		t.Fatalf("pool=%d dial=%v", ro.PoolSize, ro.DialTimeout)
	}
	if ro.ReadTimeout != 150*time.Millisecond || ro.WriteTimeout != 150*time.Millisecond {
		t.Fatalf("read=%v write=%v want the op timeout", ro.ReadTimeout, ro.WriteTimeout)
	}

	// zero pool size keeps the client default
	ro = redis.Options{PoolSize: 16}
	for _, f := range redisOptions(config.CacheCfg{OpTimeout: time.Second}) {
		f(&ro)
	}
	if ro.PoolSize != 16 {
		t.Fatalf("pool=%d want default 16", ro.PoolSize)
	}
}
