package rentauth_test

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/rentora/rentauth"
	"github.com/rentora/rentauth/store/redisstore"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	store := redisstore.New(rdb, redisstore.Config{EnforceUniquePhone: true})

	cfg := rentauth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("access-secret")
	cfg.JWT.RefreshSecret = []byte("refresh-secret")
	cfg.Cipher.Key = make([]byte, 32)

	engine, _ := rentauth.New().
		WithConfig(cfg).
		WithStore(store).
		Build()
	_ = engine
}

// ExampleEngine_Login shows a typical login entrypoint call and structured error handling.
func ExampleEngine_Login() {
	var engine *rentauth.Engine
	result, err := engine.Login(context.Background(), "alice@example.com", "password")
	if err != nil {
		_ = rentauth.Code(err)
	}
	_ = result
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *rentauth.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot.Counters[rentauth.MetricLoginSuccess]
}
