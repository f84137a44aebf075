package config

// Redis backs the rate limiter and the response cache.  Both are optional:
// when no server is reachable at startup the constructor returns nil and
// the middleware degrades to pass-through.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from the environment.  REDIS_URL is
// preferred when set (redis:// or rediss:// form); otherwise REDIS_ADDR or
// the REDIS_HOST/REDIS_PORT pair is used together with REDIS_PASSWORD,
// REDIS_DB and REDIS_TLS.  The returned client is nil when the server
// cannot be pinged.
func NewRedisClient() *redis.Client {
	var opts *redis.Options
	if rawURL := os.Getenv("REDIS_URL"); rawURL != "" {
		parsed, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil
		}
		opts = parsed
	} else {
		addr := os.Getenv("REDIS_ADDR")
		if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
			addr = host + ":" + port
		}
		if addr == "" {
			addr = "localhost:6379"
		}
		dbNum := 0
		if s := os.Getenv("REDIS_DB"); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				dbNum = n
			}
		}
		var tlsConf *tls.Config
		if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
			tlsConf = &tls.Config{InsecureSkipVerify: true}
		}
		opts = &redis.Options{
			Addr:      addr,
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        dbNum,
			TLSConfig: tlsConf,
		}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
