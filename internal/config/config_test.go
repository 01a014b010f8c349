package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr  = "localhost:8000"
		dsn   = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
		key   = "c29tZV9zZWNyZXQ="
		redis = "redis://localhost:6379/0"
		orig  = []string{"http://localhost:3000"}
	)

	tcases := []struct {
		name  string
		addr  string
		dsn   string
		key   string
		redis string
		orig  []string
		err   bool
	}{
		{
			name:  "valid config",
			addr:  addr,
			dsn:   dsn,
			key:   key,
			redis: redis,
			orig:  orig,
			err:   false,
		},
		{
			name:  "empty redis URL is allowed",
			addr:  addr,
			dsn:   dsn,
			key:   key,
			redis: "",
			orig:  orig,
			err:   false,
		},
		{
			name:  "empty address",
			addr:  "",
			dsn:   dsn,
			key:   key,
			redis: redis,
			orig:  orig,
			err:   true,
		},
		{
			name:  "empty DSN",
			addr:  addr,
			dsn:   "",
			key:   key,
			redis: redis,
			orig:  orig,
			err:   true,
		},
		{
			name:  "empty signing key",
			addr:  addr,
			dsn:   dsn,
			key:   "",
			redis: redis,
			orig:  orig,
			err:   true,
		},
		{
			name:  "invalid base64 signing key",
			addr:  addr,
			dsn:   dsn,
			key:   "not-base64!!!",
			redis: redis,
			orig:  orig,
			err:   true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.addr, tc.dsn, tc.key, tc.redis, tc.orig)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.dsn, config.DatabaseDSN, "expected database DSN to match")
			assert.Equal(t, tc.redis, config.RedisURL, "expected redis URL to match")
			assert.Equal(t, tc.orig, config.AllowedOrigins, "expected allowed origins to match")
			assert.NotEmpty(t, config.SigningKey, "expected signing key to be decoded and not empty")
		})
	}
}
