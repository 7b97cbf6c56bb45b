package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)

	// Given an empty environment
	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	// Then every setting has its default
	req.Equal("0.0.0.0", config.Host)
	req.Equal(3000, config.Port)
	req.Equal("INFO", config.LogLevel)
	req.Equal("file:session.db?_foreign_keys=on", config.SessionDB)
	req.Equal("media", config.MediaDir)
	req.NotNil(config.JournalLimit)
	req.Equal(100, *config.JournalLimit)
	req.Equal(10*time.Second, config.DeliveryTimeout)
	req.Equal(8, config.MaxConcurrentDeliveries)
	req.Equal(2, config.NumberOfWorkers)
	req.Equal(256, config.BufferSize)
	req.Equal(time.Second, config.RestartInterval)
	req.True(config.QRStdout)
	req.Equal(time.Minute, config.StatsInterval)
	req.Equal(80, config.LowCapacityThreshold)
	req.Equal(5*time.Second, config.DrainTimeout)
	req.Equal(10*time.Minute, config.GroupNameTTL)
	req.NoError(config.Validate())
	req.Equal("0.0.0.0:3000", config.Address())
}

func TestConfig_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DELIVERY_TIMEOUT", "250ms")
	t.Setenv("QR_STDOUT", "false")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal(8080, config.Port)
	req.Equal(250*time.Millisecond, config.DeliveryTimeout)
	req.False(config.QRStdout)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		limit := 10
		return Config{Port: 3000, NumberOfWorkers: 1, MaxConcurrentDeliveries: 1,
			DeliveryTimeout: time.Second, SessionTimeout: time.Second, JournalLimit: &limit,
			StatsInterval: time.Minute, LowCapacityThreshold: 80, GroupNameTTL: time.Minute}
	}
	tests := []struct {
		description string
		modify      func(c *Config)
	}{
		{"Should reject port 0", func(c *Config) { c.Port = 0 }},
		{"Should reject no worker", func(c *Config) { c.NumberOfWorkers = 0 }},
		{"Should reject a negative buffer", func(c *Config) { c.BufferSize = -1 }},
		{"Should reject no delivery concurrency", func(c *Config) { c.MaxConcurrentDeliveries = 0 }},
		{"Should reject a zero delivery timeout", func(c *Config) { c.DeliveryTimeout = 0 }},
		{"Should reject a zero session timeout", func(c *Config) { c.SessionTimeout = 0 }},
		{"Should reject a zero stats interval", func(c *Config) { c.StatsInterval = 0 }},
		{"Should reject a threshold above 100", func(c *Config) { c.LowCapacityThreshold = 101 }},
		{"Should reject a negative drain timeout", func(c *Config) { c.DrainTimeout = -time.Second }},
		{"Should reject a zero group name ttl", func(c *Config) { c.GroupNameTTL = 0 }},
		{"Should reject a zero journal limit", func(c *Config) { zero := 0; c.JournalLimit = &zero }},
	}
	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			require.Error(t, c.Validate())
		})
	}
}
