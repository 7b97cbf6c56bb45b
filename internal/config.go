package internal

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

type Config struct {
	Host                    string        `env:"HOST,default=0.0.0.0"`
	Port                    int           `env:"PORT,default=3000"`
	LogLevel                string        `env:"LOG_LEVEL,default=INFO"`
	SessionDB               string        `env:"SESSION_DB,default=file:session.db?_foreign_keys=on"`
	MediaDir                string        `env:"MEDIA_DIR,default=media"`
	JournalPath             string        `env:"JOURNAL_PATH,default=data/journal"`
	JournalLimit            *int          `env:"JOURNAL_LIMIT,default=100"`
	DeliveryTimeout         time.Duration `env:"DELIVERY_TIMEOUT,default=10s"`
	MaxConcurrentDeliveries int           `env:"MAX_CONCURRENT_DELIVERIES,default=8"`
	NumberOfWorkers         int           `env:"NUMBER_OF_WORKERS,default=2"`
	BufferSize              int           `env:"BUFFER_SIZE,default=256"`
	SessionTimeout          time.Duration `env:"SESSION_TIMEOUT,default=15s"`
	RestartInterval         time.Duration `env:"RESTART_INTERVAL,default=1s"`
	QRStdout                bool          `env:"QR_STDOUT,default=true"`
	StatsInterval           time.Duration `env:"STATS_INTERVAL,default=1m"`
	LowCapacityThreshold    int           `env:"LOW_CAPACITY_THRESHOLD,default=80"`
	DebugPort               int           `env:"DEBUG_PORT,default=8081"`
	DrainTimeout            time.Duration `env:"DRAIN_TIMEOUT,default=5s"`
	GroupNameTTL            time.Duration `env:"GROUP_NAME_TTL,default=10m"`
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate catches values the env parser accepts but the bridge cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	case c.NumberOfWorkers <= 0:
		return fmt.Errorf("NUMBER_OF_WORKERS must be positive, got %d", c.NumberOfWorkers)
	case c.BufferSize < 0:
		return fmt.Errorf("BUFFER_SIZE must not be negative, got %d", c.BufferSize)
	case c.MaxConcurrentDeliveries <= 0:
		return fmt.Errorf("MAX_CONCURRENT_DELIVERIES must be positive, got %d", c.MaxConcurrentDeliveries)
	case c.DeliveryTimeout <= 0:
		return fmt.Errorf("DELIVERY_TIMEOUT must be positive, got %s", c.DeliveryTimeout)
	case c.SessionTimeout <= 0:
		return fmt.Errorf("SESSION_TIMEOUT must be positive, got %s", c.SessionTimeout)
	case c.StatsInterval <= 0:
		return fmt.Errorf("STATS_INTERVAL must be positive, got %s", c.StatsInterval)
	case c.LowCapacityThreshold <= 0 || c.LowCapacityThreshold > 100:
		return fmt.Errorf("LOW_CAPACITY_THRESHOLD must be a percentage, got %d", c.LowCapacityThreshold)
	case c.DrainTimeout < 0:
		return fmt.Errorf("DRAIN_TIMEOUT must not be negative, got %s", c.DrainTimeout)
	case c.GroupNameTTL <= 0:
		return fmt.Errorf("GROUP_NAME_TTL must be positive, got %s", c.GroupNameTTL)
	case c.JournalLimit != nil && *c.JournalLimit <= 0:
		return fmt.Errorf("JOURNAL_LIMIT must be positive, got %d", *c.JournalLimit)
	}
	return nil
}
