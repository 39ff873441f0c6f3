package kafka

import "time"

// ProducerConfig describes the event writer. Zero fields take the values of
// DefaultProducerConfig.
type ProducerConfig struct {
	Brokers []string
	// RequiredAcks follows kafka.RequiredAcks: -1 all replicas, 1 leader, 0 none.
	RequiredAcks int
	Compression  string // gzip | snappy | lz4 | zstd
	MaxAttempts  int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
	// HashByKey routes equal keys to one partition, keeping per-ticker event order.
	HashByKey bool
}

// DefaultProducerConfig suits small, latency-tolerant event streams.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		RequiredAcks: -1,
		Compression:  "gzip",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchTimeout: 50 * time.Millisecond,
		HashByKey:    true,
	}
}

func (c ProducerConfig) withDefaults() ProducerConfig {
	d := DefaultProducerConfig()
	if c.Compression == "" {
		c.Compression = d.Compression
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = d.BatchTimeout
	}
	return c
}
