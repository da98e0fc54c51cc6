package core

import (
	"sync"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
	"github.com/rs/zerolog"

	"github.com/serialworks/go-task-queue/logger"
)

// DefaultCapacity bounds the pending-task channel when no explicit
// capacity is configured and TASKQUEUE_CAPACITY is unset. The original
// design inherited an OS pipe-buffer limit; here the bound is explicit
// and documented instead.
const DefaultCapacity = 1024

type envConfig struct {
	// Capacity overrides the default pending-task channel bound.
	Capacity int `env:"TASKQUEUE_CAPACITY"`
}

var (
	envCfg     envConfig
	envCfgOnce sync.Once
)

// envCapacity returns the process-wide capacity default, reading the
// environment once.
func envCapacity() int {
	envCfgOnce.Do(func() {
		if err := env.Parse(&envCfg); err != nil {
			log := logger.GetLogger()
			log.Warn().Err(err).Msg("invalid taskqueue environment config")
		}
	})
	if envCfg.Capacity > 0 {
		return envCfg.Capacity
	}
	return DefaultCapacity
}

// QueueConfig holds construction options for a Queue. The zero value of
// every field selects a sensible default, so callers only set what they
// need.
type QueueConfig struct {
	// Capacity bounds the pending-task channel. Posting to a full
	// channel drops the task (its cleanup hook still runs). Defaults to
	// TASKQUEUE_CAPACITY or DefaultCapacity.
	Capacity int

	// Logger receives queue lifecycle and drop events. Defaults to the
	// process-wide logger.
	Logger *zerolog.Logger

	// Metrics receives execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// PanicHandler is invoked when a task panics. Defaults to
	// DefaultPanicHandler backed by Logger.
	PanicHandler PanicHandler
}

// DefaultQueueConfig returns a config with default handlers.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{}
}

// withDefaults fills unset fields in place and returns the config.
func (c *QueueConfig) withDefaults() *QueueConfig {
	if c.Capacity <= 0 {
		c.Capacity = envCapacity()
	}
	if c.Logger == nil {
		log := logger.GetLogger()
		c.Logger = &log
	}
	if c.Metrics == nil {
		c.Metrics = &NilMetrics{}
	}
	if c.PanicHandler == nil {
		c.PanicHandler = &DefaultPanicHandler{Log: *c.Logger}
	}
	return c
}
