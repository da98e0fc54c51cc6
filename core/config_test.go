package core

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueConfig_Defaults(t *testing.T) {
	cfg := DefaultQueueConfig().withDefaults()

	assert.Greater(t, cfg.Capacity, 0)
	require.NotNil(t, cfg.Logger)
	require.NotNil(t, cfg.Metrics)
	require.NotNil(t, cfg.PanicHandler)
	assert.IsType(t, &NilMetrics{}, cfg.Metrics)
}

func TestQueueConfig_ExplicitValuesPreserved(t *testing.T) {
	log := zerolog.Nop()
	metrics := &NilMetrics{}
	handler := &DefaultPanicHandler{Log: log}

	cfg := (&QueueConfig{
		Capacity:     32,
		Logger:       &log,
		Metrics:      metrics,
		PanicHandler: handler,
	}).withDefaults()

	assert.Equal(t, 32, cfg.Capacity)
	assert.Same(t, metrics, cfg.Metrics.(*NilMetrics))
	assert.Same(t, handler, cfg.PanicHandler.(*DefaultPanicHandler))
}

func TestEnvConfig_CapacityParsing(t *testing.T) {
	t.Setenv("TASKQUEUE_CAPACITY", "64")

	var cfg envConfig
	require.NoError(t, env.Parse(&cfg))
	assert.Equal(t, 64, cfg.Capacity)
}

func TestNilMetrics_NoOps(t *testing.T) {
	m := &NilMetrics{}
	assert.NotPanics(t, func() {
		m.RecordTaskDuration("q", PriorityNormal, time.Millisecond)
		m.RecordTaskPanic("q", "boom")
		m.RecordTaskDropped("q", DropReasonOverflow)
		m.RecordQueueDepth("q", 3)
	})
}
