package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetLogger(t *testing.T) {
	log := GetLogger()

	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
	assert.NotPanics(t, func() {
		log.Debug().Str("queue", "test").Msg("logger smoke test")
	})
}
