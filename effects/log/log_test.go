package log_test

import (
	"context"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogEffect_WritesThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	ctx, endOfLogHandler := log.WithZapEffectHandler(context.Background(), 4, zap.New(core))
	defer endOfLogHandler()

	log.Effect(ctx, log.LogWarn, "effect failed", map[string]interface{}{
		"namespace": "todos",
		"effect":    "refresh",
	})
	log.Effect(ctx, log.LogDebug, "effect started", nil)

	require.Eventually(t, func() bool {
		return logs.Len() == 2
	}, time.Second, 5*time.Millisecond)

	entries := logs.AllUntimed()
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "effect failed", entries[0].Message)
	assert.Equal(t, "todos", entries[0].ContextMap()["namespace"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestLogEffect_NoHandlerDropsMessage(t *testing.T) {
	assert.NotPanics(t, func() {
		log.Effect(context.Background(), log.LogInfo, "nobody listens", nil)
	})
}
