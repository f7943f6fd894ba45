package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitKafkaReady_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitKafkaReady(ctx, "127.0.0.1:1", time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestInitKafkaTopics_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := InitKafkaTopics(ctx, "127.0.0.1:1", time.Hour, DefaultTopic)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepCtx(t *testing.T) {
	require.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	require.ErrorIs(t, sleepCtx(ctx, time.Hour), context.DeadlineExceeded)
}
