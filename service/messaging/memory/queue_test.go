package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testPayload struct {
	ID      string
	Message string
}

func TestQueue_PublishConsume(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[testPayload](config)
	ctx := context.Background()

	err := queue.Publish(ctx, &testPayload{ID: "m-1", Message: "pending created"})
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "m-1", message.T().ID)
	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack(), "double ack must fail")
}

func TestQueue_NackRetries(t *testing.T) {
	config := Config{MaxRetries: 1, RetryDelay: 5 * time.Millisecond, DeadLetter: true, QueueBuffer: 10}
	queue := NewQueue[testPayload](config)
	ctx := context.Background()

	_ = queue.Publish(ctx, &testPayload{ID: "m-1"})

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, message.Nack(errors.New("transient")))

	// retried copy arrives after the retry delay
	cctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	retried, err := queue.Consume(cctx)
	assert.NoError(t, err)
	assert.Equal(t, "m-1", retried.T().ID)

	// second failure exceeds MaxRetries and parks on the DLQ
	assert.NoError(t, retried.Nack(errors.New("still failing")))
	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 }, time.Second, 5*time.Millisecond)
}

func TestQueue_ConsumeHonoursContext(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := queue.Consume(ctx)
	assert.Error(t, err)
}

// With DropOldest a full buffer sheds its oldest message; Publish never
// blocks regardless of how far the publisher outruns the consumer.
func TestQueue_DropOldestNeverBlocks(t *testing.T) {
	config := DefaultConfig()
	config.QueueBuffer = 2
	config.DropOldest = true
	queue := NewQueue[testPayload](config)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.NoError(t, queue.Publish(ctx, &testPayload{ID: fmt.Sprintf("m-%d", i)}))
	}
	assert.Equal(t, 2, queue.Size())

	// only the newest two survived
	first, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "m-3", first.T().ID)
	second, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "m-4", second.T().ID)
}

// A retried message waits for buffer space without holding any queue lock,
// so publishing and consuming proceed while the retry is parked.
func TestQueue_NackRetryWithFullBuffer(t *testing.T) {
	config := Config{MaxRetries: 2, RetryDelay: time.Millisecond, QueueBuffer: 1}
	queue := NewQueue[testPayload](config)
	ctx := context.Background()

	_ = queue.Publish(ctx, &testPayload{ID: "first"})
	first, err := queue.Consume(ctx)
	assert.NoError(t, err)

	// fill the buffer before the retry fires
	_ = queue.Publish(ctx, &testPayload{ID: "second"})
	assert.NoError(t, first.Nack(errors.New("transient")))

	cctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	second, err := queue.Consume(cctx)
	assert.NoError(t, err)
	assert.Equal(t, "second", second.T().ID)

	retried, err := queue.Consume(cctx)
	assert.NoError(t, err)
	assert.Equal(t, "first", retried.T().ID)
}
