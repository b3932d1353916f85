package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct{}

func (testEvent) Name() string { return "test.event" }

func TestBus_DeliversToAllListeners(t *testing.T) {
	bus := New(zap.NewNop())
	var calls int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}
	bus.Subscribe("other.event", func(ctx context.Context, event Event) error {
		t.Error("unexpected delivery")
		return nil
	})

	bus.Publish(context.Background(), testEvent{})
	bus.Wait()

	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestBus_ListenerSurvivesCanceledPublisher(t *testing.T) {
	bus := New(zap.NewNop())
	var ctxErr error

	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		ctxErr = ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, testEvent{})
	bus.Wait()

	assert.NoError(t, ctxErr)
}

func TestBus_ListenerErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := New(zap.New(core))

	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		return errors.New("redis down")
	})
	bus.Subscribe("test.event", func(ctx context.Context, event Event) error {
		panic("boom")
	})

	bus.Publish(context.Background(), testEvent{})
	bus.Wait()

	assert.Equal(t, 2, logs.Len())
}
