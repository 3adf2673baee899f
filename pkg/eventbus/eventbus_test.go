package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pinged struct{}

func (pinged) Name() string { return "test.pinged" }

func TestBus_PublishCallsEverySubscriber(t *testing.T) {
	bus := New(zap.NewNop())
	var calls int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("test.pinged", func(ctx context.Context, e Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}
	bus.Subscribe("test.pinged", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("ошибка обработчика")
	})
	bus.Subscribe("test.other", func(ctx context.Context, e Event) error {
		t.Error("чужое событие")
		return nil
	})

	bus.Publish(context.Background(), pinged{})
	bus.Wait()

	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}
