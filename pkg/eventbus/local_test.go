package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalPublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewLocal()
	ch1 := bus.Subscribe(ctx, "test.addr")
	ch2 := bus.Subscribe(ctx, "test.addr")
	other := bus.Subscribe(ctx, "other.addr")

	assert.NoError(t, bus.Publish(ctx, "test.addr", []byte("hello")))

	for _, ch := range []<-chan []byte{ch1, ch2} {
		select {
		case payload := <-ch:
			assert.Equal(t, []byte("hello"), payload)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for payload")
		}
	}

	select {
	case payload := <-other:
		t.Fatalf("unexpected payload on other address: %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLocalSubscribeCancel(t *testing.T) {
	bus := NewLocal()
	ctx, cancel := context.WithCancel(context.Background())
	ch := bus.Subscribe(ctx, "test.addr")

	cancel()

	// 订阅取消后通道关闭
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	// 取消后的发布不会 panic
	assert.NoError(t, bus.Publish(context.Background(), "test.addr", []byte("late")))
}

func TestLocalPublishNoSubscribers(t *testing.T) {
	bus := NewLocal()
	assert.NoError(t, bus.Publish(context.Background(), "nobody.home", []byte("x")))
}
