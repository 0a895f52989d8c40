package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopic_DeliversInSubscriptionOrder(t *testing.T) {
	topic := NewTopic[int]("test", nil)
	var got []string
	topic.Subscribe(func(_ context.Context, v int) { got = append(got, "first") })
	topic.Subscribe(func(_ context.Context, v int) { got = append(got, "second") })

	topic.Publish(context.Background(), 1)

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestTopic_Unsubscribe(t *testing.T) {
	topic := NewTopic[string]("test", nil)
	calls := 0
	unsub := topic.Subscribe(func(context.Context, string) { calls++ })
	topic.Subscribe(func(context.Context, string) {})

	topic.Publish(context.Background(), "a")
	unsub()
	unsub()
	topic.Publish(context.Background(), "b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, topic.Len())
}

func TestTopic_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	topic := NewTopic[ProfileUpdated]("test", nil)
	delivered := false
	topic.Subscribe(func(context.Context, ProfileUpdated) { panic("boom") })
	topic.Subscribe(func(context.Context, ProfileUpdated) { delivered = true })

	assert.NotPanics(t, func() {
		topic.Publish(context.Background(), ProfileUpdated{UserID: "u1"})
	})
	assert.True(t, delivered)
}

func TestTopic_UnsubscribeDuringPublish(t *testing.T) {
	topic := NewTopic[int]("test", nil)
	var unsub func()
	calls := 0
	unsub = topic.Subscribe(func(context.Context, int) {
		calls++
		unsub()
	})

	topic.Publish(context.Background(), 1)
	topic.Publish(context.Background(), 2)

	assert.Equal(t, 1, calls)
}

func TestTopic_ConcurrentPublish(t *testing.T) {
	topic := NewTopic[int]("test", nil)
	var mu sync.Mutex
	sum := 0
	topic.Subscribe(func(_ context.Context, v int) {
		mu.Lock()
		sum += v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			topic.Publish(context.Background(), v)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5050, sum)
}

func TestNewBus(t *testing.T) {
	bus := NewBus(nil)
	var got XPAwarded
	bus.XPAwarded.Subscribe(func(_ context.Context, ev XPAwarded) { got = ev })

	bus.XPAwarded.Publish(context.Background(), XPAwarded{UserID: "u1", Amount: 10})

	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 0, bus.ProfileUpdated.Len())
}
