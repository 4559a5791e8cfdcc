package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanBroker is an in-memory Broker for adapter tests.
type chanBroker struct {
	mu       sync.Mutex
	channels map[string]chan []byte
	closed   bool
}

func newChanBroker() *chanBroker {
	return &chanBroker{channels: make(map[string]chan []byte)}
}

func (b *chanBroker) topic(name string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[name]
	if !ok {
		ch = make(chan []byte, 16)
		b.channels[name] = ch
	}
	return ch
}

func (b *chanBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.topic(channel) <- payload
	return nil
}

func (b *chanBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return b.topic(channel), nil
}

func (b *chanBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for _, ch := range b.channels {
		close(ch)
	}
	return nil
}

func TestAdapterPublish(t *testing.T) {
	broker := newChanBroker()
	adapter := NewBrokerAdapter(broker)

	require.NoError(t, adapter.Publish(context.Background(), "appointment.booked", []byte(`{"status":"pending"}`)))

	select {
	case payload := <-broker.topic("appointment.booked"):
		assert.JSONEq(t, `{"status":"pending"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("message never reached the broker")
	}
}

func TestAdapterPublishRejectsInvalidJSON(t *testing.T) {
	adapter := NewBrokerAdapter(newChanBroker())

	assert.Error(t, adapter.Publish(context.Background(), "appointment.booked", []byte("not json")))
}

func TestAdapterSubscribeDeliversToHandler(t *testing.T) {
	broker := newChanBroker()
	adapter := NewBrokerAdapter(broker)

	got := make(chan []byte, 1)
	err := adapter.Subscribe(context.Background(), "appointment.booked", func(payload []byte) error {
		got <- payload
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, adapter.Publish(context.Background(), "appointment.booked", []byte(`{"id":"a1"}`)))

	select {
	case payload := <-got:
		assert.JSONEq(t, `{"id":"a1"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
}

func TestAdapterSubscribeKeepsDrainingOnHandlerError(t *testing.T) {
	broker := newChanBroker()
	adapter := NewBrokerAdapter(broker)

	var mu sync.Mutex
	var seen []string
	err := adapter.Subscribe(context.Background(), "appointment.booked", func(payload []byte) error {
		mu.Lock()
		seen = append(seen, string(payload))
		mu.Unlock()
		return errors.New("downstream rejected")
	})
	require.NoError(t, err)

	require.NoError(t, adapter.Publish(context.Background(), "appointment.booked", []byte(`{"n":1}`)))
	require.NoError(t, adapter.Publish(context.Background(), "appointment.booked", []byte(`{"n":2}`)))

	// A failing handler must not stall the stream.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestAdapterClose(t *testing.T) {
	broker := newChanBroker()
	adapter := NewBrokerAdapter(broker)

	require.NoError(t, adapter.Close())
	assert.True(t, broker.closed)
}
