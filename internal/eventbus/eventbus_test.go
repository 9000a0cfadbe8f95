package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusPublishSubscribe(t *testing.T) {
	b := New[int]()
	ch, cancel := b.Subscribe(4)
	defer cancel()

	b.Publish(7)
	assert.Equal(t, 7, <-ch)
}

func TestBusDropsWhenBufferFull(t *testing.T) {
	b := New[int]()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	b.Publish(1)
	b.Publish(2) // buffer full, dropped

	assert.Equal(t, 1, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected event %d", v)
	default:
	}
}

func TestBusCancelClosesChannel(t *testing.T) {
	b := New[string]()
	ch, cancel := b.Subscribe(1)
	cancel()
	cancel() // second cancel is a no-op

	_, ok := <-ch
	assert.False(t, ok)

	// publish after cancel must not panic
	b.Publish("x")
}

func TestBusClose(t *testing.T) {
	b := New[int]()
	ch, _ := b.Subscribe(1)
	b.Close()
	_, ok := <-ch
	assert.False(t, ok)

	// subscribing after close yields a closed channel
	ch2, cancel := b.Subscribe(1)
	defer cancel()
	_, ok = <-ch2
	assert.False(t, ok)
}
