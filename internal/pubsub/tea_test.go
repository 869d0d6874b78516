package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListenCmdDeliversEvent(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx := context.Background()
	ch := b.Subscribe(ctx)
	cmd := ListenCmd(ctx, ch)

	b.Publish("entry")

	msg := cmd()
	ev, ok := msg.(Event[string])
	require.True(t, ok)
	require.Equal(t, "entry", ev.Payload)
}

func TestListenCmdNilOnCancel(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := ListenCmd(ctx, b.Subscribe(ctx))
	cancel()

	require.Nil(t, cmd())
}

func TestListenCmdNilOnClosedChannel(t *testing.T) {
	b := NewBroker[string]()
	ctx := context.Background()
	cmd := ListenCmd(ctx, b.Subscribe(ctx))

	b.Close()

	require.Nil(t, cmd())
}

func TestContinuousListenerRearms(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewContinuousListener(ctx, b)

	for want := 1; want <= 3; want++ {
		b.Publish(want)

		done := make(chan struct{})
		go func() {
			msg := l.Listen()()
			ev, ok := msg.(Event[int])
			require.True(t, ok)
			require.Equal(t, want, ev.Payload)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("event %d not delivered", want)
		}
	}
}
