package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/require"
)

func TestPublishWithGameScope(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1}, watermill.NopLogger{})
	defer pubsub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubsub.Subscribe(ctx, "multiplayer.reportable.message.v1.42")
	require.NoError(t, err)

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{}`))
	require.NoError(t, PublishWithGameScope(pubsub, "multiplayer.reportable.message.v1", "42", msg))

	select {
	case got := <-messages:
		require.Equal(t, msg.UUID, got.UUID)
		got.Ack()
	case <-ctx.Done():
		t.Fatal("message was not delivered on the game scoped topic")
	}

	require.Error(t, PublishWithGameScope(pubsub, "multiplayer.reportable.message.v1", "", msg))
}
