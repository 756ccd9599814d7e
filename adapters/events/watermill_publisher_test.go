package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/walletauth/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishLoginAndLogout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	logins, err := pubSub.Subscribe(ctx, LoginTopic)
	require.NoError(t, err)
	logouts, err := pubSub.Subscribe(ctx, LogoutTopic)
	require.NoError(t, err)

	pub := NewWatermillPublisher(pubSub)

	session := &core.Session{
		ID:      "s1",
		Address: "0xabc",
		User:    core.User{ID: "1", Username: "bob"},
	}
	require.NoError(t, pub.PublishLogin(ctx, session))
	require.NoError(t, pub.PublishLogout(ctx, "0xabc", "s1"))

	select {
	case msg := <-logins:
		var event LoginEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, LoginEvent{SessionID: "s1", Address: "0xabc", UserID: "1", Username: "bob"}, event)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("login event not delivered")
	}

	select {
	case msg := <-logouts:
		var event LogoutEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, LogoutEvent{Address: "0xabc", SessionID: "s1"}, event)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("logout event not delivered")
	}
}
