package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/trading/internal/model"
)

func TestChatService_Send(t *testing.T) {
	env := newTestEnv(t)
	svc := NewChatService(env.chat, env.users)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, SendMessage{ReceiverUID: "bob", Content: "   "})
	assert.ErrorIs(t, err, model.ErrEmptyMessage)

	_, err = svc.Send(ctx, alice, SendMessage{Content: "hi"})
	assert.ErrorIs(t, err, model.ErrNoReceiver)

	_, err = svc.Send(ctx, alice, SendMessage{ReceiverUID: "alice", Content: "hi"})
	assert.ErrorIs(t, err, model.ErrNoReceiver)

	_, err = svc.Send(ctx, alice, SendMessage{ReceiverEmail: "nobody@ucdconnect.ie", Content: "hi"})
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	require.NoError(t, env.store.UpsertUser(ctx, model.User{UID: "bob", Email: "bob@ucdconnect.ie"}))
	msg, err := svc.Send(ctx, alice, SendMessage{ReceiverEmail: "Bob@ucdconnect.ie", Content: " still for sale? ", ItemID: "i1", ItemTitle: "Bike"})
	require.NoError(t, err)
	assert.Len(t, msg.ID, 26)
	assert.Equal(t, "bob", msg.ReceiverUID)
	assert.Equal(t, "bob@ucdconnect.ie", msg.ReceiverEmail)
	assert.Equal(t, "still for sale?", msg.Content)
	assert.NotZero(t, msg.Timestamp)
}

func TestChatService_Conversations(t *testing.T) {
	env := newTestEnv(t)
	svc := NewChatService(env.chat, env.users)
	ctx := context.Background()

	carol := Actor{UID: "carol", Email: "carol@ucdconnect.ie"}
	base := time.UnixMilli(1_700_000_000_000)
	send := func(from Actor, to Actor, at time.Duration, text string) {
		t.Helper()
		svc.now = func() time.Time { return base.Add(at) }
		_, err := svc.Send(ctx, from, SendMessage{ReceiverUID: to.UID, ReceiverEmail: to.Email, Content: text})
		require.NoError(t, err)
	}

	send(alice, bob, 0, "hi bob")
	send(bob, alice, time.Minute, "hi alice")
	send(carol, alice, 2*time.Minute, "is the lamp available?")
	send(bob, carol, 3*time.Minute, "not for alice")

	all, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	withBob, err := svc.With(ctx, alice, "bob")
	require.NoError(t, err)
	require.Len(t, withBob, 2)
	assert.Equal(t, "hi bob", withBob[0].Content)
	assert.Equal(t, "hi alice", withBob[1].Content)

	convs, err := svc.Conversations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "carol", convs[0].OtherUserUID)
	assert.Equal(t, "is the lamp available?", convs[0].LastMessage)
	assert.Equal(t, "bob", convs[1].OtherUserUID)
	assert.Equal(t, "bob@ucdconnect.ie", convs[1].OtherUserEmail)
	assert.Equal(t, "hi alice", convs[1].LastMessage)
	assert.Equal(t, base.Add(time.Minute).UnixMilli(), convs[1].LastMessageTime)
}
