package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cissero/platform/internal/domain"
	"github.com/cissero/platform/internal/infra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub := &infra.WSConn{ID: "c1", UserID: "u2", Send: make(chan []byte, 4)}
	f.hub.Join(infra.EventRoom("e1"), sub)

	msg, err := f.chat.PostMessage(ctx, f.user(t, "u1"), "e1", "gl hf")
	require.NoError(t, err)
	assert.Equal(t, "Viewer One", msg.Username)

	msgs, err := f.chat.ListMessages("e1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "gl hf", msgs[0].Text)

	select {
	case raw := <-sub.Send:
		var frame infra.WSMessage
		require.NoError(t, json.Unmarshal(raw, &frame))
		assert.Equal(t, ChatMessageEvent, frame.Event)
	default:
		t.Fatal("subscriber received nothing")
	}
	assert.Equal(t, 1, f.outbox.count(domain.EventChatMessagePosted))
}

func TestPostMessage_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.user(t, "u1")

	_, err := f.chat.PostMessage(ctx, nil, "e1", "hi")
	assert.Equal(t, domain.CodeUnauthorized, domain.CodeOf(err))

	_, err = f.chat.PostMessage(ctx, u1, "nope", "hi")
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	_, err = f.chat.PostMessage(ctx, u1, "e1", "   ")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	_, err = f.chat.PostMessage(ctx, u1, "e1", strings.Repeat("x", domain.MaxChatLength+1))
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestPostMessage_RateLimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.user(t, "u1")

	for i := 0; i < 3; i++ {
		_, err := f.chat.PostMessage(ctx, u1, "e1", "spam")
		require.NoError(t, err)
	}
	_, err := f.chat.PostMessage(ctx, u1, "e1", "spam")
	assert.Equal(t, domain.CodeRateLimited, domain.CodeOf(err))

	_, err = f.chat.PostMessage(ctx, f.user(t, "u2"), "e1", "hello")
	assert.NoError(t, err)
}

func TestPrivateThreads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.chat.SendPrivate(ctx, f.user(t, "u1"), "my balance looks wrong")
	require.NoError(t, err)
	_, err = f.chat.SendPrivate(ctx, f.user(t, "u1"), "hello?")
	require.NoError(t, err)

	threads := f.chat.Threads()
	require.Len(t, threads, 1)
	assert.Equal(t, "viewer1", threads[0].Username)
	assert.Equal(t, 2, threads[0].Unread)

	msgs, err := f.chat.ReadThread("u1")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, 0, f.chat.Threads()[0].Unread)

	reply, err := f.chat.Reply(ctx, f.admin(t, "a2"), "u1", "looking into it")
	require.NoError(t, err)
	assert.True(t, reply.FromAdmin)
	assert.Equal(t, "Ann", reply.AdminName)

	thread := f.chat.Thread("u1")
	require.Len(t, thread, 3)
	assert.Equal(t, "looking into it", thread[2].Text)

	_, err = f.chat.Reply(ctx, f.admin(t, "a2"), "ghost", "hi")
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.predictions.PlacePrediction(ctx, f.user(t, "u1"), PlaceInput{EventID: "e1", ParticipantID: "p1", Amount: 100})
	require.NoError(t, err)
	_, err = f.engine.Approve(ctx, "e4")
	require.NoError(t, err)

	d := f.reports.Dashboard()
	assert.Equal(t, 6, d.TotalEvents)
	assert.Equal(t, 3, d.EventsByStatus[domain.StatusScheduled])
	assert.Equal(t, 0, d.EventsByStatus[domain.StatusPendingApproval])
	assert.Equal(t, 3, d.TotalUsers)
	assert.EqualValues(t, 2900, d.PointsInCirculation)
	assert.Equal(t, 3, d.PredictionsByStatus[domain.PredictionActive])
	assert.EqualValues(t, 180, d.TotalStaked)
	assert.EqualValues(t, 180, d.ActiveStake)
	assert.Equal(t, 1, d.JournalEntries)
	assert.Equal(t, 100, d.JournalCap)
}
