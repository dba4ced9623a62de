package realtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/realtime"
)

func receive(t *testing.T, ch <-chan realtime.Event) realtime.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return realtime.Event{}
}

func newRecord() models.ProjectRecord {
	rec := models.NewProjectRecord(uuid.New(), "Mug")
	rec.Status = models.StatusSourcing
	return rec
}

func TestHub_PublishSubscribe(t *testing.T) {
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newRecord()
	other := newRecord()
	ch, err := hub.Subscribe(ctx, rec.ID)
	require.NoError(t, err)

	require.NoError(t, hub.Publish(ctx, realtime.NewEvent(realtime.EventProjectCreated, other, nil)))
	require.NoError(t, hub.Publish(ctx, realtime.NewEvent(realtime.EventStatusChanged, rec,
		realtime.StatusPayload(rec, 43, 2))))

	ev := receive(t, ch)
	assert.Equal(t, realtime.EventStatusChanged, ev.Type)
	assert.Equal(t, rec.ID.String(), ev.ProjectID)
	assert.Equal(t, rec.Version, ev.Version)
	assert.Equal(t, 43, ev.Payload["progress"])
}

func TestHub_ClosesOnCancel(t *testing.T) {
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := hub.Subscribe(ctx, uuid.New())
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := newRecord()
	_, err := hub.Subscribe(ctx, rec.ID)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(ctx, realtime.NewEvent(realtime.EventPrototypeUpdated, rec, nil))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestRedisBroker_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := realtime.NewRedisClient(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()
	broker := realtime.NewRedisBroker(client)
	require.NoError(t, broker.Ping(ctx))

	rec := newRecord()
	ch, err := broker.Subscribe(ctx, rec.ID)
	require.NoError(t, err)

	// Garbage on the channel is dropped, the stream keeps going.
	mr.Publish(realtime.Channel(rec.ID.String()), "not json")

	ref := "ch_1"
	rec.Payments.Deposit = models.PaymentFlag{Paid: true, Reference: &ref}
	require.NoError(t, broker.Publish(ctx, realtime.NewEvent(realtime.EventPaymentRecorded, rec,
		realtime.PaymentPayload(rec, models.PaymentDeposit))))

	ev := receive(t, ch)
	assert.Equal(t, realtime.EventPaymentRecorded, ev.Type)
	assert.Equal(t, rec.ID.String(), ev.ProjectID)
	assert.Equal(t, "deposit", ev.Payload["payment_type"])
}

func TestRedisBroker_SubscriptionEndsWithContext(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := realtime.NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := realtime.NewRedisBroker(client).Subscribe(ctx, uuid.New())
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := realtime.NewRedisClient(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "project:events:abc", realtime.Channel("abc"))
}
