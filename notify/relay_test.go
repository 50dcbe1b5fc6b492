package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/kidigo/storefront/notify"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesSnapshotImmediately(t *testing.T) {
	relay := notify.NewRelay()
	relay.Loading("working")

	var got []notify.Notification
	unsubscribe := relay.Subscribe(func(list []notify.Notification) {
		got = list
	})
	defer unsubscribe()

	require.Len(t, got, 1)
	require.Equal(t, notify.KindLoading, got[0].Kind)
	require.Equal(t, "working", got[0].Message)
}

func TestMultipleSubscribersAndUnsubscribe(t *testing.T) {
	relay := notify.NewRelay()

	var first, second int
	unsubFirst := relay.Subscribe(func([]notify.Notification) { first++ })
	unsubSecond := relay.Subscribe(func([]notify.Notification) { second++ })
	defer unsubSecond()

	relay.Loading("a")
	require.Equal(t, 2, first) // snapshot + change
	require.Equal(t, 2, second)

	unsubFirst()
	relay.Loading("b")
	require.Equal(t, 2, first)
	require.Equal(t, 3, second)
}

func TestUpgradeExistingNotification(t *testing.T) {
	relay := notify.NewRelay(notify.WithTTLs(time.Hour, time.Hour))

	id := relay.Loading("saving")
	relay.Success("saved", id)

	active := relay.Active()
	require.Len(t, active, 1)
	require.Equal(t, id, active[0].ID)
	require.Equal(t, notify.KindSuccess, active[0].Kind)
	require.Equal(t, "saved", active[0].Message)
}

func TestInsertionOrderPreserved(t *testing.T) {
	relay := notify.NewRelay(notify.WithTTLs(time.Hour, time.Hour))

	relay.Loading("first")
	relay.Error("second")
	relay.Loading("third")

	active := relay.Active()
	require.Len(t, active, 3)
	require.Equal(t, "first", active[0].Message)
	require.Equal(t, "second", active[1].Message)
	require.Equal(t, "third", active[2].Message)
}

func TestAutoExpiry(t *testing.T) {
	relay := notify.NewRelay(notify.WithTTLs(10*time.Millisecond, 20*time.Millisecond))

	relay.Success("done")
	relay.Error("failed")
	require.Len(t, relay.Active(), 2)

	require.Eventually(t, func() bool {
		active := relay.Active()
		return len(active) == 1 && active[0].Kind == notify.KindError
	}, time.Second, time.Millisecond, "success should expire before error")

	require.Eventually(t, func() bool {
		return len(relay.Active()) == 0
	}, time.Second, time.Millisecond)
}

func TestExpiryskipsUpgradedNotification(t *testing.T) {
	relay := notify.NewRelay(notify.WithTTLs(10*time.Millisecond, time.Hour))

	id := relay.Success("done")
	relay.Error("actually failed", id)

	time.Sleep(50 * time.Millisecond)
	active := relay.Active()
	require.Len(t, active, 1, "upgraded entry must survive the stale success timer")
	require.Equal(t, notify.KindError, active[0].Kind)
}

func TestDismiss(t *testing.T) {
	relay := notify.NewRelay(notify.WithTTLs(time.Hour, time.Hour))

	id := relay.Loading("one")
	relay.Loading("two")

	relay.Dismiss(id)
	require.Len(t, relay.Active(), 1)

	relay.Dismiss()
	require.Empty(t, relay.Active())
}

func TestRunSuccess(t *testing.T) {
	relay := notify.NewRelay(notify.WithTTLs(time.Hour, time.Hour))

	var kinds []notify.Kind
	unsubscribe := relay.Subscribe(func(list []notify.Notification) {
		for _, n := range list {
			kinds = append(kinds, n.Kind)
		}
	})
	defer unsubscribe()

	err := relay.Run(context.Background(), notify.Messages{
		Loading: "Logging in...",
		Success: "Welcome back!",
	}, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)

	require.Contains(t, kinds, notify.KindLoading)
	active := relay.Active()
	require.Len(t, active, 1)
	require.Equal(t, notify.KindSuccess, active[0].Kind)
	require.Equal(t, "Welcome back!", active[0].Message)
}

func TestRunErrorFallsBackToOperationMessage(t *testing.T) {
	relay := notify.NewRelay(notify.WithTTLs(time.Hour, time.Hour))

	opErr := errors.New("Invalid credentials")
	err := relay.Run(context.Background(), notify.Messages{}, func(ctx context.Context) error {
		return opErr
	})
	require.ErrorIs(t, err, opErr, "original error must be re-raised")

	active := relay.Active()
	require.Len(t, active, 1)
	require.Equal(t, notify.KindError, active[0].Kind)
	require.Equal(t, "Invalid credentials", active[0].Message)
}
