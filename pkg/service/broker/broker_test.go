// Zaparoo Playtime
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Playtime.
//
// Zaparoo Playtime is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Playtime is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Playtime.  If not, see <http://www.gnu.org/licenses/>.

package broker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gameNotification(t *testing.T, method string, id int64) models.Notification {
	t.Helper()
	params, err := json.Marshal(models.GameNotificationParams{ID: id, Name: "Hades", DisplayName: "Hades"})
	require.NoError(t, err)
	return models.Notification{Method: method, Params: params}
}

func receive(t *testing.T, ch <-chan models.Notification) models.Notification {
	t.Helper()
	select {
	case n, ok := <-ch:
		require.True(t, ok, "subscriber channel closed")
		return n
	case <-time.After(time.Second):
		t.Fatal("no notification received")
		return models.Notification{}
	}
}

func assertClosed(t *testing.T, ch <-chan models.Notification) {
	t.Helper()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func startBroker(t *testing.T, buffer int) (*Broker, chan models.Notification) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	source := make(chan models.Notification, buffer)
	b := NewBroker(ctx, source)
	b.Start()
	return b, source
}

func TestBroker_SubscriptionIDs(t *testing.T) {
	t.Parallel()

	b := NewBroker(context.Background(), make(chan models.Notification))

	_, first := b.Subscribe(10)
	_, second := b.SubscribeMethods(10, models.NotificationGamesStarted)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Len(t, b.subscribers, 2)

	b.Unsubscribe(first)
	_, third := b.Subscribe(10)
	assert.Equal(t, 2, third, "ids are never reused")
}

func TestBroker_Unsubscribe(t *testing.T) {
	t.Parallel()

	b := NewBroker(context.Background(), make(chan models.Notification))
	ch, id := b.Subscribe(10)

	b.Unsubscribe(id)
	assert.Empty(t, b.subscribers)
	assertClosed(t, ch)

	b.Unsubscribe(id)
	b.Unsubscribe(99)
}

func TestBroker_FansOutToEverySubscriber(t *testing.T) {
	t.Parallel()

	b, source := startBroker(t, 10)
	api, _ := b.Subscribe(10)
	publishers, _ := b.Subscribe(10)
	history, _ := b.Subscribe(10)

	source <- gameNotification(t, models.NotificationGamesAdded, 7)

	for _, ch := range []<-chan models.Notification{api, publishers, history} {
		n := receive(t, ch)
		assert.Equal(t, models.NotificationGamesAdded, n.Method)

		var params models.GameNotificationParams
		require.NoError(t, json.Unmarshal(n.Params, &params))
		assert.Equal(t, int64(7), params.ID)
	}
}

func TestBroker_KeepsOrder(t *testing.T) {
	t.Parallel()

	b, source := startBroker(t, 10)
	ch, _ := b.Subscribe(10)

	sequence := []string{
		models.NotificationGamesAdded,
		models.NotificationGamesStarted,
		models.NotificationGamesUpdated,
		models.NotificationGamesStopped,
		models.NotificationGamesRemoved,
	}
	for _, method := range sequence {
		source <- gameNotification(t, method, 1)
	}

	for _, want := range sequence {
		assert.Equal(t, want, receive(t, ch).Method)
	}
}

func TestBroker_FullSubscriberDropsWithoutBlocking(t *testing.T) {
	t.Parallel()

	b, source := startBroker(t, 50)
	stalled, _ := b.Subscribe(2)
	live, _ := b.Subscribe(50)

	for i := range 20 {
		source <- gameNotification(t, models.NotificationGamesUpdated, int64(i+1))
	}

	for range 20 {
		receive(t, live)
	}

	assert.Len(t, stalled, 2, "stalled subscriber keeps only what fits its buffer")
}

func TestBroker_SubscribeMethodsFilters(t *testing.T) {
	t.Parallel()

	b, source := startBroker(t, 10)
	filtered, _ := b.SubscribeMethods(10, models.NotificationGamesStarted, models.NotificationGamesStopped)
	all, _ := b.Subscribe(10)

	source <- gameNotification(t, models.NotificationGamesAdded, 1)
	source <- gameNotification(t, models.NotificationGamesStarted, 1)
	source <- gameNotification(t, models.NotificationGamesReloaded, 0)
	source <- gameNotification(t, models.NotificationGamesStopped, 1)

	for _, want := range []string{
		models.NotificationGamesAdded,
		models.NotificationGamesStarted,
		models.NotificationGamesReloaded,
		models.NotificationGamesStopped,
	} {
		assert.Equal(t, want, receive(t, all).Method)
	}

	assert.Equal(t, models.NotificationGamesStarted, receive(t, filtered).Method)
	assert.Equal(t, models.NotificationGamesStopped, receive(t, filtered).Method)
	assert.Empty(t, filtered)
}

func TestBroker_ClosesSubscribers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stop func(cancel context.CancelFunc, source chan models.Notification, b *Broker)
		name string
	}{
		{
			name: "context cancelled",
			stop: func(cancel context.CancelFunc, _ chan models.Notification, _ *Broker) { cancel() },
		},
		{
			name: "source closed",
			stop: func(_ context.CancelFunc, source chan models.Notification, _ *Broker) { close(source) },
		},
		{
			name: "stopped",
			stop: func(_ context.CancelFunc, _ chan models.Notification, b *Broker) { b.Stop() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			source := make(chan models.Notification, 1)
			b := NewBroker(ctx, source)
			b.Start()

			first, _ := b.Subscribe(1)
			second, _ := b.SubscribeMethods(1, models.NotificationGamesStarted)

			tt.stop(cancel, source, b)

			assertClosed(t, first)
			assertClosed(t, second)
		})
	}
}

func TestBroker_ConcurrentSubscribers(t *testing.T) {
	t.Parallel()

	b, source := startBroker(t, 100)
	notif := gameNotification(t, models.NotificationGamesUpdated, 1)

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			ch, id := b.Subscribe(5)
			defer b.Unsubscribe(id)
			select {
			case <-ch:
			case <-time.After(10 * time.Millisecond):
			}
		})
	}
	wg.Go(func() {
		for range 20 {
			source <- notif
		}
	})
	wg.Wait()

	b.mu.RLock()
	defer b.mu.RUnlock()
	assert.Empty(t, b.subscribers)
}
