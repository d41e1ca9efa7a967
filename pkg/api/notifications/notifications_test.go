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

package notifications

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendNotification_NonBlocking(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification)

	done := make(chan struct{})
	go func() {
		GamesAdded(ns, &catalog.Entry{ID: 1, Name: "doom"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("sending a notification blocked on a full channel")
	}
}

func TestGamesStopped(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	played := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	GamesStopped(ns, &catalog.Entry{ID: 3, Name: "quake", Time: 120, LastPlayedDate: &played})

	notif := <-ns
	assert.Equal(t, models.NotificationGamesStopped, notif.Method)

	var params models.GameNotificationParams
	require.NoError(t, json.Unmarshal(notif.Params, &params))
	assert.Equal(t, int64(3), params.ID)
	assert.Equal(t, int64(120), params.Time)
	assert.False(t, params.Running)
	require.NotNil(t, params.LastPlayedDate)
}

func TestGamesReloaded_NilParams(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 1)
	GamesReloaded(ns)

	notif := <-ns
	assert.Equal(t, models.NotificationGamesReloaded, notif.Method)
	assert.Nil(t, notif.Params)
}

func TestFromChanges(t *testing.T) {
	t.Parallel()

	ns := make(chan models.Notification, 10)
	FromChanges(ns, []catalog.Change{
		{Kind: catalog.ChangeStarted, Entry: catalog.Entry{ID: 1, Name: "a", Running: true, Time: 1}},
		{Kind: catalog.ChangeTicked, Entry: catalog.Entry{ID: 2, Name: "b", Running: true, Time: 5}},
		{Kind: catalog.ChangeStopped, Entry: catalog.Entry{ID: 3, Name: "c"}},
		{Kind: catalog.ChangeReplaced},
	})
	close(ns)

	var methods []string
	for n := range ns {
		methods = append(methods, n.Method)
	}
	assert.Equal(t, []string{
		models.NotificationGamesStarted,
		models.NotificationGamesStopped,
		models.NotificationGamesReloaded,
	}, methods)
}
