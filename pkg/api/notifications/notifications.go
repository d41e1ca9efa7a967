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

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/rs/zerolog/log"
)

// sendNotification never blocks. A full channel drops the notification so
// a stalled consumer can't hold up catalog mutations.
func sendNotification(ns chan<- models.Notification, method string, payload any) {
	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("error marshalling notification params")
			return
		}
		params = data
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		log.Warn().Str("method", method).Msg("notification channel full, dropping notification")
	}
}

func GamesAdded(ns chan<- models.Notification, e *catalog.Entry) {
	sendNotification(ns, models.NotificationGamesAdded, models.NewGameNotificationParams(e))
}

func GamesRemoved(ns chan<- models.Notification, e *catalog.Entry) {
	sendNotification(ns, models.NotificationGamesRemoved, models.NewGameNotificationParams(e))
}

func GamesUpdated(ns chan<- models.Notification, e *catalog.Entry) {
	sendNotification(ns, models.NotificationGamesUpdated, models.NewGameNotificationParams(e))
}

func GamesStarted(ns chan<- models.Notification, e *catalog.Entry) {
	sendNotification(ns, models.NotificationGamesStarted, models.NewGameNotificationParams(e))
}

func GamesStopped(ns chan<- models.Notification, e *catalog.Entry) {
	sendNotification(ns, models.NotificationGamesStopped, models.NewGameNotificationParams(e))
}

func GamesReloaded(ns chan<- models.Notification) {
	sendNotification(ns, models.NotificationGamesReloaded, nil)
}

// FromChanges sends the notification for each catalog change that clients
// care about. Per tick accrual is not announced.
func FromChanges(ns chan<- models.Notification, changes []catalog.Change) {
	for i := range changes {
		e := &changes[i].Entry
		switch changes[i].Kind {
		case catalog.ChangeAdded:
			GamesAdded(ns, e)
		case catalog.ChangeRemoved:
			GamesRemoved(ns, e)
		case catalog.ChangeUpdated:
			GamesUpdated(ns, e)
		case catalog.ChangeStarted:
			GamesStarted(ns, e)
		case catalog.ChangeStopped:
			GamesStopped(ns, e)
		case catalog.ChangeReplaced:
			GamesReloaded(ns)
		case catalog.ChangeTicked:
		}
	}
}
