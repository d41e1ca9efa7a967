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

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/config"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/database"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/service/metrics"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const historyUpdateInterval = time.Minute

// historyMethods are the notifications the recorder subscribes to.
var historyMethods = []string{
	models.NotificationGamesStarted,
	models.NotificationGamesStopped,
	models.NotificationGamesRemoved,
}

type openSession struct {
	start time.Time
	dbid  int64
}

// historyRecorder writes a session row for every continuous run of a game.
// Rows are opened on start, refreshed every minute while the game runs and
// closed on stop, so an unclean shutdown loses at most a minute.
type historyRecorder struct {
	clock   clockwork.Clock
	db      database.HistoryDBI
	metrics *metrics.Metrics
	open    map[int64]openSession
	mu      syncutil.RWMutex
}

func newHistoryRecorder(db database.HistoryDBI, clock clockwork.Clock, m *metrics.Metrics) *historyRecorder {
	return &historyRecorder{
		clock:   clock,
		db:      db,
		metrics: m,
		open:    make(map[int64]openSession),
	}
}

// listen handles notifications until the channel is closed, then closes
// any sessions still open.
func (r *historyRecorder) listen(notificationChan <-chan models.Notification) {
	for notif := range notificationChan {
		var game models.GameNotificationParams
		if err := json.Unmarshal(notif.Params, &game); err != nil {
			log.Warn().Err(err).Str("method", notif.Method).Msg("invalid game notification")
			continue
		}

		switch notif.Method {
		case models.NotificationGamesStarted:
			r.start(&game)
		case models.NotificationGamesStopped:
			r.stop(game.ID)
		case models.NotificationGamesRemoved:
			r.stop(game.ID)
			deleted, err := r.db.DeleteGameSessions(game.ID)
			if err != nil {
				log.Error().Err(err).Int64("id", game.ID).Msg("failed to delete play sessions")
			} else {
				log.Debug().Int64("id", game.ID).Int64("deleted", deleted).Msg("deleted play sessions")
			}
		}
	}
	r.closeAll()
}

func (r *historyRecorder) start(game *models.GameNotificationParams) {
	r.mu.RLock()
	_, exists := r.open[game.ID]
	r.mu.RUnlock()
	if exists {
		return
	}

	now := r.clock.Now()
	s := &database.Session{
		StartTime:     now,
		GameName:      game.DisplayName,
		GamePath:      game.Path,
		GameID:        game.ID,
		ClockReliable: helpers.IsClockReliable(now),
	}
	dbid, err := r.db.AddSession(s)
	if err != nil {
		log.Error().Err(err).Int64("id", game.ID).Msg("failed to add play session")
		return
	}

	r.mu.Lock()
	r.open[game.ID] = openSession{start: now, dbid: dbid}
	r.mu.Unlock()

	r.metrics.ObserveSession("opened")
	log.Debug().Int64("dbid", dbid).Int64("id", game.ID).Msg("opened play session")
}

func (r *historyRecorder) stop(gameID int64) {
	r.mu.Lock()
	s, ok := r.open[gameID]
	delete(r.open, gameID)
	r.mu.Unlock()
	if !ok {
		return
	}

	end := r.clock.Now()
	playTime := int64(end.Sub(s.start).Seconds())
	if err := r.db.CloseSession(s.dbid, end, playTime); err != nil {
		log.Error().Err(err).Int64("dbid", s.dbid).Msg("failed to close play session")
		return
	}

	r.metrics.ObserveSession("closed")
	log.Debug().Int64("dbid", s.dbid).Int64("playTime", playTime).Msg("closed play session")
}

func (r *historyRecorder) closeAll() {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.open))
	for id := range r.open {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.stop(id)
	}
}

// updatePlayTime refreshes the play time of every open session each
// minute until ctx is done.
func (r *historyRecorder) updatePlayTime(ctx context.Context) {
	ticker := r.clock.NewTicker(historyUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			r.mu.RLock()
			sessions := make([]openSession, 0, len(r.open))
			for _, s := range r.open {
				sessions = append(sessions, s)
			}
			r.mu.RUnlock()

			now := r.clock.Now()
			for _, s := range sessions {
				playTime := int64(now.Sub(s.start).Seconds())
				if err := r.db.UpdateSessionTime(s.dbid, playTime); err != nil {
					log.Warn().Err(err).Int64("dbid", s.dbid).Msg("failed to update play session time")
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// cleanupHistoryOnStartup closes sessions left open by an unclean shutdown
// and drops sessions older than the retention period.
func cleanupHistoryOnStartup(cfg *config.Instance, db database.HistoryDBI) {
	log.Info().Msg("closing hanging play sessions")
	if err := db.CloseHangingSessions(); err != nil {
		log.Error().Err(err).Msg("error closing hanging play sessions")
	}

	retention := cfg.HistoryRetention()
	if retention <= 0 {
		log.Debug().Msg("play session cleanup disabled (retention set to 0)")
		return
	}

	log.Info().Msgf("cleaning up play sessions older than %d days", retention)
	rowsDeleted, err := db.CleanupSessions(retention)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("error cleaning up play sessions")
	case rowsDeleted > 0:
		log.Info().Msgf("deleted %d old play sessions", rowsDeleted)
	default:
		log.Debug().Msg("no old play sessions to clean up")
	}
}
