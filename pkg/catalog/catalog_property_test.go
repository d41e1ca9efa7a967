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

package catalog

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"pgregory.net/rapid"
)

// presenceGen generates a per-tick presence sequence for a single game.
func presenceGen() *rapid.Generator[[]bool] {
	return rapid.SliceOfN(rapid.Bool(), 1, 50)
}

// TestPropertyTimeEqualsPresentTicks verifies time only grows by one per
// tick the game was seen running.
func TestPropertyTimeEqualsPresentTicks(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		clock := clockwork.NewFakeClockAt(testStart)
		c := New(WithClock(clock), WithFs(afero.NewMemMapFs()))
		e, err := c.Add("/games/game")
		if err != nil {
			t.Fatal(err)
		}

		presence := presenceGen().Draw(t, "presence")
		var want int64
		for _, present := range presence {
			clock.Advance(time.Second)
			set := map[string]struct{}{}
			if present {
				set["game"] = struct{}{}
				want++
			}
			c.ApplyRunningSet(set)
		}

		got, err := c.Get(e.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Time != want {
			t.Fatalf("time = %d, want %d", got.Time, want)
		}
		if got.Running != presence[len(presence)-1] {
			t.Fatalf("running = %v, want %v", got.Running, presence[len(presence)-1])
		}
	})
}

// TestPropertyLastPlayedOnlyOnStop verifies the last played date is written
// exactly when a running game is seen absent.
func TestPropertyLastPlayedOnlyOnStop(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		clock := clockwork.NewFakeClockAt(testStart)
		c := New(WithClock(clock), WithFs(afero.NewMemMapFs()))
		e, err := c.Add("/games/game")
		if err != nil {
			t.Fatal(err)
		}

		presence := presenceGen().Draw(t, "presence")
		var lastStop *time.Time
		wasRunning := false
		for i, present := range presence {
			clock.Advance(time.Second)
			set := map[string]struct{}{}
			if present {
				set["game"] = struct{}{}
			}
			c.ApplyRunningSet(set)

			if wasRunning && !present {
				now := clock.Now()
				lastStop = &now
			}
			wasRunning = present

			got, err := c.Get(e.ID)
			if err != nil {
				t.Fatal(err)
			}
			switch {
			case lastStop == nil && got.LastPlayedDate != nil:
				t.Fatalf("tick %d: last played set without a stop", i)
			case lastStop != nil && (got.LastPlayedDate == nil || !got.LastPlayedDate.Equal(*lastStop)):
				t.Fatalf("tick %d: last played = %v, want %v", i, got.LastPlayedDate, *lastStop)
			}
		}
	})
}

// TestPropertyNamesStayUnique verifies no sequence of adds and removes
// produces two entries with the same name.
func TestPropertyNamesStayUnique(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		c := New(WithClock(clockwork.NewFakeClockAt(testStart)), WithFs(afero.NewMemMapFs()))

		ops := rapid.SliceOfN(rapid.IntRange(0, 9), 1, 60).Draw(t, "ops")
		for _, op := range ops {
			name := fmt.Sprintf("game%d.exe", op%5)
			if op < 7 {
				_, _ = c.Add(`C:\Games\` + name)
				continue
			}
			if e, ok := c.GetByName(name); ok {
				if _, err := c.Remove(e.ID); err != nil {
					t.Fatal(err)
				}
			}
		}

		seen := map[string]bool{}
		ids := map[int64]bool{}
		for _, e := range c.Snapshot() {
			if seen[e.Name] {
				t.Fatalf("duplicate name %q", e.Name)
			}
			if ids[e.ID] {
				t.Fatalf("duplicate id %d", e.ID)
			}
			seen[e.Name] = true
			ids[e.ID] = true
		}
	})
}
