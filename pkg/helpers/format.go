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

package helpers

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// LastPlayed formats a last played timestamp relative to now, such as
// "3 days ago". Entries that have never been played return "never".
func LastPlayed(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	if t.After(now) {
		return "just now"
	}
	return humanize.RelTime(*t, now, "ago", "from now")
}

// PlayTime formats a play time total in seconds as hours and minutes.
func PlayTime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %02dm", seconds/3600, seconds%3600/60)
}
