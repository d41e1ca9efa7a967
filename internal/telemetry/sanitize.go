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

package telemetry

import (
	"regexp"

	"github.com/getsentry/sentry-go"
)

// userDirs rewrites home directories so user names never leave the
// machine. Game paths usually live under one.
var userDirs = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)/home/[^/]+/`), "/home/<user>/"},
	{regexp.MustCompile(`(?i)/Users/[^/]+/`), "/Users/<user>/"},
	{regexp.MustCompile(`(?i)[a-zA-Z]:\\Users\\[^\\]+\\`), `C:\Users\<user>\`},
}

func scrubPath(s string) string {
	for _, d := range userDirs {
		s = d.re.ReplaceAllLiteralString(s, d.repl)
	}
	return s
}

func scrubFrames(st *sentry.Stacktrace) {
	if st == nil {
		return
	}
	for i := range st.Frames {
		st.Frames[i].AbsPath = scrubPath(st.Frames[i].AbsPath)
		st.Frames[i].Filename = scrubPath(st.Frames[i].Filename)
	}
}

func scrubEvent(event *sentry.Event) *sentry.Event {
	event.ServerName = ""
	event.Message = scrubPath(event.Message)

	for i := range event.Exception {
		event.Exception[i].Value = scrubPath(event.Exception[i].Value)
		scrubFrames(event.Exception[i].Stacktrace)
	}
	for i := range event.Threads {
		scrubFrames(event.Threads[i].Stacktrace)
	}
	for k, v := range event.Extra {
		if s, ok := v.(string); ok {
			event.Extra[k] = scrubPath(s)
		}
	}

	return event
}
