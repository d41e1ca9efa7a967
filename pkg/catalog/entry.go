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
	"slices"
	"strings"
	"time"
)

// Entry is a single tracked executable.
type Entry struct {
	AddedDate       time.Time  `json:"addedDate"`
	CustomName      *string    `json:"customName,omitempty"`
	CoverURL        *string    `json:"coverUrl,omitempty"`
	LastPlayedDate  *time.Time `json:"lastPlayedDate,omitempty"`
	Description     *string    `json:"description,omitempty"`
	ReleaseDate     *string    `json:"releaseDate,omitempty"`
	Name            string     `json:"name"`
	Path            string     `json:"path"`
	Screenshots     []string   `json:"screenshots,omitempty"`
	Genres          []string   `json:"genres,omitempty"`
	ID              int64      `json:"id"`
	Time            int64      `json:"time"`
	Running         bool       `json:"running"`
	ControllerRemap bool       `json:"controllerRemap,omitempty"`
}

// DisplayName returns the custom name if one is set, otherwise the
// executable name.
func (e *Entry) DisplayName() string {
	if e.CustomName != nil && *e.CustomName != "" {
		return *e.CustomName
	}
	return e.Name
}

// Clone returns a deep copy of the entry so callers can't mutate catalog
// state through shared pointers or slices.
func (e *Entry) Clone() Entry {
	c := *e
	c.CustomName = clonePtr(e.CustomName)
	c.CoverURL = clonePtr(e.CoverURL)
	c.LastPlayedDate = clonePtr(e.LastPlayedDate)
	c.Description = clonePtr(e.Description)
	c.ReleaseDate = clonePtr(e.ReleaseDate)
	c.Screenshots = slices.Clone(e.Screenshots)
	c.Genres = slices.Clone(e.Genres)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Patch is a partial update to an entry's user editable fields. Nil fields
// are left unchanged. An empty CustomName or CoverURL clears the override.
type Patch struct {
	CustomName      *string   `json:"customName,omitempty"`
	CoverURL        *string   `json:"coverUrl,omitempty"`
	ControllerRemap *bool     `json:"controllerRemap,omitempty"`
	Description     *string   `json:"description,omitempty"`
	ReleaseDate     *string   `json:"releaseDate,omitempty"`
	Screenshots     *[]string `json:"screenshots,omitempty"`
	Genres          *[]string `json:"genres,omitempty"`
}

// IsEmpty returns true if the patch would change nothing.
func (p *Patch) IsEmpty() bool {
	return p.CustomName == nil &&
		p.CoverURL == nil &&
		p.ControllerRemap == nil &&
		p.Description == nil &&
		p.ReleaseDate == nil &&
		p.Screenshots == nil &&
		p.Genres == nil
}

func (p *Patch) apply(e *Entry) {
	if p.CustomName != nil {
		e.CustomName = optionalString(*p.CustomName)
	}
	if p.CoverURL != nil {
		e.CoverURL = optionalString(*p.CoverURL)
	}
	if p.ControllerRemap != nil {
		e.ControllerRemap = *p.ControllerRemap
	}
	if p.Description != nil {
		e.Description = optionalString(*p.Description)
	}
	if p.ReleaseDate != nil {
		e.ReleaseDate = optionalString(*p.ReleaseDate)
	}
	if p.Screenshots != nil {
		e.Screenshots = slices.Clone(*p.Screenshots)
	}
	if p.Genres != nil {
		e.Genres = slices.Clone(*p.Genres)
	}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// NameFromPath returns the final component of an executable path. Both
// forward and back slashes are treated as separators so Windows paths
// resolve the same on every host.
func NameFromPath(path string) string {
	path = strings.TrimSpace(path)
	i := strings.LastIndexAny(path, `/\`)
	return path[i+1:]
}
