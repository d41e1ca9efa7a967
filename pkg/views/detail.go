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

package views

import (
	"fmt"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/syncutil"
)

// Detail is the selected entry plus whether its executable is still on
// disk.
type Detail struct {
	Entry      catalog.Entry `json:"entry"`
	FileExists bool          `json:"fileExists"`
}

// DetailProjection tracks at most one selected entry and keeps it in sync
// with the catalog.
type DetailProjection struct {
	exists   func(path string) bool
	onChange func(*Detail)
	detail   *Detail
	snapshot []catalog.Entry
	selected int64
	mu       syncutil.RWMutex
}

// NewDetailProjection creates a detail projection. exists checks whether an
// executable path is present.
func NewDetailProjection(exists func(path string) bool) *DetailProjection {
	return &DetailProjection{exists: exists}
}

// OnChange sets a callback run whenever the detail changes. It receives nil
// when the selection is cleared.
func (p *DetailProjection) OnChange(fn func(*Detail)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

func findEntry(snapshot []catalog.Entry, id int64) (catalog.Entry, bool) {
	for i := range snapshot {
		if snapshot[i].ID == id {
			return snapshot[i], true
		}
	}
	return catalog.Entry{}, false
}

func (p *DetailProjection) notifier() func() {
	if p.onChange == nil {
		return func() {}
	}
	fn := p.onChange
	var d *Detail
	if p.detail != nil {
		c := *p.detail
		d = &c
	}
	return func() { fn(d) }
}

// Select makes id the selected entry, checking its executable exists.
func (p *DetailProjection) Select(id int64) (Detail, error) {
	p.mu.Lock()
	e, ok := findEntry(p.snapshot, id)
	if !ok {
		p.mu.Unlock()
		return Detail{}, fmt.Errorf("%w: %d", catalog.ErrNotFound, id)
	}
	p.selected = id
	p.detail = &Detail{Entry: e, FileExists: p.exists(e.Path)}
	d := *p.detail
	notify := p.notifier()
	p.mu.Unlock()

	notify()
	return d, nil
}

func (p *DetailProjection) Clear() {
	p.mu.Lock()
	p.selected = 0
	p.detail = nil
	notify := p.notifier()
	p.mu.Unlock()
	notify()
}

// Detail returns the current selection, if any.
func (p *DetailProjection) Detail() (Detail, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.detail == nil {
		return Detail{}, false
	}
	return *p.detail, true
}

func (p *DetailProjection) Selected() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

func affects(changes []catalog.Change, id int64) bool {
	for _, c := range changes {
		if c.Kind == catalog.ChangeReplaced || c.Entry.ID == id {
			return true
		}
	}
	return false
}

func (p *DetailProjection) CatalogChanged(changes []catalog.Change, snapshot []catalog.Entry) {
	p.mu.Lock()
	p.snapshot = snapshot

	if p.selected == 0 || !affects(changes, p.selected) {
		p.mu.Unlock()
		return
	}

	e, ok := findEntry(snapshot, p.selected)
	if !ok {
		p.selected = 0
		p.detail = nil
	} else {
		p.detail = &Detail{Entry: e, FileExists: p.exists(e.Path)}
	}
	notify := p.notifier()
	p.mu.Unlock()

	notify()
}
