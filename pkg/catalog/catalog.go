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
	"strings"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeUpdated
	ChangeStarted
	ChangeStopped
	ChangeTicked
	ChangeReplaced
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeUpdated:
		return "updated"
	case ChangeStarted:
		return "started"
	case ChangeStopped:
		return "stopped"
	case ChangeTicked:
		return "ticked"
	case ChangeReplaced:
		return "replaced"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change describes one mutation. For ChangeRemoved, Entry is the entry as
// it was before removal. ChangeReplaced has a zero Entry.
type Change struct {
	Entry Entry
	Kind  ChangeKind
}

// Observer is notified after every mutation with the changes made and a
// snapshot of the catalog afterwards. Observers are called with the catalog
// lock held and must not call back into the catalog.
type Observer interface {
	CatalogChanged(changes []Change, snapshot []Entry)
}

type ObserverFunc func(changes []Change, snapshot []Entry)

func (f ObserverFunc) CatalogChanged(changes []Change, snapshot []Entry) {
	f(changes, snapshot)
}

// Catalog is the in-memory set of tracked games. All reads and writes are
// serialized by a single mutex.
type Catalog struct {
	clock     clockwork.Clock
	fs        afero.Fs
	byName    map[string]int
	observers map[int]Observer
	entries   []Entry
	lastID    int64
	nextObsID int
	mu        syncutil.Mutex
}

type Option func(*Catalog)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Catalog) {
		c.clock = clock
	}
}

// WithFs sets the filesystem used for executable checks.
func WithFs(fs afero.Fs) Option {
	return func(c *Catalog) {
		c.fs = fs
	}
}

func New(opts ...Option) *Catalog {
	c := &Catalog{
		clock:     clockwork.NewRealClock(),
		fs:        afero.NewOsFs(),
		byName:    make(map[string]int),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observe registers o for change notifications and returns a function that
// unregisters it.
func (c *Catalog) Observe(o Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = o
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// ObserveWithSnapshot registers o and immediately calls it with a
// ChangeReplaced and the current contents, so o starts from a state that
// no later change can slip in front of.
func (c *Catalog) ObserveWithSnapshot(o Observer) func() {
	c.mu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = o
	o.CatalogChanged([]Change{{Kind: ChangeReplaced}}, c.snapshotLocked())
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// notifyLocked must be called with mu held.
func (c *Catalog) notifyLocked(changes []Change) {
	if len(changes) == 0 || len(c.observers) == 0 {
		return
	}
	snapshot := c.snapshotLocked()
	for _, o := range c.observers {
		o.CatalogChanged(changes, snapshot)
	}
}

func (c *Catalog) snapshotLocked() []Entry {
	out := make([]Entry, len(c.entries))
	for i := range c.entries {
		out[i] = c.entries[i].Clone()
	}
	return out
}

func (c *Catalog) reindexLocked() {
	clear(c.byName)
	for i := range c.entries {
		c.byName[c.entries[i].Name] = i
	}
}

func (c *Catalog) indexOfLocked(id int64) int {
	for i := range c.entries {
		if c.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// nextIDLocked returns a clock derived id that is always greater than any
// id handed out or loaded before.
func (c *Catalog) nextIDLocked() int64 {
	id := c.clock.Now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

// Snapshot returns a copy of every entry in insertion order.
func (c *Catalog) Snapshot() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Catalog) Get(id int64) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOfLocked(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c.entries[i].Clone(), nil
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i].Clone(), true
}

// Add starts tracking the executable at path. The entry's name is the
// path's final component and must not already be tracked.
func (c *Catalog) Add(path string) (Entry, error) {
	name := NameFromPath(path)
	if name == "" {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[name]; ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	e := Entry{
		ID:        c.nextIDLocked(),
		Name:      name,
		Path:      strings.TrimSpace(path),
		AddedDate: c.clock.Now(),
	}
	c.entries = append(c.entries, e)
	c.byName[name] = len(c.entries) - 1

	log.Info().Int64("id", e.ID).Str("name", name).Msg("added game")

	added := e.Clone()
	c.notifyLocked([]Change{{Kind: ChangeAdded, Entry: added}})
	return added, nil
}

func (c *Catalog) Remove(id int64) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOfLocked(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	removed := c.entries[i]
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.reindexLocked()

	log.Info().Int64("id", id).Str("name", removed.Name).Msg("removed game")

	c.notifyLocked([]Change{{Kind: ChangeRemoved, Entry: removed.Clone()}})
	return removed, nil
}

// Edit merges the patch into the entry. Time tracking fields are never
// touched by an edit.
func (c *Catalog) Edit(id int64, patch Patch) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOfLocked(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	if patch.IsEmpty() {
		return c.entries[i].Clone(), nil
	}

	patch.apply(&c.entries[i])
	updated := c.entries[i].Clone()

	log.Debug().Int64("id", id).Msg("edited game")

	c.notifyLocked([]Change{{Kind: ChangeUpdated, Entry: updated}})
	return updated, nil
}

// ApplyRunningSet advances the running state of every entry by one tick.
// Entries present in active gain one second of play time; entries that were
// running and are now absent stop and get their last played date set.
func (c *Catalog) ApplyRunningSet(active map[string]struct{}) []Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	var changes []Change

	for i := range c.entries {
		e := &c.entries[i]
		_, present := active[e.Name]

		switch {
		case present:
			kind := ChangeTicked
			if !e.Running {
				kind = ChangeStarted
				log.Info().Int64("id", e.ID).Str("name", e.Name).Msg("game started")
			}
			e.Running = true
			e.Time++
			changes = append(changes, Change{Kind: kind, Entry: e.Clone()})
		case e.Running:
			e.Running = false
			played := now
			e.LastPlayedDate = &played
			log.Info().Int64("id", e.ID).Str("name", e.Name).
				Int64("playTime", e.Time).Msg("game stopped")
			changes = append(changes, Change{Kind: ChangeStopped, Entry: e.Clone()})
		}
	}

	c.notifyLocked(changes)
	return changes
}

// Replace swaps the whole catalog for entries, as loaded from the store.
// Entries with a duplicate name are dropped and missing ids are assigned.
// The running flag is never taken from entries: names already tracked keep
// their in-memory flag and new names start stopped until a poll sees them.
// The returned changes hold a ChangeRemoved for every tracked name that is
// gone, followed by ChangeReplaced.
func (c *Catalog) Replace(entries []Entry) []Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	running := make(map[string]bool, len(c.entries))
	for i := range c.entries {
		running[c.entries[i].Name] = c.entries[i].Running
	}

	seen := make(map[string]struct{}, len(entries))
	seenIDs := make(map[int64]struct{}, len(entries))
	next := make([]Entry, 0, len(entries))

	for i := range entries {
		e := entries[i].Clone()
		if e.Name == "" {
			e.Name = NameFromPath(e.Path)
		}
		if e.Name == "" {
			log.Warn().Int64("id", e.ID).Msg("dropping stored game with no name")
			continue
		}
		if _, ok := seen[e.Name]; ok {
			log.Warn().Str("name", e.Name).Msg("dropping stored game with duplicate name")
			continue
		}
		seen[e.Name] = struct{}{}

		e.Running = running[e.Name]
		if e.ID > c.lastID {
			c.lastID = e.ID
		}
		next = append(next, e)
	}

	// ids are fixed up after the scan so new ids never collide with stored ones
	for i := range next {
		if _, dup := seenIDs[next[i].ID]; next[i].ID <= 0 || dup {
			next[i].ID = c.nextIDLocked()
		}
		seenIDs[next[i].ID] = struct{}{}
	}

	var changes []Change
	for i := range c.entries {
		if _, kept := seen[c.entries[i].Name]; kept {
			continue
		}
		log.Info().Int64("id", c.entries[i].ID).Str("name", c.entries[i].Name).
			Msg("game dropped by reload")
		changes = append(changes, Change{Kind: ChangeRemoved, Entry: c.entries[i].Clone()})
	}
	changes = append(changes, Change{Kind: ChangeReplaced})

	c.entries = next
	c.reindexLocked()

	log.Debug().Int("count", len(next)).Msg("replaced catalog")

	c.notifyLocked(changes)
	return changes
}

// VerifyExecutable checks the entry's executable still exists.
func (c *Catalog) VerifyExecutable(path string) bool {
	return VerifyExecutable(c.fs, path)
}

// Fs returns the filesystem used for executable checks.
func (c *Catalog) Fs() afero.Fs {
	return c.fs
}

// Clock returns the clock used for timestamps.
func (c *Catalog) Clock() clockwork.Clock {
	return c.clock
}
