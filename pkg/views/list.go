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

// Package views derives read-only projections of the catalog for display.
// Projections never hold their own copy of tracked fields; they are rebuilt
// from catalog snapshots on every change.
package views

import (
	"slices"
	"strings"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/syncutil"
	"github.com/hbollon/go-edlib"
	"golang.org/x/text/cases"
)

// PageSize is how many more entries each window extension reveals.
const PageSize = 15

const (
	maxSuggestions     = 3
	minSuggestionScore = 0.8
)

// Query filters the list. Empty Text matches everything and a Year of 0
// matches any year.
type Query struct {
	Text string `json:"text,omitempty"`
	Year int    `json:"year,omitempty"`
}

type Result struct {
	Query   Query           `json:"query"`
	Entries []catalog.Entry `json:"entries"`
	Total   int             `json:"total"`
	Visible int             `json:"visible"`
	HasMore bool            `json:"hasMore"`

	// Suggestions holds close names when a text search matched nothing.
	Suggestions []string `json:"suggestions,omitempty"`
}

// matcher holds a query prepared for matching. Casers carry state, so each
// matcher gets its own.
type matcher struct {
	caser  cases.Caser
	needle string
	year   int
}

func newMatcher(q Query) *matcher {
	m := &matcher{caser: cases.Fold(), year: q.Year}
	if text := strings.TrimSpace(q.Text); text != "" {
		m.needle = m.caser.String(text)
	}
	return m
}

func (m *matcher) match(e *catalog.Entry) bool {
	if m.year != 0 && e.AddedDate.Local().Year() != m.year {
		return false
	}
	if m.needle == "" {
		return true
	}
	if strings.Contains(m.caser.String(e.Name), m.needle) {
		return true
	}
	return e.CustomName != nil && strings.Contains(m.caser.String(*e.CustomName), m.needle)
}

// Matches reports whether e passes the query. Text matches any part of the
// name or custom name, ignoring case.
func Matches(e *catalog.Entry, q Query) bool {
	return newMatcher(q).match(e)
}

// Filter applies q to entries, keeping catalog order, and cuts the result
// down to the first visible matches. A visible count of 0 or less returns
// every match.
func Filter(entries []catalog.Entry, q Query, visible int) Result {
	m := newMatcher(q)
	matched := make([]catalog.Entry, 0, len(entries))
	for i := range entries {
		if m.match(&entries[i]) {
			matched = append(matched, entries[i])
		}
	}

	res := Result{
		Query: q,
		Total: len(matched),
	}
	if visible > 0 && len(matched) > visible {
		matched = matched[:visible]
		res.HasMore = true
	}
	res.Entries = matched
	res.Visible = len(matched)
	if res.Total == 0 && m.needle != "" {
		res.Suggestions = m.suggest(entries)
	}
	return res
}

type suggestion struct {
	name  string
	score float32
}

// suggest ranks names in the query's year by Jaro-Winkler similarity to
// the search text, best first.
func (m *matcher) suggest(entries []catalog.Entry) []string {
	found := make([]suggestion, 0)
	seen := make(map[string]struct{})
	for i := range entries {
		e := &entries[i]
		if m.year != 0 && e.AddedDate.Local().Year() != m.year {
			continue
		}
		name := e.DisplayName()
		if _, ok := seen[name]; ok {
			continue
		}
		score := edlib.JaroWinklerSimilarity(m.needle, m.caser.String(name))
		if score < minSuggestionScore {
			continue
		}
		seen[name] = struct{}{}
		found = append(found, suggestion{name: name, score: score})
	}

	slices.SortStableFunc(found, func(a, b suggestion) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	names := make([]string, 0, maxSuggestions)
	for _, f := range found[:min(len(found), maxSuggestions)] {
		names = append(names, f.name)
	}
	return names
}

// AvailableYears returns the distinct years games were added in, newest
// first.
func AvailableYears(entries []catalog.Entry) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for i := range entries {
		y := entries[i].AddedDate.Local().Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}

// ListProjection is a filtered list that grows in pages as the user
// scrolls.
type ListProjection struct {
	onChange func(Result)
	snapshot []catalog.Entry
	result   Result
	query    Query
	visible  int
	pageSize int
	mu       syncutil.RWMutex
}

func NewListProjection(pageSize int) *ListProjection {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	return &ListProjection{
		pageSize: pageSize,
		visible:  pageSize,
		snapshot: []catalog.Entry{},
		result:   Filter(nil, Query{}, pageSize),
	}
}

// OnChange sets a callback run with the new result after every recompute.
func (p *ListProjection) OnChange(fn func(Result)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

func (p *ListProjection) recomputeLocked() func() {
	p.result = Filter(p.snapshot, p.query, p.visible)
	if p.onChange == nil {
		return func() {}
	}
	fn, res := p.onChange, p.result
	return func() { fn(res) }
}

// SetQuery changes the filter and resets the window to one page.
func (p *ListProjection) SetQuery(q Query) Result {
	p.mu.Lock()
	p.query = q
	p.visible = p.pageSize
	notify := p.recomputeLocked()
	res := p.result
	p.mu.Unlock()
	notify()
	return res
}

// Extend reveals another page of matches.
func (p *ListProjection) Extend() Result {
	p.mu.Lock()
	p.visible += p.pageSize
	notify := p.recomputeLocked()
	res := p.result
	p.mu.Unlock()
	notify()
	return res
}

func (p *ListProjection) Result() Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result
}

func (p *ListProjection) Years() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return AvailableYears(p.snapshot)
}

func (p *ListProjection) CatalogChanged(_ []catalog.Change, snapshot []catalog.Entry) {
	p.mu.Lock()
	p.snapshot = snapshot
	notify := p.recomputeLocked()
	p.mu.Unlock()
	notify()
}
