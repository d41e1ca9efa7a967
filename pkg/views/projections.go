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
	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
)

// Projections is the list and detail view of one client, fed from the
// same catalog notifications.
type Projections struct {
	List   *ListProjection
	Detail *DetailProjection
}

func NewProjections(pageSize int, exists func(path string) bool) *Projections {
	return &Projections{
		List:   NewListProjection(pageSize),
		Detail: NewDetailProjection(exists),
	}
}

// CatalogChanged updates both views from the same snapshot. The detail is
// updated first so a removed entry is never shown in the detail after it
// has left the list.
func (p *Projections) CatalogChanged(changes []catalog.Change, snapshot []catalog.Entry) {
	p.Detail.CatalogChanged(changes, snapshot)
	p.List.CatalogChanged(changes, snapshot)
}

// Attach seeds the projections from c and keeps them updated. The returned
// function detaches them.
func (p *Projections) Attach(c *catalog.Catalog) func() {
	return c.ObserveWithSnapshot(p)
}
