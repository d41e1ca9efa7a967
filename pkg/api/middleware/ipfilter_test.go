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

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIPFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		allowed  []string
		prefixes int
	}{
		{name: "empty list", allowed: []string{}, prefixes: 0},
		{name: "single IP", allowed: []string{"192.168.1.1"}, prefixes: 1},
		{name: "single CIDR", allowed: []string{"192.168.1.0/24"}, prefixes: 1},
		{name: "mixed", allowed: []string{"192.168.1.1", "10.0.0.0/8", "172.16.0.5"}, prefixes: 3},
		{name: "invalid skipped", allowed: []string{"invalid", "10.0.0.1"}, prefixes: 1},
		{name: "IPv6", allowed: []string{"::1", "2001:db8::/32"}, prefixes: 2},
		{name: "port stripped", allowed: []string{"192.168.1.1:7497", "[::1]:8080"}, prefixes: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := NewIPFilter(tt.allowed)
			require.NotNil(t, f)
			assert.Len(t, f.prefixes, tt.prefixes)
			assert.Equal(t, len(tt.allowed) == 0, f.empty)
		})
	}
}

func TestIPFilter_IsAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		allowed    []string
		want       bool
	}{
		{name: "empty allowlist allows all", remoteAddr: "203.0.113.9:1234", want: true},
		{name: "exact match", allowed: []string{"192.168.1.10"}, remoteAddr: "192.168.1.10:5000", want: true},
		{name: "exact mismatch", allowed: []string{"192.168.1.10"}, remoteAddr: "192.168.1.11:5000", want: false},
		{name: "CIDR match", allowed: []string{"10.0.0.0/8"}, remoteAddr: "10.20.30.40:80", want: true},
		{name: "CIDR mismatch", allowed: []string{"10.0.0.0/8"}, remoteAddr: "11.0.0.1:80", want: false},
		{name: "unmasked CIDR", allowed: []string{"192.168.1.77/24"}, remoteAddr: "192.168.1.3:80", want: true},
		{name: "IPv6 loopback", allowed: []string{"::1"}, remoteAddr: "[::1]:7497", want: true},
		{name: "IPv4 mapped IPv6", allowed: []string{"192.168.1.10"}, remoteAddr: "[::ffff:192.168.1.10]:80", want: true},
		{name: "no port", allowed: []string{"192.168.1.10"}, remoteAddr: "192.168.1.10", want: true},
		{name: "unparseable", allowed: []string{"192.168.1.10"}, remoteAddr: "not-an-ip:80", want: false},
		{name: "only invalid entries block all", allowed: []string{"bogus"}, remoteAddr: "127.0.0.1:80", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewIPFilter(tt.allowed).IsAllowed(tt.remoteAddr))
		})
	}
}

func TestHTTPIPFilterMiddleware(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := HTTPIPFilterMiddleware(NewIPFilter([]string{"192.168.1.0/24"}))(next)

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.RemoteAddr = "192.168.1.50:40000"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api", nil)
	req.RemoteAddr = "192.168.2.50:40000"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestParseRemoteIP(t *testing.T) {
	t.Parallel()

	addr, ok := ParseRemoteIP("192.168.1.1:8080")
	require.True(t, ok)
	assert.Equal(t, "192.168.1.1", addr.String())

	addr, ok = ParseRemoteIP("[2001:db8::1]:443")
	require.True(t, ok)
	assert.Equal(t, "2001:db8::1", addr.String())

	_, ok = ParseRemoteIP("")
	assert.False(t, ok)
}

func TestIsLoopbackAddr(t *testing.T) {
	t.Parallel()

	assert.True(t, IsLoopbackAddr("127.0.0.1:7497"))
	assert.True(t, IsLoopbackAddr("127.8.0.1:7497"))
	assert.True(t, IsLoopbackAddr("[::1]:7497"))
	assert.False(t, IsLoopbackAddr("192.168.1.1:7497"))
	assert.False(t, IsLoopbackAddr("garbage"))
}
