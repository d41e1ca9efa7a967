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

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrInvalidParams    = errors.New("invalid params")
	ErrRequestCancelled = errors.New("request cancelled")
)

const APIPath = "/api/v0.1"

// RPCError is an error response returned by the service.
type RPCError struct {
	Message string
	Code    int
}

func (e *RPCError) Error() string {
	return e.Message
}

func localURL(cfg *config.Instance) string {
	u := url.URL{
		Scheme: "ws",
		Host:   "127.0.0.1:" + strconv.Itoa(cfg.APIPort()),
		Path:   APIPath,
	}
	return u.String()
}

func dial(ctx context.Context, cfg *config.Instance) (*websocket.Conn, error) {
	c, resp, err := websocket.DefaultDialer.DialContext(ctx, localURL(cfg), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial websocket: %w", err)
	}
	return c, nil
}

func closeConn(c *websocket.Conn) {
	if err := c.Close(); err != nil {
		log.Debug().Err(err).Msg("error closing websocket")
	}
}

// readUntil reads messages from c in the background until match returns
// true for one of them. The returned channel is closed when reading stops.
func readUntil(c *websocket.Conn, match func([]byte) bool) <-chan []byte {
	found := make(chan []byte, 1)
	go func() {
		defer close(found)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Msg("websocket read stopped")
				return
			}
			if match(message) {
				found <- message
				return
			}
		}
	}()
	return found
}

// await waits for a matched message, closing c early on timeout or
// cancellation. A zero timeout uses the default API request timeout and a
// negative one waits until ctx is done.
func await(
	ctx context.Context,
	c *websocket.Conn,
	found <-chan []byte,
	timeout time.Duration,
) ([]byte, error) {
	var timerChan <-chan time.Time
	switch {
	case timeout == 0:
		timer := time.NewTimer(config.APIRequestTimeout)
		defer timer.Stop()
		timerChan = timer.C
	case timeout > 0:
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerChan = timer.C
	}

	select {
	case msg, ok := <-found:
		if !ok {
			return nil, ErrRequestTimeout
		}
		return msg, nil
	case <-timerChan:
		closeConn(c)
		return nil, ErrRequestTimeout
	case <-ctx.Done():
		closeConn(c)
		return nil, ErrRequestCancelled
	}
}

// LocalClient sends a single method with params to the local running
// service, waits for its response until timeout then disconnects. The
// result is returned as raw JSON.
func LocalClient(
	ctx context.Context,
	cfg *config.Instance,
	method string,
	params string,
) (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", fmt.Errorf("failed to generate request id: %w", err)
	}

	req := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}
	switch {
	case params == "":
	case json.Valid([]byte(params)):
		req.Params = []byte(params)
	default:
		return "", ErrInvalidParams
	}

	c, err := dial(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer closeConn(c)

	found := readUntil(c, func(message []byte) bool {
		var m models.ResponseObject
		if err := json.Unmarshal(message, &m); err != nil {
			return false
		}
		if m.JSONRPC != "2.0" {
			log.Warn().Msg("invalid jsonrpc version")
			return false
		}
		return m.ID == id
	})

	if err := c.WriteJSON(req); err != nil {
		return "", fmt.Errorf("failed to write request: %w", err)
	}

	msg, err := await(ctx, c, found, 0)
	if err != nil {
		return "", err
	}

	var resp struct {
		Error  *models.ErrorObject `json:"error"`
		Result json.RawMessage     `json:"result"`
	}
	if err := json.Unmarshal(msg, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Error != nil {
		return "", &RPCError{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	if len(resp.Result) == 0 {
		return "null", nil
	}
	return string(resp.Result), nil
}

// WaitNotification connects to the local service and blocks until a
// notification with the given method arrives, returning its params.
func WaitNotification(
	ctx context.Context,
	timeout time.Duration,
	cfg *config.Instance,
	method string,
) (string, error) {
	c, err := dial(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer closeConn(c)

	found := readUntil(c, func(message []byte) bool {
		var m models.RequestObject
		if err := json.Unmarshal(message, &m); err != nil {
			return false
		}
		return m.JSONRPC == "2.0" && m.ID == nil && m.Method == method
	})

	msg, err := await(ctx, c, found, timeout)
	if err != nil {
		return "", err
	}

	var n models.RequestObject
	if err := json.Unmarshal(msg, &n); err != nil {
		return "", fmt.Errorf("failed to parse notification: %w", err)
	}
	if len(n.Params) == 0 {
		return "null", nil
	}
	return string(n.Params), nil
}

// IsServiceRunning reports whether a service answers the version method on
// the configured port.
func IsServiceRunning(cfg *config.Instance) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := LocalClient(ctx, cfg, models.MethodVersion, "")
	return err == nil
}

// WaitForAPI polls the local service every interval until it answers or
// timeout passes.
func WaitForAPI(cfg *config.Instance, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if IsServiceRunning(cfg) {
			return true
		}
		if time.Now().Add(interval).After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}
