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

package launcher

import (
	"errors"
	"testing"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/catalog"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-playtime/pkg/testing/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	gamePath      = "/games/hades/Hades"
	companionPath = "/tools/remap/remapper"
)

func setupFs(t *testing.T, paths ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(fs, p, []byte{0x7f}, 0o755))
	}
	return fs
}

func TestLaunch(t *testing.T) {
	t.Parallel()

	mockCmd := &mocks.MockCommandExecutor{}
	mockCmd.On("StartWithOptions", mock.Anything, command.StartOptions{Dir: "/games/hades"}, gamePath, mock.Anything).
		Return(nil)

	l := New(mockCmd, WithFs(setupFs(t, gamePath)))
	err := l.Launch(&catalog.Entry{ID: 1, Name: "Hades", Path: gamePath})
	require.NoError(t, err)
	mockCmd.AssertExpectations(t)
}

func TestLaunch_MissingExecutable(t *testing.T) {
	t.Parallel()

	mockCmd := &mocks.MockCommandExecutor{}
	l := New(mockCmd, WithFs(afero.NewMemMapFs()))

	err := l.Launch(&catalog.Entry{ID: 1, Path: gamePath})
	require.ErrorIs(t, err, ErrLaunchFailure)
	mockCmd.AssertNotCalled(t, "StartWithOptions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLaunch_StartError(t *testing.T) {
	t.Parallel()

	mockCmd := &mocks.MockCommandExecutor{}
	mockCmd.On("StartWithOptions", mock.Anything, mock.Anything, gamePath, mock.Anything).
		Return(errors.New("permission denied"))

	l := New(mockCmd, WithFs(setupFs(t, gamePath)))
	err := l.Launch(&catalog.Entry{ID: 1, Path: gamePath})
	require.ErrorIs(t, err, ErrLaunchFailure)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestLaunch_ControllerRemapStartsCompanion(t *testing.T) {
	t.Parallel()

	mockCmd := &mocks.MockCommandExecutor{}
	mockCmd.On("StartWithOptions", mock.Anything,
		command.StartOptions{Dir: "/tools/remap", HideWindow: true}, companionPath, mock.Anything).
		Return(nil).Once()
	mockCmd.On("StartWithOptions", mock.Anything, mock.Anything, gamePath, mock.Anything).
		Return(nil).Once()

	l := New(mockCmd,
		WithFs(setupFs(t, gamePath, companionPath)),
		WithCompanion(func() string { return companionPath }),
	)
	err := l.Launch(&catalog.Entry{ID: 1, Path: gamePath, ControllerRemap: true})
	require.NoError(t, err)
	mockCmd.AssertExpectations(t)
}

func TestLaunch_CompanionFailureDoesNotBlockGame(t *testing.T) {
	t.Parallel()

	mockCmd := &mocks.MockCommandExecutor{}
	mockCmd.On("StartWithOptions", mock.Anything, mock.Anything, companionPath, mock.Anything).
		Return(errors.New("boom")).Once()
	mockCmd.On("StartWithOptions", mock.Anything, mock.Anything, gamePath, mock.Anything).
		Return(nil).Once()

	l := New(mockCmd,
		WithFs(setupFs(t, gamePath, companionPath)),
		WithCompanion(func() string { return companionPath }),
	)
	require.NoError(t, l.Launch(&catalog.Entry{ID: 1, Path: gamePath, ControllerRemap: true}))
	mockCmd.AssertExpectations(t)
}

func TestLaunch_CompanionMissingOrUnset(t *testing.T) {
	t.Parallel()

	for _, companion := range []string{"", companionPath} {
		mockCmd := &mocks.MockCommandExecutor{}
		mockCmd.On("StartWithOptions", mock.Anything, mock.Anything, gamePath, mock.Anything).
			Return(nil).Once()

		l := New(mockCmd,
			WithFs(setupFs(t, gamePath)),
			WithCompanion(func() string { return companion }),
		)
		require.NoError(t, l.Launch(&catalog.Entry{ID: 1, Path: gamePath, ControllerRemap: true}))
		mockCmd.AssertExpectations(t)
		mockCmd.AssertNumberOfCalls(t, "StartWithOptions", 1)
	}
}
