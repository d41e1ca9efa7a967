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
	"os"
	"path/filepath"
	"sync"

	"github.com/ZaparooProject/zaparoo-playtime/pkg/config"
	"github.com/adrg/xdg"
)

const (
	// UserDirName is checked for next to the executable. If present, all
	// app files are kept inside it for a portable install.
	UserDirName = "user"
	// ExeEnv overrides the executable path used to find the user dir.
	ExeEnv = "PLAYTIME_EXE"
)

// Dirs holds the directories the app reads and writes.
type Dirs struct {
	ConfigDir string
	DataDir   string
	TempDir   string
}

var (
	userDirOnce        sync.Once
	userDirCache       string
	userDirCacheExists bool
)

// HasUserDir checks for a "user" directory next to the running executable
// and returns true and the absolute path to it. The result is cached after
// the first call.
func HasUserDir() (string, bool) {
	userDirOnce.Do(func() {
		exePath := os.Getenv(ExeEnv)
		if exePath == "" {
			var err error
			exePath, err = os.Executable()
			if err != nil {
				return
			}
		}

		userDir := filepath.Join(filepath.Dir(exePath), UserDirName)
		info, err := os.Stat(userDir)
		if err != nil || !info.IsDir() {
			return
		}

		userDirCache = userDir
		userDirCacheExists = true
	})

	return userDirCache, userDirCacheExists
}

// DefaultDirs returns the XDG locations for the app, or the portable user
// dir when one exists.
func DefaultDirs() Dirs {
	if v, ok := HasUserDir(); ok {
		return Dirs{
			ConfigDir: v,
			DataDir:   v,
			TempDir:   filepath.Join(v, "tmp"),
		}
	}

	tempDir := filepath.Join(os.TempDir(), config.AppName)
	if xdg.RuntimeDir != "" {
		tempDir = filepath.Join(xdg.RuntimeDir, config.AppName)
	}

	return Dirs{
		ConfigDir: filepath.Join(xdg.ConfigHome, config.AppName),
		DataDir:   filepath.Join(xdg.DataHome, config.AppName),
		TempDir:   tempDir,
	}
}

// Ensure creates every directory in d.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.ConfigDir, d.DataDir, d.TempDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return nil
}

func ExeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}

	return filepath.Dir(exe)
}
