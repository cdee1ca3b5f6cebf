// Package storage provides persistent storage for preferences, game
// statistics and finished games.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chesszero"

// userDataRoot is the per-user directory applications keep state under:
// Application Support on macOS, %APPDATA% on Windows and the XDG data home
// elsewhere.
func userDataRoot() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "AppData", "Roaming"), nil
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

// GetDataDir returns the chesszero directory under the user data root,
// creating it if needed.
func GetDataDir() (string, error) {
	root, err := userDataRoot()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(root, appName))
}

// GetModelDir is where the GUI and UCI binaries look for .onnx networks.
func GetModelDir() (string, error) {
	return dataSubdir("models")
}

// GetDatabaseDir holds the badger files.
func GetDatabaseDir() (string, error) {
	return dataSubdir("db")
}

func dataSubdir(name string) (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dir, name))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
