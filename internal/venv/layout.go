package venv

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Layout describes the on-disk structure of a virtual environment.
type Layout struct {
	// Root is the absolute environment directory.
	Root string

	// goos selects the platform layout. It is the running OS except in tests.
	goos string
}

// NewLayout returns the layout of the environment rooted at root for the
// running platform.
func NewLayout(root string) *Layout {
	return newLayoutFor(root, runtime.GOOS)
}

func newLayoutFor(root, goos string) *Layout {
	return &Layout{Root: root, goos: goos}
}

// BinDir returns the directory holding the environment's executables:
// Scripts on Windows, bin elsewhere.
func (l *Layout) BinDir() string {
	if l.goos == "windows" {
		return filepath.Join(l.Root, "Scripts")
	}
	return filepath.Join(l.Root, "bin")
}

// Python returns the path of the environment's interpreter.
func (l *Layout) Python() string {
	if l.goos == "windows" {
		return filepath.Join(l.BinDir(), "python.exe")
	}
	return filepath.Join(l.BinDir(), "python")
}

// ConfigFile returns the path of pyvenv.cfg, written by `python -m venv`.
func (l *Layout) ConfigFile() string {
	return filepath.Join(l.Root, "pyvenv.cfg")
}

// Exists reports whether the environment directory exists.
func (l *Layout) Exists() bool {
	info, err := os.Stat(l.Root)
	return err == nil && info.IsDir()
}

// HasInterpreter reports whether the environment's interpreter exists.
// A directory without one is a broken or half-created environment.
func (l *Layout) HasInterpreter() bool {
	info, err := os.Stat(l.Python())
	return err == nil && !info.IsDir()
}

// Version returns the interpreter version recorded in pyvenv.cfg, e.g.
// "3.11.4". Newer Pythons write "version", older ones "version_info".
func (l *Layout) Version() (string, error) {
	f, err := os.Open(l.ConfigFile())
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", l.ConfigFile(), err)
	}
	defer func() { _ = f.Close() }()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", l.ConfigFile(), err)
	}

	for _, key := range []string{"version", "version_info"} {
		if v := values[key]; v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s has no version entry", l.ConfigFile())
}

// Activate returns a copy of base with the variables the venv activation
// scripts set: VIRTUAL_ENV points at the environment, its bin directory is
// prepended to PATH, and PYTHONHOME is removed.
//
// Returns an error if the environment has no interpreter, so nothing can
// run against a missing or half-created environment.
func (l *Layout) Activate(base []string) ([]string, error) {
	if !l.HasInterpreter() {
		return nil, fmt.Errorf("no interpreter at %s", l.Python())
	}

	env := append([]string(nil), base...)
	env = unsetEnv(env, "PYTHONHOME", l.goos)

	path := l.BinDir()
	if current, ok := lookupEnv(env, "PATH", l.goos); ok && current != "" {
		path += string(listSeparator(l.goos)) + current
	}
	env = setEnv(env, "PATH", path, l.goos)
	env = setEnv(env, "VIRTUAL_ENV", l.Root, l.goos)
	return env, nil
}

func listSeparator(goos string) rune {
	if goos == "windows" {
		return ';'
	}
	return ':'
}

// keyEqual compares variable names, case-insensitively on Windows where
// "Path" and "PATH" name the same variable.
func keyEqual(a, b, goos string) bool {
	if goos == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// lookupEnv returns the value of key in env. The last occurrence wins,
// matching os/exec's handling of duplicates.
func lookupEnv(env []string, key, goos string) (string, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		k, v, ok := strings.Cut(env[i], "=")
		if ok && keyEqual(k, key, goos) {
			return v, true
		}
	}
	return "", false
}

// setEnv replaces every occurrence of key with a single KEY=value entry.
func setEnv(env []string, key, value, goos string) []string {
	env = unsetEnv(env, key, goos)
	return append(env, key+"="+value)
}

// unsetEnv removes every occurrence of key.
func unsetEnv(env []string, key, goos string) []string {
	out := env[:0]
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		if keyEqual(k, key, goos) {
			continue
		}
		out = append(out, kv)
	}
	return out
}
