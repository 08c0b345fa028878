package venv

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/subosito/gotenv"
)

// ReadEnvFile parses the dotenv file at path with github.com/subosito/gotenv.
//
// A missing file is not an error: the returned map is nil and exists is
// false, since the application treats its .env as optional.
func ReadEnvFile(path string) (vars map[string]string, exists bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to open env file: %w", err)
	}
	defer func() { _ = f.Close() }()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, true, fmt.Errorf("failed to parse env file %s: %w", path, err)
	}
	return env, true, nil
}

// MergeEnv returns a copy of base with vars added. Variables already present
// in base are left alone, so values exported in the shell win over the
// file. Added entries are appended in sorted key order.
func MergeEnv(base []string, vars map[string]string) []string {
	return mergeEnvFor(base, vars, runtime.GOOS)
}

func mergeEnvFor(base []string, vars map[string]string, goos string) []string {
	env := append([]string(nil), base...)

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := lookupEnv(env, k, goos); ok {
			continue
		}
		env = append(env, k+"="+vars[k])
	}
	return env
}

// MissingKeys returns the keys that are neither in env nor in vars,
// preserving the order of keys.
func MissingKeys(keys []string, env []string, vars map[string]string) []string {
	var missing []string
	for _, k := range keys {
		if v, ok := vars[k]; ok && v != "" {
			continue
		}
		if v, ok := lookupEnv(env, k, runtime.GOOS); ok && v != "" {
			continue
		}
		missing = append(missing, k)
	}
	return missing
}
