package bootstrap

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shinji-kodama/edupulse/internal/model"
	"github.com/shinji-kodama/edupulse/internal/runner"
)

// versionPattern extracts "X.Y" or "X.Y.Z" from `python --version` output
// such as "Python 3.11.4" or "Python 3.13.0rc1".
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// ParseVersion returns the numeric components of the first version found
// in s. Missing components are omitted, so "3.8" yields [3 8].
func ParseVersion(s string) ([]int, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		// Accept a bare major version ("3") for min_python.
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return []int{n}, nil
		}
		return nil, fmt.Errorf("no version found in %q", s)
	}

	var parts []int
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return nil, fmt.Errorf("invalid version component %q: %w", g, err)
		}
		parts = append(parts, n)
	}
	return parts, nil
}

// CompareVersions returns -1, 0 or 1 as a is older than, equal to or newer
// than b. Missing trailing components count as zero.
func CompareVersions(a, b []int) int {
	n := max(len(a), len(b))
	for i := range n {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// formatVersion renders parsed components as "3.11.4".
func formatVersion(parts []int) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ".")
}

// FindInterpreter returns the first candidate that resolves on PATH,
// answers `--version` with exit code 0 and is at least minVersion.
// An empty minVersion accepts any version.
//
// When no candidate qualifies, the returned CLIError carries
// ExitInterpreterNotFound and lists why each candidate was rejected.
// Cancelling ctx stops the search with an error wrapping ctx.Err().
func FindInterpreter(ctx context.Context, r runner.Runner, candidates []string, minVersion string, logf func(string, ...any)) (*model.Interpreter, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	var minParts []int
	if minVersion != "" {
		parts, err := ParseVersion(minVersion)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "invalid minimum Python version", err)
		}
		minParts = parts
	}

	var reasons []string
	for _, name := range candidates {
		path, err := r.LookPath(name)
		if err != nil {
			logf("Interpreter candidate %q not on PATH", name)
			reasons = append(reasons, fmt.Sprintf("%s: not found", name))
			continue
		}

		res, err := r.Run(ctx, runner.Command{Name: path, Args: []string{"--version"}})
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Later candidates would fail the same way.
			return nil, fmt.Errorf("interpreter discovery interrupted: %w", ctxErr)
		}
		if err != nil {
			logf("Interpreter candidate %q failed to start: %v", name, err)
			reasons = append(reasons, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if !res.Success() {
			// The Windows Store "python" alias exits non-zero instead of
			// running anything, so it lands here.
			logf("Interpreter candidate %q exited with code %d", name, res.ExitCode)
			reasons = append(reasons, fmt.Sprintf("%s: exited with code %d", name, res.ExitCode))
			continue
		}

		parts, err := ParseVersion(res.Output())
		if err != nil {
			logf("Interpreter candidate %q printed no version: %q", name, res.Output())
			reasons = append(reasons, fmt.Sprintf("%s: unrecognized version output", name))
			continue
		}

		version := formatVersion(parts)
		if minParts != nil && CompareVersions(parts, minParts) < 0 {
			logf("Interpreter candidate %q is %s, below %s", name, version, minVersion)
			reasons = append(reasons, fmt.Sprintf("%s: version %s is older than %s", name, version, minVersion))
			continue
		}

		logf("Selected interpreter %q at %s (Python %s)", name, path, version)
		return &model.Interpreter{Name: name, Path: path, Version: version}, nil
	}

	return nil, model.WrapCLIError(
		model.ExitInterpreterNotFound,
		"no usable Python interpreter found",
		fmt.Errorf("%s", strings.Join(reasons, "; ")),
	)
}
