// Package runnertest provides a scriptable runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/shinji-kodama/edupulse/internal/runner"
)

// Response is the scripted outcome for a matching command.
type Response struct {
	// Result is returned when Err is nil.
	Result runner.Result

	// Err simulates a process that could not be started.
	Err error

	// Stdout is written to Command.Stdout (or captured) before returning.
	Stdout string

	// Hook runs before the response is returned, for side effects such as
	// creating the files a real `python -m venv` would create.
	Hook func(cmd runner.Command)
}

// Fake records every invocation and answers from scripted responses.
//
// Commands are matched by prefix of their rendered command line
// (runner.Command.String()). The longest matching prefix wins. Commands with
// no matching response succeed with exit code 0.
type Fake struct {
	mu        sync.Mutex
	responses map[string]Response
	paths     map[string]string
	calls     []runner.Command
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{
		responses: make(map[string]Response),
		paths:     make(map[string]string),
	}
}

// On registers a response for command lines starting with prefix.
func (f *Fake) On(prefix string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = resp
	return f
}

// AddPath makes LookPath(name) resolve to path.
func (f *Fake) AddPath(name, path string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[name] = path
	return f
}

// LookPath implements runner.Runner.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %s", runner.ErrNotFound, name)
}

// Run implements runner.Runner.
func (f *Fake) Run(_ context.Context, cmd runner.Command) (runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	resp, ok := f.match(cmd.String())
	f.mu.Unlock()

	if !ok {
		return runner.Result{}, nil
	}
	if resp.Hook != nil {
		resp.Hook(cmd)
	}
	if resp.Err != nil {
		return runner.Result{}, resp.Err
	}

	result := resp.Result
	if resp.Stdout != "" {
		if cmd.Stdout != nil {
			_, _ = io.WriteString(cmd.Stdout, resp.Stdout)
		} else {
			result.Stdout = resp.Stdout
		}
	}
	return result, nil
}

// match must be called with f.mu held.
func (f *Fake) match(line string) (Response, bool) {
	best := ""
	found := false
	for prefix := range f.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) >= len(best) {
			best = prefix
			found = true
		}
	}
	return f.responses[best], found
}

// Calls returns a copy of every recorded command.
func (f *Fake) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.calls...)
}

// CommandLines returns the rendered command line of every recorded call.
func (f *Fake) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Called reports whether any recorded command line contains substr.
func (f *Fake) Called(substr string) bool {
	for _, line := range f.CommandLines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
