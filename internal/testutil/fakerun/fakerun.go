// Package fakerun provides a scripted launcher.Runner for tests.
package fakerun

import (
	"context"
	"sync"

	"checkpoint/internal/launcher"
)

// Call records a single invocation.
type Call struct {
	Dir     string
	Command string
}

// Runner returns canned results keyed by command line. Commands without a
// script succeed with empty output.
type Runner struct {
	mu      sync.Mutex
	Results map[string]launcher.Result
	Calls   []Call
}

// New builds an empty runner.
func New() *Runner {
	return &Runner{Results: make(map[string]launcher.Result)}
}

// Script registers the outcome of command.
func (r *Runner) Script(command string, res launcher.Result) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results[command] = res
	return r
}

func (r *Runner) Run(_ context.Context, dir, command string) (launcher.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, Call{Dir: dir, Command: command})
	res := r.Results[command]
	if res.ExitCode != 0 {
		return res, &launcher.ExitError{
			Command:  command,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}

// Commands lists the recorded command lines in order.
func (r *Runner) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.Command)
	}
	return out
}
