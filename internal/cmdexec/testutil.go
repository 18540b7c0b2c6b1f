// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cmdexec

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ExecuteFunc is the signature of CommandExecutor.Execute.
type ExecuteFunc func(ctx context.Context, opts CommandOptions, name string, args ...string) error

// MockCommandExecutor implements CommandExecutor for testing
type MockCommandExecutor struct {
	mu           sync.RWMutex
	commands     []MockCommand
	executeFunc  ExecuteFunc
	lookPathFunc func(file string) (string, error)
}

// MockCommand represents a command execution for verification
type MockCommand struct {
	Name  string
	Args  []string
	Dir   string
	Env   []string
	Error error
}

// NewMockCommandExecutor creates a new mock command executor
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		commands: make([]MockCommand, 0),
	}
}

// SetExecuteFunc sets a custom function for Execute calls
func (m *MockCommandExecutor) SetExecuteFunc(f ExecuteFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executeFunc = f
}

// SetLookPathFunc sets a custom function for LookPath calls
func (m *MockCommandExecutor) SetLookPathFunc(f func(file string) (string, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookPathFunc = f
}

// Execute implements CommandExecutor
func (m *MockCommandExecutor) Execute(ctx context.Context, opts CommandOptions, name string, args ...string) error {
	m.mu.RLock()
	f := m.executeFunc
	m.mu.RUnlock()
	var err error
	if f != nil {
		err = f(ctx, opts, name, args...)
	} else if opts.Output != nil {
		// Default behavior
		fmt.Fprintf(opts.Output, "mock output for: %s %s\n", name, strings.Join(args, " "))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, MockCommand{
		Name:  name,
		Args:  slices.Clone(args),
		Dir:   opts.Dir,
		Env:   slices.Clone(opts.Env),
		Error: err,
	})
	return err
}

// GetCommands returns all recorded commands for verification
func (m *MockCommandExecutor) GetCommands() []MockCommand {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.commands)
}

// Names returns the program names of all recorded commands in order.
func (m *MockCommandExecutor) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for _, c := range m.commands {
		names = append(names, c.Name)
	}
	return names
}

// LookPath implements CommandExecutor
func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	m.mu.RLock()
	f := m.lookPathFunc
	m.mu.RUnlock()
	if f != nil {
		return f(file)
	}
	// Default behavior - assume command exists
	return "/usr/bin/" + file, nil
}

// ExitStatus is an error carrying a process exit code, for simulating
// failed commands.
type ExitStatus int

func (s ExitStatus) Error() string {
	return "exit status " + strconv.Itoa(int(s))
}

// ExitCode returns the code carried by the error.
func (s ExitStatus) ExitCode() int { return int(s) }
