package testutil

import (
	"context"
	"sync"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/scripts"
)

// FakeRunner records scripts instead of running them
type FakeRunner struct {
	mu   sync.Mutex
	ran  []scripts.Script
	fail map[string]bool
	// Hook, when set, runs for every script before it is recorded
	Hook func(s scripts.Script) error
}

// NewFakeRunner returns a runner where every script succeeds
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{fail: make(map[string]bool)}
}

// FailOn makes scripts named name fail
func (f *FakeRunner) FailOn(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[name] = true
}

// Run implements scripts.Runner
func (f *FakeRunner) Run(_ context.Context, s scripts.Script) error {
	if f.Hook != nil {
		if err := f.Hook(s); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, s)
	if f.fail[s.Name] {
		return errors.Newf(errors.ErrScriptFailure, "script %q exited with status 1", s.Name).
			WithDetail("script", s.Name)
	}
	return nil
}

// Ran returns the recorded scripts in order
func (f *FakeRunner) Ran() []scripts.Script {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scripts.Script(nil), f.ran...)
}

// Names returns the recorded script names in order
func (f *FakeRunner) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.ran))
	for _, s := range f.ran {
		names = append(names, s.Name)
	}
	return names
}

// Reset forgets recorded scripts
func (f *FakeRunner) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = nil
}
